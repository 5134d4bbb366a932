// Package policy decides whether an installed app has an update worth
// offering.
package policy

import (
	"os"
	"sort"
	"strings"

	models "github.com/slobbe/apk-provenance/internal/types"
)

// Predicate reports whether an app is hidden by the user's content filter.
type Predicate func(app *models.App) bool

// IsValid reports whether app carries enough to be shown as installed:
// a name, an id, a signed owned Apk and a readable artifact.
func IsValid(app *models.App) bool {
	if app == nil || app.Name == "" || app.ID == "" {
		return false
	}
	if app.InstalledApk == nil || app.InstalledApk.Sig == "" {
		return false
	}
	if app.InstalledApk.InstalledFile == "" {
		return false
	}

	f, err := os.Open(app.InstalledApk.InstalledFile)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

func IsInstalled(app *models.App) bool {
	return app.InstalledVersionCode > 0
}

func HasUpdates(app *models.App) bool {
	if app.SuggestedVercode <= 0 {
		return false
	}
	return app.InstalledVersionCode > 0 && app.InstalledVersionCode < app.SuggestedVercode
}

// CanAndWantToUpdate reports whether an update exists and the user has not
// suppressed it. A nil filter hides nothing.
func CanAndWantToUpdate(app *models.App, filter Predicate) bool {
	if !HasUpdates(app) {
		return false
	}
	if app.IgnoreAllUpdates || app.IgnoreThisUpdate >= app.SuggestedVercode {
		return false
	}
	return filter == nil || !filter(app)
}

// Compare orders apps by name, ignoring case.
func Compare(a, b *models.App) int {
	return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

func SortByName(apps []*models.App) {
	sort.SliceStable(apps, func(i, j int) bool {
		return Compare(apps[i], apps[j]) < 0
	})
}
