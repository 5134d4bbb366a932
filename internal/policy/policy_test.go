package policy

import (
	"os"
	"path/filepath"
	"testing"

	models "github.com/slobbe/apk-provenance/internal/types"
)

func installedApp(installed, suggested int) *models.App {
	app := models.NewApp("org.example.app")
	app.InstalledVersionCode = installed
	app.SuggestedVercode = suggested
	return app
}

func TestHasUpdates(t *testing.T) {
	tests := []struct {
		name      string
		installed int
		suggested int
		want      bool
	}{
		{name: "older installed", installed: 10, suggested: 12, want: true},
		{name: "same version", installed: 12, suggested: 12, want: false},
		{name: "newer installed", installed: 13, suggested: 12, want: false},
		{name: "no suggestion", installed: 10, suggested: 0, want: false},
		{name: "not installed", installed: 0, suggested: 12, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasUpdates(installedApp(tt.installed, tt.suggested)); got != tt.want {
				t.Fatalf("HasUpdates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAndWantToUpdate(t *testing.T) {
	hideAll := func(*models.App) bool { return true }
	hideNone := func(*models.App) bool { return false }

	tests := []struct {
		name   string
		mutate func(*models.App)
		filter Predicate
		want   bool
	}{
		{name: "update offered", want: true},
		{name: "nil filter", filter: nil, want: true},
		{name: "filter passes", filter: hideNone, want: true},
		{name: "filtered app", filter: hideAll, want: false},
		{name: "all updates ignored", mutate: func(a *models.App) { a.IgnoreAllUpdates = true }, want: false},
		{name: "this update ignored", mutate: func(a *models.App) { a.IgnoreThisUpdate = 12 }, want: false},
		{name: "older ignore threshold", mutate: func(a *models.App) { a.IgnoreThisUpdate = 11 }, want: true},
		{name: "no update", mutate: func(a *models.App) { a.InstalledVersionCode = 12 }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := installedApp(10, 12)
			if tt.mutate != nil {
				tt.mutate(app)
			}
			if got := CanAndWantToUpdate(app, tt.filter); got != tt.want {
				t.Fatalf("CanAndWantToUpdate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsInstalled(t *testing.T) {
	if IsInstalled(installedApp(0, 0)) {
		t.Fatal("vercode 0 should not count as installed")
	}
	if !IsInstalled(installedApp(1, 0)) {
		t.Fatal("vercode 1 should count as installed")
	}
}

func TestIsValid(t *testing.T) {
	src := filepath.Join(t.TempDir(), "base.apk")
	if err := os.WriteFile(src, []byte("apk"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	valid := func() *models.App {
		app := installedApp(3, 0)
		app.Name = "Example"
		app.InstalledApk = models.NewApk(app.ID, 3)
		app.InstalledApk.Sig = "4f41243847da693a4f356c0486114bc6"
		app.InstalledApk.InstalledFile = src
		return app
	}

	tests := []struct {
		name   string
		mutate func(*models.App)
		want   bool
	}{
		{name: "complete", want: true},
		{name: "no name", mutate: func(a *models.App) { a.Name = "" }, want: false},
		{name: "no id", mutate: func(a *models.App) { a.ID = "" }, want: false},
		{name: "not installed", mutate: func(a *models.App) { a.InstalledApk = nil }, want: false},
		{name: "unsigned", mutate: func(a *models.App) { a.InstalledApk.Sig = "" }, want: false},
		{name: "missing file", mutate: func(a *models.App) { a.InstalledApk.InstalledFile = src + ".gone" }, want: false},
		{name: "directory", mutate: func(a *models.App) { a.InstalledApk.InstalledFile = filepath.Dir(src) }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := valid()
			if tt.mutate != nil {
				tt.mutate(app)
			}
			if got := IsValid(app); got != tt.want {
				t.Fatalf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}

	if IsValid(nil) {
		t.Fatal("nil app should not be valid")
	}
}

func TestSortByName(t *testing.T) {
	names := []string{"zebra", "Alpha", "beta", "alpha"}
	apps := make([]*models.App, len(names))
	for i, n := range names {
		apps[i] = models.NewApp("id." + n)
		apps[i].Name = n
	}

	SortByName(apps)

	want := []string{"Alpha", "alpha", "beta", "zebra"}
	for i, app := range apps {
		if app.Name != want[i] {
			t.Fatalf("position %d = %q, want %q", i, app.Name, want[i])
		}
	}
	if Compare(apps[0], apps[1]) != 0 {
		t.Fatal("Compare should ignore case")
	}
}
