package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	repo "github.com/slobbe/apk-provenance/internal/repository"
	models "github.com/slobbe/apk-provenance/internal/types"
)

var (
	ErrReleaseNotFound   = errors.New("no catalog release with the installed version code")
	ErrSignatureMismatch = errors.New("installed package is signed by a different key than the catalog release")
)

// Resolve marks which apps have a release installable on a device running
// sdk and fills in a missing suggested version code with the newest such
// release. sdk <= 0 treats every release as installable.
func (c *Catalog) Resolve(sdk int) {
	for _, app := range c.Apps {
		app.Compatible = false
		for _, apk := range c.Releases[app.ID] {
			if sdk > 0 && apk.MinSdkVersion > sdk {
				continue
			}
			app.Compatible = true
			if app.SuggestedVercode == 0 {
				app.SuggestedVercode = apk.Vercode
			}
			break
		}
	}
}

// Apply writes the catalog to store. Update suppression chosen by the user
// for apps already in the store is kept.
func Apply(ctx context.Context, store repo.Store, c *Catalog, log *zap.SugaredLogger) (int, error) {
	count := 0
	for _, app := range c.Apps {
		existing, err := store.GetApp(ctx, app.ID)
		switch {
		case err == nil:
			app.IgnoreAllUpdates = existing.IgnoreAllUpdates
			app.IgnoreThisUpdate = existing.IgnoreThisUpdate
		case errors.Is(err, repo.ErrNotFound):
		default:
			return count, err
		}

		if err := store.SaveApp(ctx, app); err != nil {
			return count, err
		}
		if err := store.SaveApks(ctx, c.Releases[app.ID]); err != nil {
			return count, err
		}
		app.Updated = true
		count++
		log.Debugw("catalog app applied", "id", app.ID, "releases", len(c.Releases[app.ID]))
	}
	return count, nil
}

// Match returns the release built from the same version code as installed
// and checks that both were signed with the same certificate. The release
// is returned alongside ErrSignatureMismatch.
func Match(installed *models.Apk, releases []*models.Apk) (*models.Apk, error) {
	if installed == nil {
		return nil, fmt.Errorf("nothing installed: %w", ErrReleaseNotFound)
	}
	for _, r := range releases {
		if r.Vercode != installed.Vercode {
			continue
		}
		if r.Sig != installed.Sig {
			return r, fmt.Errorf("%s: %w", r.ApkName, ErrSignatureMismatch)
		}
		return r, nil
	}
	return nil, fmt.Errorf("%s vercode %d: %w", installed.ID, installed.Vercode, ErrReleaseNotFound)
}
