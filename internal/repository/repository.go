// Package repo persists apps, their catalog releases and the installed
// package state as named-column rows.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slobbe/apk-provenance/internal/config"
	models "github.com/slobbe/apk-provenance/internal/types"
)

var ErrNotFound = errors.New("app not found")

type Store interface {
	// SaveApp writes the app aspect only. Installed state is left alone.
	SaveApp(ctx context.Context, app *models.App) error
	// SaveInstalled writes app.InstalledApk, or clears it when nil.
	SaveInstalled(ctx context.Context, app *models.App) error
	SaveApks(ctx context.Context, apks []*models.Apk) error

	GetApp(ctx context.Context, id string) (*models.App, error)
	// ListApps returns every app sorted by name.
	ListApps(ctx context.Context) ([]*models.App, error)
	RemoveApp(ctx context.Context, id string) error
	// Releases returns the catalog releases of id, newest first.
	Releases(ctx context.Context, id string) ([]*models.Apk, error)

	Close() error
}

// Open returns the store selected by s.Storage.
func Open(ctx context.Context, s *config.Settings) (Store, error) {
	switch s.Storage.Backend {
	case config.BackendJSON:
		return NewJSONStore(s.Storage.Database)
	case config.BackendPostgres:
		if err := Migrate(s.Storage.PostgresDSN); err != nil {
			return nil, err
		}
		pool, err := pgxpool.New(ctx, s.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return NewPostgresStore(pool, pool.Close), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.Storage.Backend)
	}
}
