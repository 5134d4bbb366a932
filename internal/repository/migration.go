package repo

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/slobbe/apk-provenance/internal/logger"
)

// Column names in the migrations match the row column constants so reads
// hydrate without renaming.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema of the database at dsn up to date.
func Migrate(dsn string) error {
	dbURL, err := migrateURL(dsn)
	if err != nil {
		return err
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Logger().Debugw("schema migrated", "version", version, "dirty", dirty)
	return nil
}

// migrateURL rewrites a postgres URL to the pgx5 scheme the migrate driver
// registers under.
func migrateURL(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	for _, scheme := range []string{"postgres://", "postgresql://", "pgx5://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme), nil
		}
	}
	return "", fmt.Errorf("postgres dsn must be a postgres:// URL")
}
