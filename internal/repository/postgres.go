package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/slobbe/apk-provenance/internal/row"
	models "github.com/slobbe/apk-provenance/internal/types"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	appTable       = "app"
	apkTable       = "apk"
	installedTable = "installed_app"
)

const selectApps = `
	SELECT a.*,
		i."vercode" AS "installedVersionCode",
		i."version" AS "installedVersionName",
		s."version" AS "suggestedApkVersion"
	FROM app a
	LEFT JOIN installed_app i ON i."id" = a."id"
	LEFT JOIN apk s ON s."id" = a."id" AND s."vercode" = a."suggestedVercode"`

type PostgresStore struct {
	db    DBTX
	close func()
}

// NewPostgresStore wraps db. closeFn, if set, runs on Close.
func NewPostgresStore(db DBTX, closeFn func()) *PostgresStore {
	return &PostgresStore{db: db, close: closeFn}
}

func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

// upsertSQL builds an INSERT ... ON CONFLICT statement over the columns of v.
func upsertSQL(table string, keys []string, v row.Values) (string, []any) {
	cols := v.Keys()
	names := make([]string, len(cols))
	params := make([]string, len(cols))
	args := make([]any, len(cols))
	var updates []string

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	for i, col := range cols {
		names[i] = pgx.Identifier{col}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
		args[i] = v[col]
		if !isKey[col] {
			updates = append(updates, names[i]+" = EXCLUDED."+names[i])
		}
	}

	conflict := make([]string, len(keys))
	for i, k := range keys {
		conflict[i] = pgx.Identifier{k}.Sanitize()
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) ",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(names, ", "),
		strings.Join(params, ", "),
		strings.Join(conflict, ", "))
	if len(updates) == 0 {
		sql += "DO NOTHING"
	} else {
		sql += "DO UPDATE SET " + strings.Join(updates, ", ")
	}
	return sql, args
}

func (s *PostgresStore) SaveApp(ctx context.Context, app *models.App) error {
	if app == nil || app.ID == "" {
		return fmt.Errorf("invalid app id")
	}
	sql, args := upsertSQL(appTable, []string{row.ColID}, row.AppValues(app))
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to save app %s: %w", app.ID, err)
	}
	return nil
}

func (s *PostgresStore) SaveInstalled(ctx context.Context, app *models.App) error {
	if app == nil || app.ID == "" {
		return fmt.Errorf("invalid app id")
	}

	installed := row.InstalledValues(app)
	if installed == nil {
		if _, err := s.db.Exec(ctx, `DELETE FROM installed_app WHERE "id" = $1`, app.ID); err != nil {
			return fmt.Errorf("failed to clear installed %s: %w", app.ID, err)
		}
		return nil
	}

	sql, args := upsertSQL(installedTable, []string{row.ColID}, installed)
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", app.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to save installed %s: %w", app.ID, err)
	}
	return nil
}

func (s *PostgresStore) SaveApks(ctx context.Context, apks []*models.Apk) error {
	for _, apk := range apks {
		if apk == nil || apk.ID == "" {
			return fmt.Errorf("invalid apk id")
		}
		sql, args := upsertSQL(apkTable, []string{row.ColID, row.ColVercode}, row.ApkValues(apk))
		if _, err := s.db.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to save apk %s: %w", apk.ApkName, err)
		}
	}
	return nil
}

func (s *PostgresStore) GetApp(ctx context.Context, id string) (*models.App, error) {
	apps, err := s.queryApps(ctx, selectApps+` WHERE a."id" = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return apps[0], nil
}

func (s *PostgresStore) ListApps(ctx context.Context) ([]*models.App, error) {
	return s.queryApps(ctx, selectApps+` ORDER BY lower(a."name"), a."id"`)
}

func (s *PostgresStore) queryApps(ctx context.Context, sql string, args ...any) ([]*models.App, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query apps: %w", err)
	}
	apps, err := collect(rows, row.HydrateApp)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, app := range apps {
		if app.InstalledVersionCode != 0 {
			ids = append(ids, app.ID)
		}
	}
	if len(ids) == 0 {
		return apps, nil
	}

	rows, err = s.db.Query(ctx, `SELECT * FROM installed_app WHERE "id" = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query installed apps: %w", err)
	}
	installed, err := collect(rows, row.HydrateApk)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Apk, len(installed))
	for _, apk := range installed {
		byID[apk.ID] = apk
	}
	for _, app := range apps {
		if apk, ok := byID[app.ID]; ok {
			app.InstalledApk = apk
		}
	}
	return apps, nil
}

func (s *PostgresStore) RemoveApp(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM apk WHERE "id" = $1`, id); err != nil {
		return fmt.Errorf("failed to remove releases of %s: %w", id, err)
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM app WHERE "id" = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Releases(ctx context.Context, id string) ([]*models.Apk, error) {
	rows, err := s.db.Query(ctx, `SELECT * FROM apk WHERE "id" = $1 ORDER BY "vercode" DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases of %s: %w", id, err)
	}
	return collect(rows, row.HydrateApk)
}

func collect[T any](rows pgx.Rows, hydrate func(row.Row) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := hydrate(row.FromPgx(rows))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
