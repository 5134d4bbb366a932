package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/slobbe/apk-provenance/internal/policy"
	"github.com/slobbe/apk-provenance/internal/row"
	models "github.com/slobbe/apk-provenance/internal/types"
)

const schemaVersion = 2

// DB is the on-disk layout of the JSON store. Every table maps an app id to
// its rows.
type DB struct {
	SchemaVersion int                     `json:"schemaVersion"`
	Apps          map[string]row.Values   `json:"apps"`
	Installed     map[string]row.Values   `json:"installed"`
	Apks          map[string][]row.Values `json:"apks"`
}

func newDB() *DB {
	return &DB{
		SchemaVersion: schemaVersion,
		Apps:          map[string]row.Values{},
		Installed:     map[string]row.Values{},
		Apks:          map[string][]row.Values{},
	}
}

func LoadDB(path string) (*DB, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newDB(), nil
		}
		return nil, err
	}
	db := newDB()
	if err := json.Unmarshal(b, db); err != nil {
		return nil, err
	}
	if db.Apps == nil {
		db.Apps = map[string]row.Values{}
	}
	if db.Installed == nil {
		db.Installed = map[string]row.Values{}
	}
	if db.Apks == nil {
		db.Apks = map[string][]row.Values{}
	}
	if db.SchemaVersion == 0 {
		db.SchemaVersion = schemaVersion
	}
	return db, nil
}

func SaveDB(path string, db *DB) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

type JSONStore struct {
	mu  sync.Mutex
	src string
}

func NewJSONStore(src string) (*JSONStore, error) {
	if len(src) < 1 {
		return nil, fmt.Errorf("database source cannot be empty")
	}
	return &JSONStore{src: src}, nil
}

func (s *JSONStore) Close() error { return nil }

// update loads the database, applies fn and writes it back.
func (s *JSONStore) update(ctx context.Context, fn func(db *DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := LoadDB(s.src)
	if err != nil {
		return err
	}
	if err := fn(db); err != nil {
		return err
	}
	return SaveDB(s.src, db)
}

func (s *JSONStore) view(ctx context.Context) (*DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return LoadDB(s.src)
}

func (s *JSONStore) SaveApp(ctx context.Context, app *models.App) error {
	if app == nil || len(app.ID) < 1 {
		return fmt.Errorf("invalid app id")
	}
	return s.update(ctx, func(db *DB) error {
		db.Apps[app.ID] = row.AppValues(app)
		return nil
	})
}

func (s *JSONStore) SaveInstalled(ctx context.Context, app *models.App) error {
	if app == nil || len(app.ID) < 1 {
		return fmt.Errorf("invalid app id")
	}
	return s.update(ctx, func(db *DB) error {
		if _, exists := db.Apps[app.ID]; !exists {
			return fmt.Errorf("%s: %w", app.ID, ErrNotFound)
		}
		installed := row.InstalledValues(app)
		if installed == nil {
			delete(db.Installed, app.ID)
			return nil
		}
		db.Installed[app.ID] = installed
		return nil
	})
}

func (s *JSONStore) SaveApks(ctx context.Context, apks []*models.Apk) error {
	return s.update(ctx, func(db *DB) error {
		for _, apk := range apks {
			if apk == nil || len(apk.ID) < 1 {
				return fmt.Errorf("invalid apk id")
			}
			db.Apks[apk.ID] = upsertRelease(db.Apks[apk.ID], row.ApkValues(apk))
		}
		return nil
	})
}

func upsertRelease(rows []row.Values, v row.Values) []row.Values {
	vercode := releaseVercode(v)
	for i, existing := range rows {
		if releaseVercode(existing) == vercode {
			rows[i] = v
			return rows
		}
	}
	return append(rows, v)
}

func releaseVercode(v row.Values) int {
	r := row.FromValues(row.Values{row.ColVercode: v[row.ColVercode]})
	return r.Int(0)
}

func (s *JSONStore) GetApp(ctx context.Context, id string) (*models.App, error) {
	if len(id) < 1 {
		return nil, fmt.Errorf("invalid app id")
	}
	db, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	return joinApp(db, id)
}

// joinApp merges the app row, the installed columns and the suggested
// release version into one row before hydrating it.
func joinApp(db *DB, id string) (*models.App, error) {
	appRow, exists := db.Apps[id]
	if !exists {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	joined := row.Values{}.Merge(appRow).Merge(row.InstalledColumns(db.Installed[id]))
	suggested := row.FromValues(row.Values{row.ColSuggestedVercode: appRow[row.ColSuggestedVercode]}).Int(0)
	for _, release := range db.Apks[id] {
		if suggested > 0 && releaseVercode(release) == suggested {
			joined[row.ColSuggestedVersion] = release[row.ColVersion]
			break
		}
	}

	app, err := row.HydrateApp(row.FromValues(joined))
	if err != nil {
		return nil, err
	}

	if installed := db.Installed[id]; installed != nil {
		apk, err := row.HydrateApk(row.FromValues(installed))
		if err != nil {
			return nil, err
		}
		app.InstalledApk = apk
	}
	return app, nil
}

func (s *JSONStore) ListApps(ctx context.Context) ([]*models.App, error) {
	db, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	apps := make([]*models.App, 0, len(db.Apps))
	for id := range db.Apps {
		app, err := joinApp(db, id)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	policy.SortByName(apps)
	return apps, nil
}

func (s *JSONStore) RemoveApp(ctx context.Context, id string) error {
	if len(id) < 1 {
		return fmt.Errorf("invalid app id")
	}
	return s.update(ctx, func(db *DB) error {
		if _, exists := db.Apps[id]; !exists {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		delete(db.Apps, id)
		delete(db.Installed, id)
		delete(db.Apks, id)
		return nil
	})
}

func (s *JSONStore) Releases(ctx context.Context, id string) ([]*models.Apk, error) {
	db, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Apk, 0, len(db.Apks[id]))
	for _, release := range db.Apks[id] {
		apk, err := row.HydrateApk(row.FromValues(release))
		if err != nil {
			return nil, err
		}
		out = append(out, apk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vercode > out[j].Vercode })
	return out, nil
}
