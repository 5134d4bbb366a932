package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathsDefaults(t *testing.T) {
	home := "/home/alice"

	paths := resolvePaths(home, func(string) string { return "" })

	if paths.DataDir != filepath.Join(home, ".local", "share", "apk-provenance") {
		t.Fatalf("DataDir = %q", paths.DataDir)
	}
	if paths.ConfigSrc != filepath.Join(home, ".config", "apk-provenance", "config.yaml") {
		t.Fatalf("ConfigSrc = %q", paths.ConfigSrc)
	}
	if paths.RegistrySrc != filepath.Join(home, ".local", "share", "apk-provenance", "packages.yaml") {
		t.Fatalf("RegistrySrc = %q", paths.RegistrySrc)
	}
	if paths.DbSrc != filepath.Join(home, ".local", "state", "apk-provenance", "apps.json") {
		t.Fatalf("DbSrc = %q", paths.DbSrc)
	}
}

func TestResolvePathsXDGOverrides(t *testing.T) {
	env := map[string]string{
		"XDG_DATA_HOME":   "/xdg/data",
		"XDG_CONFIG_HOME": "/xdg/config",
		"XDG_STATE_HOME":  "/xdg/state",
	}

	paths := resolvePaths("/home/alice", func(key string) string {
		return env[key]
	})

	if paths.DataDir != "/xdg/data/apk-provenance" {
		t.Fatalf("DataDir = %q", paths.DataDir)
	}
	if paths.ConfigDir != "/xdg/config/apk-provenance" {
		t.Fatalf("ConfigDir = %q", paths.ConfigDir)
	}
	if paths.DbSrc != "/xdg/state/apk-provenance/apps.json" {
		t.Fatalf("DbSrc = %q", paths.DbSrc)
	}
}

func TestResolvePathsIgnoresRelativeXDGPaths(t *testing.T) {
	home := "/home/alice"
	env := map[string]string{
		"XDG_DATA_HOME":   "relative/data",
		"XDG_CONFIG_HOME": "relative/config",
		"XDG_STATE_HOME":  "relative/state",
	}

	paths := resolvePaths(home, func(key string) string {
		return env[key]
	})

	if paths.DataDir != filepath.Join(home, ".local", "share", "apk-provenance") {
		t.Fatalf("DataDir = %q", paths.DataDir)
	}
	if paths.ConfigDir != filepath.Join(home, ".config", "apk-provenance") {
		t.Fatalf("ConfigDir = %q", paths.ConfigDir)
	}
	if paths.DbSrc != filepath.Join(home, ".local", "state", "apk-provenance", "apps.json") {
		t.Fatalf("DbSrc = %q", paths.DbSrc)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "sha256", s.HashType)
	assert.Equal(t, BackendJSON, s.Storage.Backend)
	assert.Equal(t, DbSrc, s.Storage.Database)
	assert.Equal(t, RegistrySrc, s.Registry)
}

func TestLoadLayersFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log:
  level: debug
hash_type: SHA1
filter:
  show_anti_features: true
registry: /srv/device/packages.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("APKPROV_LOG_LEVEL", "warn")
	t.Setenv("APKPROV_FILTER_ROOT_ACCESS", "true")
	t.Setenv("APKPROV_STORAGE_BACKEND", "postgres")
	t.Setenv("APKPROV_STORAGE_POSTGRES_DSN", "postgres://localhost/apkprov")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", s.Log.Level)
	assert.Equal(t, "sha1", s.HashType)
	assert.True(t, s.Filter.ShowAntiFeatures)
	assert.True(t, s.Filter.RootAccess)
	assert.Equal(t, "/srv/device/packages.yaml", s.Registry)
	assert.Equal(t, BackendPostgres, s.Storage.Backend)
	assert.Equal(t, "postgres://localhost/apkprov", s.Storage.PostgresDSN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{name: "hash type", mutate: func(s *Settings) { s.HashType = "crc32" }},
		{name: "backend", mutate: func(s *Settings) { s.Storage.Backend = "sqlite" }},
		{name: "postgres without dsn", mutate: func(s *Settings) { s.Storage.Backend = BackendPostgres }},
		{name: "json without path", mutate: func(s *Settings) { s.Storage.Database = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
