package main

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slobbe/apk-provenance/internal/apk/apktest"
	"github.com/slobbe/apk-provenance/internal/catalog"
	"github.com/slobbe/apk-provenance/internal/core"
	repo "github.com/slobbe/apk-provenance/internal/repository"
	"github.com/slobbe/apk-provenance/internal/signature"
	models "github.com/slobbe/apk-provenance/internal/types"
)

const registryYAML = `
packages:
  - id: org.example.app
    label: Example
    description: Example application used in tests
    apk: apks/example.apk
    installer: org.fdroid.fdroid
    version_name: "1.0"
    version_code: 10
    first_install: 2024-03-05T10:20:30Z
    last_update: 2024-03-05T10:20:30Z
  - id: org.fdroid.fdroid
    label: F-Droid
`

type testEnv struct {
	dir    string
	config string
	apk    string
	cert   *x509.Certificate
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "apks"), 0o755))
	apkPath := filepath.Join(dir, "apks", "example.apk")
	cert := apktest.Write(t, apkPath, apktest.Options{CommonName: "Example Dev"})

	registry := filepath.Join(dir, "packages.yaml")
	require.NoError(t, os.WriteFile(registry, []byte(registryYAML), 0o644))

	cfg := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("log:\n  level: error\nregistry: %s\nstorage:\n  backend: json\n  database: %s\n",
		registry, filepath.Join(dir, "state", "apps.json"))
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o644))

	return &testEnv{dir: dir, config: cfg, apk: apkPath, cert: cert}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", e.config, "--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) writeCatalog(t *testing.T, sig string) string {
	t.Helper()
	index := fmt.Sprintf(`{
  "repo": {"name": "Test Repo"},
  "apps": [{"packageName": "org.example.app", "name": "Example", "suggestedVersionCode": "12"}],
  "packages": {"org.example.app": [
    {"versionName": "1.2", "versionCode": 12, "sig": %q},
    {"versionName": "1.0", "versionCode": 10, "sig": %q}
  ]}
}`, sig, sig)
	src := filepath.Join(e.dir, "index-v1.json")
	require.NoError(t, os.WriteFile(src, []byte(index), 0o644))
	return src
}

func TestInspectCommand(t *testing.T) {
	env := newTestEnv(t)
	sig := signature.Fingerprint(env.cert.Raw)

	out, err := env.run(t, "inspect", "org.example.app")
	require.NoError(t, err)
	assert.Contains(t, out, "Signature:   "+sig)
	assert.Contains(t, out, "Version:     1.0 (10)")
	assert.Contains(t, out, "Summary:     Example application used in tests")

	out, err = env.run(t, "inspect", "org.example.app", "--format", "json")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "org.example.app", decoded["id"])

	_, err = env.run(t, "inspect", "org.example.app", "--format", "xml")
	assert.Error(t, err)

	_, err = env.run(t, "inspect", "org.missing")
	assert.Error(t, err)
}

func TestUpdateWorkflow(t *testing.T) {
	env := newTestEnv(t)
	sig := signature.Fingerprint(env.cert.Raw)

	out, err := env.run(t, "scan", "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "org.example.app")
	assert.Contains(t, out, sig)

	out, err = env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "org.example.app")

	out, err = env.run(t, "updates")
	require.NoError(t, err)
	assert.Contains(t, out, "All apps are up to date")

	out, err = env.run(t, "catalog", "import", env.writeCatalog(t, sig))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 apps from Test Repo")

	out, err = env.run(t, "updates")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2 (12)")

	out, err = env.run(t, "ignore", "org.example.app")
	require.NoError(t, err)
	assert.Contains(t, out, "Ignoring the current update of org.example.app")

	out, err = env.run(t, "updates")
	require.NoError(t, err)
	assert.Contains(t, out, "All apps are up to date")

	_, err = env.run(t, "unignore", "org.example.app")
	require.NoError(t, err)
	out, err = env.run(t, "updates")
	require.NoError(t, err)
	assert.Contains(t, out, "org.example.app")

	_, err = env.run(t, "ignore", "--all", "org.example.app")
	require.NoError(t, err)
	out, err = env.run(t, "updates")
	require.NoError(t, err)
	assert.Contains(t, out, "All apps are up to date")

	out, err = env.run(t, "verify", "org.example.app")
	require.NoError(t, err)
	assert.Contains(t, out, "matches catalog release org.example.app_10.apk")
}

func TestVerifyDetectsForeignSigner(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "inspect", "--save", "org.example.app")
	require.NoError(t, err)
	_, err = env.run(t, "catalog", "import", env.writeCatalog(t, "d41d8cd98f00b204e9800998ecf8427e"))
	require.NoError(t, err)

	_, err = env.run(t, "verify", "org.example.app")
	assert.ErrorIs(t, err, catalog.ErrSignatureMismatch)

	_, err = env.run(t, "verify", "org.unknown")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestFingerprintCommand(t *testing.T) {
	env := newTestEnv(t)
	want := signature.Fingerprint(env.cert.Raw)

	out, err := env.run(t, "fingerprint", env.apk)
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(out))

	pemPath := filepath.Join(env.dir, "signer.pem")
	require.NoError(t, os.WriteFile(pemPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: env.cert.Raw}), 0o644))
	out, err = env.run(t, "fingerprint", pemPath)
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(out))

	derPath := filepath.Join(env.dir, "signer.der")
	require.NoError(t, os.WriteFile(derPath, env.cert.Raw, 0o644))
	out, err = env.run(t, "fingerprint", derPath)
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(out))

	keyPath := filepath.Join(env.dir, "key.pem")
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1}}), 0o644))
	_, err = env.run(t, "fingerprint", keyPath)
	assert.Error(t, err)

	emptyPath := filepath.Join(env.dir, "empty.der")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o644))
	_, err = env.run(t, "fingerprint", emptyPath)
	assert.ErrorIs(t, err, signature.ErrCertificateEncoding)
}

func TestFingerprintCommandErrors(t *testing.T) {
	env := newTestEnv(t)

	notArchive := filepath.Join(env.dir, "broken.apk")
	require.NoError(t, os.WriteFile(notArchive, []byte("not a zip"), 0o644))
	_, err := env.run(t, "fingerprint", notArchive)
	assert.ErrorIs(t, err, core.ErrIO)

	noManifest := filepath.Join(env.dir, "nomanifest.apk")
	apktest.Write(t, noManifest, apktest.Options{CommonName: "Example Dev", NoManifest: true})
	_, err = env.run(t, "fingerprint", noManifest)
	assert.ErrorIs(t, err, core.ErrCertificateMissing)

	unsigned := filepath.Join(env.dir, "unsigned.apk")
	apktest.Write(t, unsigned, apktest.Options{NoSignature: true})
	_, err = env.run(t, "fingerprint", unsigned)
	assert.ErrorIs(t, err, core.ErrCertificateMissing)
}

func TestSetIgnoreState(t *testing.T) {
	ctx := context.Background()
	store, err := repo.NewJSONStore(filepath.Join(t.TempDir(), "apps.json"))
	require.NoError(t, err)

	app := models.NewApp("org.example.app")
	app.SuggestedVercode = 7
	require.NoError(t, store.SaveApp(ctx, app))

	tests := []struct {
		name    string
		ignore  bool
		all     bool
		changed bool
		check   func(*models.App) bool
	}{
		{name: "ignore current", ignore: true, changed: true, check: func(a *models.App) bool { return a.IgnoreThisUpdate == 7 }},
		{name: "ignore current again", ignore: true, changed: false, check: func(a *models.App) bool { return a.IgnoreThisUpdate == 7 }},
		{name: "ignore all", ignore: true, all: true, changed: true, check: func(a *models.App) bool { return a.IgnoreAllUpdates }},
		{name: "unignore all", ignore: false, all: true, changed: true, check: func(a *models.App) bool { return !a.IgnoreAllUpdates }},
		{name: "unignore current", ignore: false, changed: true, check: func(a *models.App) bool { return a.IgnoreThisUpdate == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, changed, err := setIgnoreState(ctx, store, app.ID, tt.ignore, tt.all)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)

			stored, err := store.GetApp(ctx, app.ID)
			require.NoError(t, err)
			assert.True(t, tt.check(stored))
		})
	}

	_, _, err = setIgnoreState(ctx, store, "org.missing", true, false)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := createRootCommand()
	for _, name := range []string{"inspect", "scan", "fingerprint", "list", "updates", "ignore", "unignore", "verify"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	cmd, _, err := root.Find([]string{"catalog", "import"})
	require.NoError(t, err)
	assert.Equal(t, "import", cmd.Name())
}
