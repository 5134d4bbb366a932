package apk

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/slobbe/apk-provenance/internal/apk/apktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificatesReturnsSigner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.apk")
	want := apktest.Write(t, path, apktest.Options{CommonName: "Example Dev"})

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	entry, err := a.Entry(ManifestEntry)
	require.NoError(t, err)
	require.NoError(t, entry.Consume())
	assert.True(t, entry.Consumed())

	certs, err := a.Certificates()
	require.NoError(t, err)
	require.NotEmpty(t, certs)
	assert.True(t, bytes.Equal(want.Raw, certs[0].Raw))
	assert.Equal(t, "Example Dev", certs[0].Subject.CommonName)
}

func TestMissingManifestEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.apk")
	apktest.Write(t, path, apktest.Options{NoManifest: true})

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Entry(ManifestEntry)
	assert.True(t, errors.Is(err, ErrEntryNotFound))
}

func TestUnsignedArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.apk")
	apktest.Write(t, path, apktest.Options{NoSignature: true})

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Certificates()
	assert.ErrorIs(t, err, ErrNoSignatureBlock)
}

func TestSignatureBlockOutsideMetaInfIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.apk")
	apktest.Write(t, path, apktest.Options{
		NoSignature: true,
		Entries:     map[string][]byte{"assets/CERT.RSA": []byte("not a block")},
	})

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Certificates()
	assert.ErrorIs(t, err, ErrNoSignatureBlock)
}

func TestCorruptSignatureBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.apk")
	apktest.Write(t, path, apktest.Options{
		NoSignature: true,
		Entries:     map[string][]byte{"META-INF/CERT.RSA": []byte("garbage")},
	})

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Certificates()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSignatureBlock)
}

func TestOpenRejectsNonArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.apk")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "missing.apk"))
	assert.Error(t, err)
}
