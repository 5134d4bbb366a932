// Package apktest builds small signed APK archives for tests.
package apktest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"go.mozilla.org/pkcs7"
)

type Options struct {
	// CommonName of the generated signer. Defaults to "apktest".
	CommonName string
	Manifest   []byte

	NoManifest  bool
	NoSignature bool
	// Entries are written as-is in addition to the generated ones.
	Entries map[string][]byte
}

var (
	keyOnce sync.Once
	key     *rsa.PrivateKey
	keyErr  error
)

func signingKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		key, keyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if keyErr != nil {
		t.Fatalf("generate key: %v", keyErr)
	}
	return key
}

// Certificate returns a fresh self-signed certificate for cn.
func Certificate(t testing.TB, cn string) (*x509.Certificate, *rsa.PrivateKey) {
	t.Helper()
	priv := signingKey(t)

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	return cert, priv
}

// Write creates an APK at path and returns the certificate it was signed
// with, or nil when opts.NoSignature is set.
func Write(t testing.TB, path string, opts Options) *x509.Certificate {
	t.Helper()

	cn := opts.CommonName
	if cn == "" {
		cn = "apktest"
	}
	manifest := opts.Manifest
	if manifest == nil {
		manifest = []byte("<manifest package=\"org.example\"/>")
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	put := func(name string, data []byte) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}

	if !opts.NoManifest {
		put("AndroidManifest.xml", manifest)
	}
	put("classes.dex", []byte("dex\n035\x00"))
	for name, data := range opts.Entries {
		put(name, data)
	}

	var cert *x509.Certificate
	if !opts.NoSignature {
		sf := []byte("Signature-Version: 1.0\r\nCreated-By: apktest\r\n\r\n")
		var priv *rsa.PrivateKey
		cert, priv = Certificate(t, cn)

		sd, err := pkcs7.NewSignedData(sf)
		if err != nil {
			t.Fatalf("signed data: %v", err)
		}
		if err := sd.AddSigner(cert, priv, pkcs7.SignerInfoConfig{}); err != nil {
			t.Fatalf("add signer: %v", err)
		}
		sd.Detach()
		block, err := sd.Finish()
		if err != nil {
			t.Fatalf("finish signed data: %v", err)
		}

		put("META-INF/MANIFEST.MF", []byte("Manifest-Version: 1.0\r\n\r\n"))
		put("META-INF/CERT.SF", sf)
		put("META-INF/CERT.RSA", block)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return cert
}
