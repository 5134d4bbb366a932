// Package apk reads the pieces of an installed APK needed to identify its
// signer: the manifest entry and the certificates in the v1 signature block.
package apk

import (
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.mozilla.org/pkcs7"
)

const ManifestEntry = "AndroidManifest.xml"

var (
	ErrEntryNotFound    = errors.New("archive entry not found")
	ErrNoSignatureBlock = errors.New("no signature block in META-INF")
)

type Archive struct {
	path string
	zr   *zip.ReadCloser
}

type Entry struct {
	file     *zip.File
	consumed bool
}

func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return &Archive{path: path, zr: zr}, nil
}

func (a *Archive) Close() error {
	return a.zr.Close()
}

func (a *Archive) Entry(name string) (*Entry, error) {
	for _, f := range a.zr.File {
		if f.Name == name {
			return &Entry{file: f}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrEntryNotFound)
}

// Consume reads the entry to the end so a corrupt or truncated entry is
// reported before certificates are trusted.
func (e *Entry) Consume() error {
	rc, err := e.file.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", e.file.Name, err)
	}
	defer rc.Close()

	buf := make([]byte, 2048)
	if _, err := io.CopyBuffer(io.Discard, rc, buf); err != nil {
		return fmt.Errorf("read entry %s: %w", e.file.Name, err)
	}
	e.consumed = true
	return nil
}

func (e *Entry) Consumed() bool { return e.consumed }

// ConsumeEntry locates name and reads it fully.
func (a *Archive) ConsumeEntry(name string) error {
	e, err := a.Entry(name)
	if err != nil {
		return err
	}
	return e.Consume()
}

// Certificates returns the certificates of the archive's signature block,
// signer first. Chain order is kept for the rest.
func (a *Archive) Certificates() ([]*x509.Certificate, error) {
	block, err := a.signatureBlock()
	if err != nil {
		return nil, err
	}

	rc, err := block.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", block.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", block.Name, err)
	}

	p7, err := pkcs7.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", block.Name, err)
	}

	return signerFirst(p7), nil
}

func (a *Archive) signatureBlock() (*zip.File, error) {
	for _, f := range a.zr.File {
		dir, name := path.Split(f.Name)
		if dir != "META-INF/" {
			continue
		}
		switch strings.ToUpper(path.Ext(name)) {
		case ".RSA", ".DSA", ".EC":
			return f, nil
		}
	}
	return nil, ErrNoSignatureBlock
}

func signerFirst(p7 *pkcs7.PKCS7) []*x509.Certificate {
	signer := p7.GetOnlySigner()
	if signer == nil {
		return p7.Certificates
	}

	out := []*x509.Certificate{signer}
	for _, c := range p7.Certificates {
		if c != signer {
			out = append(out, c)
		}
	}
	return out
}
