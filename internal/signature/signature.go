// Package signature derives the signing certificate fingerprint that catalog
// tooling records as an APK's "sig".
package signature

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
)

var ErrCertificateEncoding = errors.New("certificate encoding failed")

const hexDigits = "0123456789abcdef"

// Fingerprint returns the md5 of the lowercase hex text of raw, not of raw
// itself. Catalog servers compute sig this way and the two must agree.
func Fingerprint(raw []byte) string {
	text := make([]byte, len(raw)*2)
	for i, v := range raw {
		text[i*2] = hexDigits[(v>>4)&0xF]
		text[i*2+1] = hexDigits[v&0xF]
	}
	sum := md5.Sum(text)
	return hex.EncodeToString(sum[:])
}

// FromCertificate fingerprints a DER encoded certificate.
func FromCertificate(der []byte) (string, error) {
	if len(der) == 0 {
		return "", ErrCertificateEncoding
	}
	return Fingerprint(der), nil
}

// Valid reports whether sig is lowercase, even length hex text.
func Valid(sig string) bool {
	if sig == "" || len(sig)%2 != 0 {
		return false
	}
	for i := 0; i < len(sig); i++ {
		c := sig[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
