package util

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

const DefaultHashType = "sha256"

var hashers = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

func SupportedHashType(hashType string) bool {
	_, ok := hashers[strings.ToLower(strings.TrimSpace(hashType))]
	return ok
}

// HashFile returns the lowercase hex digest of the file at src.
func HashFile(src, hashType string) (string, error) {
	newHash, ok := hashers[strings.ToLower(strings.TrimSpace(hashType))]
	if !ok {
		return "", fmt.Errorf("unsupported hash type %q", hashType)
	}

	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := newHash()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", src, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
