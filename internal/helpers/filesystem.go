package util

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

func MakeAbsolute(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return path, err
	}

	return filepath.Join(dir, path), nil
}

// ReadFileContents reads a UTF-8 text file.
func ReadFileContents(src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to access file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", src)
	}

	content, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if !utf8.Valid(content) {
		return "", fmt.Errorf("%s is not valid UTF-8", src)
	}

	return string(content), nil
}
