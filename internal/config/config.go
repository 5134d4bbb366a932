package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appName = "apk-provenance"

var (
	DataDir   string
	ConfigDir string

	DbSrc       string
	RegistrySrc string
	ConfigSrc   string
)

type resolvedPaths struct {
	DataDir     string
	ConfigDir   string
	DbSrc       string
	RegistrySrc string
	ConfigSrc   string
}

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		panic("failed to get home directory: " + err.Error())
	}

	paths := resolvePaths(home, os.Getenv)
	DataDir = paths.DataDir
	ConfigDir = paths.ConfigDir
	DbSrc = paths.DbSrc
	RegistrySrc = paths.RegistrySrc
	ConfigSrc = paths.ConfigSrc
}

func EnsureDirsExist() error {
	dirs := []string{DataDir, ConfigDir, filepath.Dir(DbSrc)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func resolvePaths(home string, getenv func(string) string) resolvedPaths {
	dataHome := resolveXDGBaseDir(getenv("XDG_DATA_HOME"), filepath.Join(home, ".local", "share"))
	stateHome := resolveXDGBaseDir(getenv("XDG_STATE_HOME"), filepath.Join(home, ".local", "state"))
	configHome := resolveXDGBaseDir(getenv("XDG_CONFIG_HOME"), filepath.Join(home, ".config"))

	return resolvedPaths{
		DataDir:     filepath.Join(dataHome, appName),
		ConfigDir:   filepath.Join(configHome, appName),
		DbSrc:       filepath.Join(stateHome, appName, "apps.json"),
		RegistrySrc: filepath.Join(dataHome, appName, "packages.yaml"),
		ConfigSrc:   filepath.Join(configHome, appName, "config.yaml"),
	}
}

func resolveXDGBaseDir(envValue, fallback string) string {
	value := strings.TrimSpace(envValue)
	if value != "" && filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return fallback
}
