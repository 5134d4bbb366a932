package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/slobbe/apk-provenance/internal/filter"
	util "github.com/slobbe/apk-provenance/internal/helpers"
)

// EnvPrefix prefixes every environment override, e.g. APKPROV_HASH_TYPE.
const EnvPrefix = "APKPROV"

const (
	BackendJSON     = "json"
	BackendPostgres = "postgres"
)

type Settings struct {
	Log      LogSettings     `yaml:"log" envconfig:"LOG"`
	HashType string          `yaml:"hash_type" envconfig:"HASH_TYPE"`
	Filter   filter.Settings `yaml:"filter" envconfig:"FILTER"`
	Storage  StorageSettings `yaml:"storage" envconfig:"STORAGE"`
	// Registry overrides RegistrySrc.
	Registry string `yaml:"registry" envconfig:"REGISTRY"`
}

type LogSettings struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

type StorageSettings struct {
	Backend     string `yaml:"backend" envconfig:"BACKEND"`
	Database    string `yaml:"database" envconfig:"DATABASE"` // JSON backend file
	PostgresDSN string `yaml:"postgres_dsn" envconfig:"POSTGRES_DSN"`
}

func Default() *Settings {
	return &Settings{
		Log:      LogSettings{Level: "info"},
		HashType: util.DefaultHashType,
		Storage: StorageSettings{
			Backend:  BackendJSON,
			Database: DbSrc,
		},
		Registry: RegistrySrc,
	}
}

// Load layers defaults, the YAML file at path (if it exists) and APKPROV_*
// environment variables, in that order.
func Load(path string) (*Settings, error) {
	s := Default()

	if path != "" {
		content, err := util.ReadFileContents(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal([]byte(content), s); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, s); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Validate() error {
	s.HashType = strings.ToLower(strings.TrimSpace(s.HashType))
	if !util.SupportedHashType(s.HashType) {
		return fmt.Errorf("unsupported hash type %q", s.HashType)
	}

	switch s.Storage.Backend {
	case BackendJSON:
		if s.Storage.Database == "" {
			return fmt.Errorf("json storage needs a database path")
		}
	case BackendPostgres:
		if s.Storage.PostgresDSN == "" {
			return fmt.Errorf("postgres storage needs a dsn")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", s.Storage.Backend)
	}
	return nil
}
