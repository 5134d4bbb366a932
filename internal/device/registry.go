// Package device serves installed-package metadata from a YAML snapshot of
// a device, taken by whatever tool pulled the APKs off it.
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slobbe/apk-provenance/internal/core"
)

type Package struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Description string `yaml:"description,omitempty"`
	// Path of the APK. Relative paths resolve against the snapshot file.
	Apk       string `yaml:"apk,omitempty"`
	Installer string `yaml:"installer,omitempty"`

	VersionName string `yaml:"version_name,omitempty"`
	VersionCode int    `yaml:"version_code,omitempty"`

	FirstInstall time.Time `yaml:"first_install,omitempty"`
	LastUpdate   time.Time `yaml:"last_update,omitempty"`

	Permissions []string `yaml:"permissions,omitempty"`
	Features    []string `yaml:"features,omitempty"`
	MinSdk      int      `yaml:"min_sdk,omitempty"`
}

type snapshot struct {
	Packages []Package `yaml:"packages"`
}

type Registry struct {
	src      string
	packages map[string]*Package
}

func Load(src string) (*Registry, error) {
	b, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var snap snapshot
	if err := yaml.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", src, err)
	}

	r := &Registry{src: src, packages: make(map[string]*Package, len(snap.Packages))}
	base := filepath.Dir(src)
	for i := range snap.Packages {
		p := snap.Packages[i]
		if p.ID == "" {
			return nil, fmt.Errorf("registry %s: package %d has no id", src, i)
		}
		if _, dup := r.packages[p.ID]; dup {
			return nil, fmt.Errorf("registry %s: duplicate package %s", src, p.ID)
		}
		if p.Apk != "" && !filepath.IsAbs(p.Apk) {
			p.Apk = filepath.Join(base, p.Apk)
		}
		r.packages[p.ID] = &p
	}
	return r, nil
}

// IDs returns the ids of packages that have an installed artifact.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.packages))
	for id, p := range r.packages {
		if p.Apk != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) lookup(id string) (*Package, error) {
	p, ok := r.packages[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, core.ErrPackageNotFound)
	}
	return p, nil
}

func (r *Registry) ApplicationInfo(id string) (*core.ApplicationInfo, error) {
	p, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return &core.ApplicationInfo{
		Label:           p.Label,
		Description:     p.Description,
		PublicSourceDir: p.Apk,
	}, nil
}

func (r *Registry) PackageInfo(id string) (*core.PackageInfo, error) {
	p, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return &core.PackageInfo{
		VersionName:          p.VersionName,
		VersionCode:          p.VersionCode,
		FirstInstallTime:     p.FirstInstall,
		LastUpdateTime:       p.LastUpdate,
		RequestedPermissions: p.Permissions,
		RequiredFeatures:     p.Features,
		MinSdkVersion:        p.MinSdk,
	}, nil
}

func (r *Registry) InstallerOf(id string) (string, error) {
	p, err := r.lookup(id)
	if err != nil {
		return "", err
	}
	return p.Installer, nil
}
