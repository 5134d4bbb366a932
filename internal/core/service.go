package core

import (
	"errors"
	"time"

	"github.com/slobbe/apk-provenance/internal/signature"
)

var (
	ErrPackageNotFound     = errors.New("package not found")
	ErrCertificateMissing  = errors.New("signing certificate missing")
	ErrCertificateEncoding = signature.ErrCertificateEncoding
	ErrIO                  = errors.New("package artifact unreadable")
)

// PackageService answers queries about installed packages. Implementations
// return ErrPackageNotFound for ids they do not know.
type PackageService interface {
	ApplicationInfo(id string) (*ApplicationInfo, error)
	PackageInfo(id string) (*PackageInfo, error)
	InstallerOf(id string) (string, error)
}

type ApplicationInfo struct {
	Label           string
	Description     string
	PublicSourceDir string // path of the installed artifact
}

type PackageInfo struct {
	VersionName string
	VersionCode int

	FirstInstallTime time.Time
	LastUpdateTime   time.Time

	RequestedPermissions []string
	RequiredFeatures     []string
	MinSdkVersion        int
}
