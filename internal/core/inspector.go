package core

import (
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/slobbe/apk-provenance/internal/apk"
	util "github.com/slobbe/apk-provenance/internal/helpers"
	"github.com/slobbe/apk-provenance/internal/logger"
	"github.com/slobbe/apk-provenance/internal/signature"
	models "github.com/slobbe/apk-provenance/internal/types"
)

const (
	anonymousInstaller = "unknown"
	summaryLength      = 40
	// Layout of install dates inside the generated description.
	DescriptionDateLayout = "Mon Jan 02 15:04:05 MST 2006"
)

// SignedArchive is the part of an opened APK the inspector needs.
type SignedArchive interface {
	ConsumeEntry(name string) error
	Certificates() ([]*x509.Certificate, error)
	Close() error
}

type ArchiveOpener func(path string) (SignedArchive, error)

func openAPK(path string) (SignedArchive, error) {
	return apk.Open(path)
}

type Inspector struct {
	svc      PackageService
	hashType string
	now      func() time.Time
	guard    *CertReadGuard
	open     ArchiveOpener
	log      *zap.SugaredLogger
	html     *bluemonday.Policy
}

type Option func(*Inspector)

func WithHashType(hashType string) Option {
	return func(in *Inspector) { in.hashType = hashType }
}

func WithClock(now func() time.Time) Option {
	return func(in *Inspector) { in.now = now }
}

func WithGuard(g *CertReadGuard) Option {
	return func(in *Inspector) { in.guard = g }
}

func WithArchiveOpener(open ArchiveOpener) Option {
	return func(in *Inspector) { in.open = open }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(in *Inspector) { in.log = l }
}

func NewInspector(svc PackageService, opts ...Option) *Inspector {
	in := &Inspector{
		svc:      svc,
		hashType: util.DefaultHashType,
		now:      time.Now,
		guard:    DefaultGuard,
		open:     openAPK,
		log:      logger.Logger(),
		html:     bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Inspect builds an App for the installed package id, including the owned
// Apk and the fingerprint of its signing certificate.
func (in *Inspector) Inspect(id string) (*models.App, error) {
	appInfo, err := in.svc.ApplicationInfo(id)
	if err != nil {
		return nil, fmt.Errorf("application info for %s: %w", id, err)
	}
	pkg, err := in.svc.PackageInfo(id)
	if err != nil {
		return nil, fmt.Errorf("package info for %s: %w", id, err)
	}

	installer := in.installerLabel(id)

	added := pkg.FirstInstallTime
	updated := pkg.LastUpdateTime
	if added.IsZero() || updated.IsZero() {
		now := in.now()
		added, updated = now, now
	}

	app := models.NewApp(id)
	if appInfo.Label != "" {
		app.Name = appInfo.Label
	}
	app.Summary = summarize(appInfo.Description, installer)
	app.Description = in.describe(appInfo.Description, installer, added, updated)
	app.Added = added
	app.LastUpdated = updated

	owned, err := in.ownedApk(id, appInfo.PublicSourceDir, pkg, added)
	if err != nil {
		return nil, err
	}

	app.InstalledApk = owned
	app.InstalledVersionName = owned.Version
	app.InstalledVersionCode = owned.Vercode

	in.log.Debugw("inspected package", "id", id, "vercode", owned.Vercode, "sig", owned.Sig)
	return app, nil
}

func (in *Inspector) installerLabel(id string) string {
	installer, err := in.svc.InstallerOf(id)
	if err != nil {
		in.log.Debugw("installer lookup failed", "id", id, "error", err)
		installer = ""
	}
	if installer == "" {
		return anonymousInstaller
	}

	info, err := in.svc.ApplicationInfo(installer)
	if err != nil {
		in.log.Debugw("installer label unavailable", "installer", installer, "error", err)
		return installer
	}
	if info.Label == "" {
		return installer
	}
	return info.Label
}

func summarize(description, installer string) string {
	if description == "" {
		return "(installed by " + installer + ")"
	}
	runes := []rune(description)
	if len(runes) <= summaryLength {
		return description
	}
	return string(runes[:summaryLength])
}

func (in *Inspector) describe(description, installer string, added, updated time.Time) string {
	out := "<p>"
	if description != "" {
		out += in.html.Sanitize(description) + "\n"
	}
	out += fmt.Sprintf("(installed by %s, first installed on %s, last updated on %s)</p>",
		in.html.Sanitize(installer),
		added.Format(DescriptionDateLayout),
		updated.Format(DescriptionDateLayout))
	return out
}

func (in *Inspector) ownedApk(id, src string, pkg *PackageInfo, added time.Time) (*models.Apk, error) {
	owned := models.NewApk(id, pkg.VersionCode)
	owned.Version = pkg.VersionName
	owned.HashType = in.hashType
	owned.Added = added
	owned.MinSdkVersion = pkg.MinSdkVersion
	owned.InstalledFile = src
	owned.Permissions = models.NewTagList(pkg.RequestedPermissions)
	owned.Features = models.NewTagList(pkg.RequiredFeatures)

	if src == "" {
		return nil, fmt.Errorf("%s has no installed artifact: %w", id, ErrIO)
	}

	hash, err := util.HashFile(src, in.hashType)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w: %w", src, ErrIO, err)
	}
	owned.Hash = hash

	raw, err := SignerCertificate(src, in.open, in.guard)
	if err != nil {
		return nil, err
	}

	sig, err := signature.FromCertificate(raw)
	if err != nil {
		return nil, err
	}
	owned.Sig = sig
	return owned, nil
}

// SignerCertificate returns the DER bytes of the first certificate that
// signed the manifest entry of the archive at src. The archive is read while
// holding a lease on guard. Nil open and guard fall back to the APK reader and
// DefaultGuard.
func SignerCertificate(src string, open ArchiveOpener, guard *CertReadGuard) ([]byte, error) {
	if open == nil {
		open = openAPK
	}
	if guard == nil {
		guard = DefaultGuard
	}

	lease := guard.Acquire()
	defer lease.Release()

	archive, err := open(src)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", src, ErrIO, err)
	}
	defer archive.Close()

	if err := archive.ConsumeEntry(apk.ManifestEntry); err != nil {
		if errors.Is(err, apk.ErrEntryNotFound) {
			return nil, fmt.Errorf("%s: %w: %w", src, ErrCertificateMissing, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", src, ErrIO, err)
	}

	certs, err := archive.Certificates()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", src, ErrCertificateMissing, err)
	}
	if len(certs) == 0 || certs[0] == nil {
		return nil, fmt.Errorf("%s: %w", src, ErrCertificateMissing)
	}
	return certs[0].Raw, nil
}
