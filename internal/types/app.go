package models

import (
	"strconv"
	"time"
)

type App struct {
	ID          string `json:"id"`   // package identifier, unique key
	Name        string `json:"name"` // display name
	Summary     string `json:"summary"`
	Description string `json:"description"`

	Icon    string `json:"icon,omitempty"`
	IconURL string `json:"icon_url,omitempty"`

	License    string `json:"license"`
	WebURL     string `json:"web_url,omitempty"`
	TrackerURL string `json:"tracker_url,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
	DonateURL  string `json:"donate_url,omitempty"`

	BitcoinAddr  string `json:"bitcoin_addr,omitempty"`
	LitecoinAddr string `json:"litecoin_addr,omitempty"`
	DogecoinAddr string `json:"dogecoin_addr,omitempty"`
	FlattrID     string `json:"flattr_id,omitempty"`

	// nil when the catalog lists none
	Categories   TagList `json:"categories,omitempty"`
	AntiFeatures TagList `json:"anti_features,omitempty"`
	Requirements TagList `json:"requirements,omitempty"`

	Added       time.Time `json:"added"`
	LastUpdated time.Time `json:"last_updated"`

	UpstreamVersion string `json:"upstream_version,omitempty"`
	UpstreamVercode int    `json:"upstream_vercode,omitempty"`

	// SuggestedVercode only changes when a different release becomes the
	// suggested one; the matching version name is read back from storage.
	SuggestedVercode int `json:"suggested_vercode"`
	suggestedVersion string

	Compatible    bool `json:"compatible"`
	IncludeInRepo bool `json:"include_in_repo"`

	IgnoreAllUpdates bool `json:"ignore_all_updates"`
	IgnoreThisUpdate int  `json:"ignore_this_update"`

	InstalledVersionName string `json:"installed_version_name,omitempty"`
	InstalledVersionCode int    `json:"installed_version_code,omitempty"`
	InstalledApk         *Apk   `json:"installed_apk,omitempty"`

	// Used while refreshing from a catalog, never persisted.
	Updated bool `json:"-"`
}

func NewApp(id string) *App {
	return &App{
		ID:      id,
		Name:    "Unknown",
		Summary: "Unknown application",
		License: "Unknown",
	}
}

func (a *App) SuggestedVersion() string { return a.suggestedVersion }

// SetSuggestedVersion is reserved for storage hydration.
func (a *App) SetSuggestedVersion(version string) { a.suggestedVersion = version }

type Apk struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Vercode int    `json:"vercode"`

	HashType string `json:"hash_type"`
	Hash     string `json:"hash"`
	Sig      string `json:"sig"`

	MinSdkVersion int     `json:"min_sdk_version"`
	Permissions   TagList `json:"permissions,omitempty"`
	Features      TagList `json:"features,omitempty"`

	ApkName       string    `json:"apk_name"`
	InstalledFile string    `json:"installed_file,omitempty"`
	Added         time.Time `json:"added"`
}

func NewApk(id string, vercode int) *Apk {
	return &Apk{
		ID:      id,
		Vercode: vercode,
		ApkName: ApkName(id, vercode),
	}
}

func (a *Apk) SetVercode(vercode int) {
	a.Vercode = vercode
	a.ApkName = ApkName(a.ID, vercode)
}

func ApkName(id string, vercode int) string {
	return id + "_" + strconv.Itoa(vercode) + ".apk"
}
