// Package catalog reads index-v1 style repository catalogs and matches
// installed packages against the releases they list.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"

	models "github.com/slobbe/apk-provenance/internal/types"
)

// flexInt accepts both 12 and "12".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", b, err)
	}
	*f = flexInt(n)
	return nil
}

type indexApp struct {
	PackageName          string   `json:"packageName"`
	Name                 string   `json:"name"`
	Summary              string   `json:"summary"`
	Description          string   `json:"description"`
	Icon                 string   `json:"icon"`
	License              string   `json:"license"`
	WebSite              string   `json:"webSite"`
	IssueTracker         string   `json:"issueTracker"`
	SourceCode           string   `json:"sourceCode"`
	Donate               string   `json:"donate"`
	Bitcoin              string   `json:"bitcoin"`
	Litecoin             string   `json:"litecoin"`
	Dogecoin             string   `json:"dogecoin"`
	FlattrID             string   `json:"flattrID"`
	Categories           []string `json:"categories"`
	AntiFeatures         []string `json:"antiFeatures"`
	Requirements         []string `json:"requirements"`
	SuggestedVersionCode flexInt  `json:"suggestedVersionCode"`
	Added                int64    `json:"added"`
	LastUpdated          int64    `json:"lastUpdated"`
}

type indexPackage struct {
	VersionName    string            `json:"versionName"`
	VersionCode    flexInt           `json:"versionCode"`
	Hash           string            `json:"hash"`
	HashType       string            `json:"hashType"`
	Sig            string            `json:"sig"`
	MinSdkVersion  flexInt           `json:"minSdkVersion"`
	UsesPermission []json.RawMessage `json:"uses-permission"`
	Features       []string          `json:"features"`
	ApkName        string            `json:"apkName"`
	Added          int64             `json:"added"`
}

type index struct {
	Repo struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		IconURL string `json:"icon"`
	} `json:"repo"`
	Apps     []indexApp                `json:"apps"`
	Packages map[string][]indexPackage `json:"packages"`
}

// Catalog is a parsed repository index.
type Catalog struct {
	Name    string
	Address string

	Apps []*models.App
	// Releases are keyed by app id, newest first.
	Releases map[string][]*models.Apk
}

func Load(src string) (*Catalog, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*Catalog, error) {
	var idx index
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	html := bluemonday.UGCPolicy()
	c := &Catalog{
		Name:     idx.Repo.Name,
		Address:  idx.Repo.Address,
		Releases: make(map[string][]*models.Apk, len(idx.Packages)),
	}

	for id, pkgs := range idx.Packages {
		releases := make([]*models.Apk, 0, len(pkgs))
		for _, p := range pkgs {
			apk, err := p.toApk(id)
			if err != nil {
				return nil, err
			}
			releases = append(releases, apk)
		}
		sort.Slice(releases, func(i, j int) bool { return releases[i].Vercode > releases[j].Vercode })
		c.Releases[id] = releases
	}

	for _, ia := range idx.Apps {
		if ia.PackageName == "" {
			return nil, fmt.Errorf("catalog app without packageName")
		}
		c.Apps = append(c.Apps, ia.toApp(html, c.Releases[ia.PackageName]))
	}
	return c, nil
}

func (ia indexApp) toApp(html *bluemonday.Policy, releases []*models.Apk) *models.App {
	app := models.NewApp(ia.PackageName)
	if ia.Name != "" {
		app.Name = ia.Name
	}
	if ia.Summary != "" {
		app.Summary = ia.Summary
	}
	if ia.License != "" {
		app.License = ia.License
	}
	app.Description = html.Sanitize(ia.Description)
	app.Icon = ia.Icon
	app.WebURL = ia.WebSite
	app.TrackerURL = ia.IssueTracker
	app.SourceURL = ia.SourceCode
	app.DonateURL = ia.Donate
	app.BitcoinAddr = ia.Bitcoin
	app.LitecoinAddr = ia.Litecoin
	app.DogecoinAddr = ia.Dogecoin
	app.FlattrID = ia.FlattrID
	app.Categories = models.NewTagList(ia.Categories)
	app.AntiFeatures = models.NewTagList(ia.AntiFeatures)
	app.Requirements = models.NewTagList(ia.Requirements)
	app.Added = fromMillis(ia.Added)
	app.LastUpdated = fromMillis(ia.LastUpdated)
	app.SuggestedVercode = int(ia.SuggestedVersionCode)

	if len(releases) > 0 {
		app.UpstreamVersion = releases[0].Version
		app.UpstreamVercode = releases[0].Vercode
	}
	return app
}

func (p indexPackage) toApk(id string) (*models.Apk, error) {
	apk := models.NewApk(id, int(p.VersionCode))
	apk.Version = p.VersionName
	apk.Hash = p.Hash
	apk.HashType = p.HashType
	apk.Sig = p.Sig
	apk.MinSdkVersion = int(p.MinSdkVersion)
	apk.Features = models.NewTagList(p.Features)
	apk.Added = fromMillis(p.Added)
	if p.ApkName != "" {
		apk.ApkName = p.ApkName
	}

	perms, err := permissionNames(p.UsesPermission)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", apk.ApkName, err)
	}
	apk.Permissions = models.NewTagList(perms)
	return apk, nil
}

// permissionNames accepts entries written as "name" or ["name", maxSdk].
func permissionNames(raw []json.RawMessage) ([]string, error) {
	var out []string
	for _, r := range raw {
		var name string
		if err := json.Unmarshal(r, &name); err == nil {
			out = append(out, name)
			continue
		}
		var pair []any
		if err := json.Unmarshal(r, &pair); err != nil || len(pair) == 0 {
			return nil, fmt.Errorf("invalid uses-permission entry %s", r)
		}
		name, ok := pair[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid uses-permission entry %s", r)
		}
		out = append(out, name)
	}
	return out, nil
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
