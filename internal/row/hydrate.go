package row

import (
	models "github.com/slobbe/apk-provenance/internal/types"
)

type appDecoder func(app *models.App, r Row, i int)

type apkDecoder func(apk *models.Apk, r Row, i int)

// Built once; columns missing from these maps are ignored on read so newer
// schemas can add columns without breaking older readers.
var appDecoders = map[string]appDecoder{
	ColID:           func(a *models.App, r Row, i int) { a.ID = r.String(i) },
	ColName:         func(a *models.App, r Row, i int) { a.Name = r.String(i) },
	ColSummary:      func(a *models.App, r Row, i int) { a.Summary = r.String(i) },
	ColIcon:         func(a *models.App, r Row, i int) { a.Icon = r.String(i) },
	ColIconURL:      func(a *models.App, r Row, i int) { a.IconURL = r.String(i) },
	ColDescription:  func(a *models.App, r Row, i int) { a.Description = r.String(i) },
	ColLicense:      func(a *models.App, r Row, i int) { a.License = r.String(i) },
	ColWebURL:       func(a *models.App, r Row, i int) { a.WebURL = r.String(i) },
	ColTrackerURL:   func(a *models.App, r Row, i int) { a.TrackerURL = r.String(i) },
	ColSourceURL:    func(a *models.App, r Row, i int) { a.SourceURL = r.String(i) },
	ColDonateURL:    func(a *models.App, r Row, i int) { a.DonateURL = r.String(i) },
	ColBitcoinAddr:  func(a *models.App, r Row, i int) { a.BitcoinAddr = r.String(i) },
	ColLitecoinAddr: func(a *models.App, r Row, i int) { a.LitecoinAddr = r.String(i) },
	ColDogecoinAddr: func(a *models.App, r Row, i int) { a.DogecoinAddr = r.String(i) },
	ColFlattrID:     func(a *models.App, r Row, i int) { a.FlattrID = r.String(i) },

	ColSuggestedVersion: func(a *models.App, r Row, i int) { a.SetSuggestedVersion(r.String(i)) },
	ColSuggestedVercode: func(a *models.App, r Row, i int) { a.SuggestedVercode = r.Int(i) },
	ColUpstreamVersion:  func(a *models.App, r Row, i int) { a.UpstreamVersion = r.String(i) },
	ColUpstreamVercode:  func(a *models.App, r Row, i int) { a.UpstreamVercode = r.Int(i) },

	ColAdded:       func(a *models.App, r Row, i int) { a.Added = parseDate(r.String(i)) },
	ColLastUpdated: func(a *models.App, r Row, i int) { a.LastUpdated = parseDate(r.String(i)) },

	ColCategories:   func(a *models.App, r Row, i int) { a.Categories = models.ParseTagList(r.String(i)) },
	ColAntiFeatures: func(a *models.App, r Row, i int) { a.AntiFeatures = models.ParseTagList(r.String(i)) },
	ColRequirements: func(a *models.App, r Row, i int) { a.Requirements = models.ParseTagList(r.String(i)) },

	ColCompatible:       func(a *models.App, r Row, i int) { a.Compatible = r.Int(i) == 1 },
	ColIgnoreAllUpdates: func(a *models.App, r Row, i int) { a.IgnoreAllUpdates = r.Int(i) == 1 },
	ColIgnoreThisUpdate: func(a *models.App, r Row, i int) { a.IgnoreThisUpdate = r.Int(i) },

	ColInstalledVersionCode: func(a *models.App, r Row, i int) { a.InstalledVersionCode = r.Int(i) },
	ColInstalledVersionName: func(a *models.App, r Row, i int) { a.InstalledVersionName = r.String(i) },
}

var apkDecoders = map[string]apkDecoder{
	ColID:            func(a *models.Apk, r Row, i int) { a.ID = r.String(i) },
	ColVersion:       func(a *models.Apk, r Row, i int) { a.Version = r.String(i) },
	ColVercode:       func(a *models.Apk, r Row, i int) { a.Vercode = r.Int(i) },
	ColHashType:      func(a *models.Apk, r Row, i int) { a.HashType = r.String(i) },
	ColHash:          func(a *models.Apk, r Row, i int) { a.Hash = r.String(i) },
	ColSig:           func(a *models.Apk, r Row, i int) { a.Sig = r.String(i) },
	ColMinSdkVersion: func(a *models.Apk, r Row, i int) { a.MinSdkVersion = r.Int(i) },
	ColPermissions:   func(a *models.Apk, r Row, i int) { a.Permissions = models.ParseTagList(r.String(i)) },
	ColFeatures:      func(a *models.Apk, r Row, i int) { a.Features = models.ParseTagList(r.String(i)) },
	ColApkName:       func(a *models.Apk, r Row, i int) { a.ApkName = r.String(i) },
	ColInstalledFile: func(a *models.Apk, r Row, i int) { a.InstalledFile = r.String(i) },
	ColAdded:         func(a *models.Apk, r Row, i int) { a.Added = parseDate(r.String(i)) },
}

// HydrateApp builds an App from the record r is positioned on.
func HydrateApp(r Row) (*models.App, error) {
	if r == nil || !r.Positioned() {
		return nil, ErrRowPosition
	}

	app := models.NewApp("unknown")
	for i := 0; i < r.ColumnCount(); i++ {
		if decode, ok := appDecoders[r.ColumnName(i)]; ok {
			decode(app, r, i)
		}
	}
	return app, nil
}

// HydrateApk builds an Apk from the record r is positioned on. A stored
// apkName wins over the derived one.
func HydrateApk(r Row) (*models.Apk, error) {
	if r == nil || !r.Positioned() {
		return nil, ErrRowPosition
	}

	apk := &models.Apk{}
	for i := 0; i < r.ColumnCount(); i++ {
		if decode, ok := apkDecoders[r.ColumnName(i)]; ok {
			decode(apk, r, i)
		}
	}
	if apk.ApkName == "" {
		apk.ApkName = models.ApkName(apk.ID, apk.Vercode)
	}
	return apk, nil
}
