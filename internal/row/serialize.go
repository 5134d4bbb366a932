package row

import (
	models "github.com/slobbe/apk-provenance/internal/types"
)

// AppValues returns the persisted app aspect. The suggested version name,
// the refresh flag and installed state are not part of it.
func AppValues(app *models.App) Values {
	return Values{
		ColID:               app.ID,
		ColName:             app.Name,
		ColSummary:          app.Summary,
		ColIcon:             app.Icon,
		ColIconURL:          app.IconURL,
		ColDescription:      app.Description,
		ColLicense:          app.License,
		ColWebURL:           app.WebURL,
		ColTrackerURL:       app.TrackerURL,
		ColSourceURL:        app.SourceURL,
		ColDonateURL:        app.DonateURL,
		ColBitcoinAddr:      app.BitcoinAddr,
		ColLitecoinAddr:     app.LitecoinAddr,
		ColDogecoinAddr:     app.DogecoinAddr,
		ColFlattrID:         app.FlattrID,
		ColAdded:            formatDate(app.Added),
		ColLastUpdated:      formatDate(app.LastUpdated),
		ColSuggestedVercode: app.SuggestedVercode,
		ColUpstreamVersion:  app.UpstreamVersion,
		ColUpstreamVercode:  app.UpstreamVercode,
		ColCategories:       app.Categories.String(),
		ColAntiFeatures:     app.AntiFeatures.String(),
		ColRequirements:     app.Requirements.String(),
		ColCompatible:       boolInt(app.Compatible),
		ColIgnoreAllUpdates: boolInt(app.IgnoreAllUpdates),
		ColIgnoreThisUpdate: app.IgnoreThisUpdate,
	}
}

// ApkValues returns the persisted release aspect of apk.
func ApkValues(apk *models.Apk) Values {
	return Values{
		ColID:            apk.ID,
		ColVersion:       apk.Version,
		ColVercode:       apk.Vercode,
		ColHashType:      apk.HashType,
		ColHash:          apk.Hash,
		ColSig:           apk.Sig,
		ColMinSdkVersion: apk.MinSdkVersion,
		ColPermissions:   apk.Permissions.String(),
		ColFeatures:      apk.Features.String(),
		ColApkName:       apk.ApkName,
		ColAdded:         formatDate(apk.Added),
	}
}

// InstalledValues returns the installed aspect of app, or nil when nothing
// is installed.
func InstalledValues(app *models.App) Values {
	if app.InstalledApk == nil {
		return nil
	}
	v := ApkValues(app.InstalledApk)
	v[ColInstalledFile] = app.InstalledApk.InstalledFile
	return v
}

// InstalledColumns projects an installed record onto the columns the app
// hydrator reads.
func InstalledColumns(installed Values) Values {
	if installed == nil {
		return Values{}
	}
	r := FromValues(installed)
	out := Values{}
	for i := 0; i < r.ColumnCount(); i++ {
		switch r.ColumnName(i) {
		case ColVercode:
			out[ColInstalledVersionCode] = r.Int(i)
		case ColVersion:
			out[ColInstalledVersionName] = r.String(i)
		}
	}
	return out
}
