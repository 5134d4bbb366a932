package row

// App columns.
const (
	ColID               = "id"
	ColName             = "name"
	ColSummary          = "summary"
	ColIcon             = "icon"
	ColIconURL          = "iconUrl"
	ColDescription      = "description"
	ColLicense          = "license"
	ColWebURL           = "webURL"
	ColTrackerURL       = "trackerURL"
	ColSourceURL        = "sourceURL"
	ColDonateURL        = "donateURL"
	ColBitcoinAddr      = "bitcoinAddr"
	ColLitecoinAddr     = "litecoinAddr"
	ColDogecoinAddr     = "dogecoinAddr"
	ColFlattrID         = "flattrID"
	ColSuggestedVersion = "suggestedApkVersion"
	ColSuggestedVercode = "suggestedVercode"
	ColUpstreamVersion  = "upstreamVersion"
	ColUpstreamVercode  = "upstreamVercode"
	ColAdded            = "added"
	ColLastUpdated      = "lastUpdated"
	ColCategories       = "categories"
	ColAntiFeatures     = "antiFeatures"
	ColRequirements     = "requirements"
	ColCompatible       = "compatible"
	ColIgnoreAllUpdates = "ignoreAllUpdates"
	ColIgnoreThisUpdate = "ignoreThisUpdate"

	ColInstalledVersionCode = "installedVersionCode"
	ColInstalledVersionName = "installedVersionName"
)

// Apk columns. ColID and ColAdded are shared with the app aspect.
const (
	ColVersion       = "version"
	ColVercode       = "vercode"
	ColHashType      = "hashType"
	ColHash          = "hash"
	ColSig           = "sig"
	ColMinSdkVersion = "minSdkVersion"
	ColPermissions   = "permissions"
	ColFeatures      = "features"
	ColApkName       = "apkName"
	ColInstalledFile = "installedFile"
)

// DateFormat is the on-disk layout for added/lastUpdated. It keeps the
// zone offset so the stored calendar day is the one the value was taken in.
const DateFormat = "2006-01-02T15:04:05.999999999Z07:00"

// dayFormat is the older date-only layout, read as a local calendar day.
const dayFormat = "2006-01-02"
