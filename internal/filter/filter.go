package filter

import models "github.com/slobbe/apk-provenance/internal/types"

const RootRequirement = "root"

type Settings struct {
	ShowAntiFeatures bool `yaml:"show_anti_features" envconfig:"SHOW_ANTI_FEATURES"`
	RootAccess       bool `yaml:"root_access" envconfig:"ROOT_ACCESS"`
}

// Filtered reports whether app should be hidden from the user.
func (s Settings) Filtered(app *models.App) bool {
	if !s.ShowAntiFeatures && len(app.AntiFeatures) > 0 {
		return true
	}
	if !s.RootAccess && app.Requirements.Contains(RootRequirement) {
		return true
	}
	return false
}
