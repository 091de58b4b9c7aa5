// Package platform derives intake capabilities from platform registry records.
// The four migration modes are mutually exclusive and exhaustive over the
// Platform shape, and they determine which wizard steps render and which
// validation rules apply, so the classification here must not drift.
package platform

import "github.com/bytetide-io/bytetide-backend/internal/db/models"

// Mode classifies how a source platform's data reaches ByteTide
type Mode string

const (
	// ModeCSV: the platform exports a fixed set of required CSV files
	ModeCSV Mode = "csv"
	// ModeAPI: we pull data through the platform's API using customer credentials
	ModeAPI Mode = "api"
	// ModePlugin: API pull, but the customer must first install a bridge plugin
	ModePlugin Mode = "plugin"
	// ModeCustom: no fixed schema; the customer uploads whatever exports they have
	ModeCustom Mode = "custom"
)

// Capabilities is the derived view of one platform record consumed by the
// wizard and the submission validators.
type Capabilities struct {
	Mode          Mode
	RequiredFiles []string
	APIFields     map[string]models.APIField
	PluginURL     *string
}

// Classify derives the migration mode for a platform record
func Classify(p *models.Platform) Mode {
	switch {
	case len(p.Files) > 0:
		return ModeCSV
	case p.API != nil && p.PluginURL == nil:
		return ModeAPI
	case p.API != nil && p.PluginURL != nil:
		return ModePlugin
	default:
		return ModeCustom
	}
}

// Derive builds the full capability view for a platform record
func Derive(p *models.Platform) Capabilities {
	return Capabilities{
		Mode:          Classify(p),
		RequiredFiles: p.Files,
		APIFields:     p.API,
		PluginURL:     p.PluginURL,
	}
}

// RequiresFiles reports whether the intake flow collects file uploads
func (c Capabilities) RequiresFiles() bool {
	return c.Mode == ModeCSV || c.Mode == ModeCustom
}

// RequiresAPI reports whether the intake flow collects API credentials
func (c Capabilities) RequiresAPI() bool {
	return c.Mode == ModeAPI || c.Mode == ModePlugin
}
