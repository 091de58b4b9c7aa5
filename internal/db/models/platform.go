// Package models - platform.go defines the Platform model describing one source
// system's intake requirements: required file kinds, API credential fields, or a
// plugin. Read-only reference data.
package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// APIField describes one credential field an API-based platform requires
type APIField struct {
	Label  string `json:"label"`
	Secret bool   `json:"secret"`
}

// Platform describes one source platform's intake requirements.
// Files non-nil means CSV intake; API non-nil means credential intake;
// PluginURL non-nil marks a plugin-assisted API platform. All nil is a
// custom migration with free-form files.
type Platform struct {
	ID        string              `db:"id" json:"id"`
	Name      string              `db:"name" json:"name"`
	Files     pq.StringArray      `db:"files" json:"files"`
	API       map[string]APIField `db:"-" json:"api"`
	RawAPI    RawJSON             `db:"api" json:"-"`
	PluginURL *string             `db:"plugin_url" json:"plugin_url"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}

// DecodeAPI parses the raw JSONB api column into the typed API map.
// A NULL column leaves API nil, which downstream capability classification
// relies on.
func (p *Platform) DecodeAPI() error {
	if len(p.RawAPI) == 0 || string(p.RawAPI) == "null" {
		p.API = nil
		return nil
	}
	return json.Unmarshal(p.RawAPI, &p.API)
}
