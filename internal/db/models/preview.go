// Package models - preview.go defines the read-only preview models produced by
// the out-of-scope migration engine. This service only paginates them.
package models

import (
	"encoding/json"
	"time"
)

// PreviewFile summarises one generated preview data set for a project
// (one row per data kind, e.g. products or customers).
type PreviewFile struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"`
	Kind      string    `db:"kind" json:"kind"`
	FileName  string    `db:"file_name" json:"file_name"`
	FilePath  string    `db:"file_path" json:"file_path"`
	RowCount  int       `db:"row_count" json:"row_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Preview is one previewed record of migrated data. Payload is rendered
// contextually per kind by the dashboard; this service treats it as opaque
// JSON.
type Preview struct {
	ID        string          `db:"id" json:"id"`
	ProjectID string          `db:"project_id" json:"project_id"`
	Kind      string          `db:"kind" json:"kind"`
	Position  int             `db:"position" json:"position"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
