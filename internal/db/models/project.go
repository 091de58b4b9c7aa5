// Package models - project.go defines the Project model representing one migration
// engagement from a source platform to a Shopify destination store, and its
// status lifecycle.
package models

import (
	"time"

	"github.com/lib/pq"
)

// Project status lifecycle. Draft rows exist only while a submission is in
// flight (or after a crashed one) and are excluded from listings; the rest is
// the customer-visible progression.
const (
	ProjectStatusDraft      = "draft"
	ProjectStatusSubmitted  = "submitted"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusInReview   = "in_review"
	ProjectStatusApproved   = "approved"
	ProjectStatusMigrating  = "migrating"
	ProjectStatusCompleted  = "completed"
)

// Project represents one migration engagement owned by an organization.
// AccessToken is stored AES-GCM encrypted and is never serialized back to
// clients.
type Project struct {
	ID             string          `db:"id" json:"id"`
	OrganizationID string          `db:"org_id" json:"org_id"`
	Domain         string          `db:"domain" json:"domain"`
	SourcePlatform string          `db:"source_platform" json:"source_platform"`
	ShopifyURL     string          `db:"shopify_url" json:"shopify_url"`
	AccessToken    string          `db:"access_token" json:"-"`
	Items          pq.StringArray  `db:"items" json:"items"`
	SourceAPI      RawJSON         `db:"source_api" json:"source_api,omitempty"`
	SpecialDemands *string         `db:"special_demands" json:"special_demands,omitempty"`
	Status         string          `db:"status" json:"status"`
	CreatedBy      *string         `db:"created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Deletable reports whether the project may still be deleted by the customer.
// Once the migration team picks a project up it can only be cancelled through
// support.
func (p *Project) Deletable() bool {
	return p.Status == ProjectStatusSubmitted
}
