// Package models - invitation.go defines the Invitation model for inviting users
// into an organization by email.
package models

import "time"

// Invitation statuses. There is no "expired" status: expiry is time-based and
// checked at read time, never flipped by a background sweep.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
)

// Invitation invites an email address into an organization with a role.
// The acceptance token is stored as a bcrypt hash; the raw token is returned
// once at creation and never persisted.
type Invitation struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID string    `db:"org_id" json:"org_id"`
	InvitedEmail   string    `db:"invited_email" json:"invited_email"`
	Role           string    `db:"role" json:"role"`
	TokenHash      string    `db:"token_hash" json:"-"`
	Status         string    `db:"status" json:"status"`
	InvitedBy      *string   `db:"invited_by" json:"invited_by,omitempty"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the invitation has passed its expiry time
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
