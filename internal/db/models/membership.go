// Package models - membership.go defines models for user-to-organization membership,
// including the enriched view joining user details for member listings.
package models

import "time"

// Membership represents a user's role within one organization. The dashboard
// assumes a user belongs to at most one organization, though the schema does
// not enforce it.
type Membership struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"org_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"` // owner, admin, member, viewer
	CreatedAt      time.Time `json:"created_at"`
}

// MembershipWithUser includes user details for display in member listings
type MembershipWithUser struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"org_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	UserName       string    `json:"user_name"`
	UserEmail      string    `json:"user_email"`
	CreatedAt      time.Time `json:"created_at"`
}
