// Package models - organization.go defines the Organization model representing the
// root tenant boundary that owns projects, memberships, and invitations.
package models

import "time"

// Organization represents one customer tenant. Deleting an organization
// cascades to all child data and is irreversible.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
