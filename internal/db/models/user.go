package models

import "time"

// User is the local shadow of an externally authenticated identity. Rows are
// provisioned by the auth provider's webhook; this service only reads them.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
