// invitation_repository.go implements InvitationRepository, providing database
// queries for organization invitations. Expiry is evaluated by callers at read
// time; the repository never filters on it.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/jmoiron/sqlx"
)

// InvitationRepository handles database operations for invitations
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create inserts an invitation row
func (r *InvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (org_id, invited_email, role, token_hash, status, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		inv.OrganizationID, inv.InvitedEmail, inv.Role, inv.TokenHash,
		inv.Status, inv.InvitedBy, inv.ExpiresAt,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	return nil
}

// GetByID retrieves an invitation by ID
func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	var inv models.Invitation
	query := `
		SELECT id, org_id, invited_email, role, token_hash, status, invited_by, expires_at, created_at
		FROM invitations
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &inv, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return &inv, nil
}

// ListByOrganization retrieves an organization's invitations, newest first
func (r *InvitationRepository) ListByOrganization(ctx context.Context, orgID string) ([]*models.Invitation, error) {
	var invitations []*models.Invitation
	query := `
		SELECT id, org_id, invited_email, role, token_hash, status, invited_by, expires_at, created_at
		FROM invitations
		WHERE org_id = $1
		ORDER BY created_at DESC
	`

	if err := r.db.SelectContext(ctx, &invitations, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	return invitations, nil
}

// ListPendingByEmail retrieves pending invitations addressed to one email
func (r *InvitationRepository) ListPendingByEmail(ctx context.Context, email string) ([]*models.Invitation, error) {
	var invitations []*models.Invitation
	query := `
		SELECT id, org_id, invited_email, role, token_hash, status, invited_by, expires_at, created_at
		FROM invitations
		WHERE invited_email = $1 AND status = $2
		ORDER BY created_at DESC
	`

	if err := r.db.SelectContext(ctx, &invitations, query, email, models.InvitationStatusPending); err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	return invitations, nil
}

// MarkAccepted flips a pending invitation to accepted. Returns false when the
// invitation was not pending (already consumed, racing acceptance).
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id string) (bool, error) {
	query := `UPDATE invitations SET status = $2 WHERE id = $1 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, id, models.InvitationStatusAccepted, models.InvitationStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to accept invitation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to accept invitation: %w", err)
	}

	return affected > 0, nil
}

// Delete removes an invitation (revocation by an admin)
func (r *InvitationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM invitations WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	return nil
}
