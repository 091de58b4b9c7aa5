// organization_repository.go implements OrganizationRepository, providing database
// queries for organization CRUD and membership management.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bytetide-io/bytetide-backend/internal/db/models"
)

// OrganizationRepository handles database operations for organizations
type OrganizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create creates a new organization
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (name, domain, country)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, org.Name, org.Domain, org.Country).Scan(
		&org.ID,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	query := `
		SELECT id, name, domain, country, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Domain,
		&org.Country,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// Update updates an organization's mutable fields
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, domain = $3, country = $4, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, org.ID, org.Name, org.Domain, org.Country)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	return nil
}

// Delete deletes an organization. FK constraints cascade the deletion to
// memberships, invitations, projects, and all project child rows.
func (r *OrganizationRepository) Delete(ctx context.Context, orgID string) error {
	query := `DELETE FROM organizations WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return nil
}

// === Membership Operations ===

// AddMember adds a user to an organization with the specified role
func (r *OrganizationRepository) AddMember(ctx context.Context, orgID, userID, role string) (*models.Membership, error) {
	query := `
		INSERT INTO memberships (org_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	member := &models.Membership{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
	}
	err := r.db.QueryRowContext(ctx, query, orgID, userID, role).Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// GetMember retrieves a user's membership in an organization
func (r *OrganizationRepository) GetMember(ctx context.Context, orgID, userID string) (*models.Membership, error) {
	query := `
		SELECT id, org_id, user_id, role, created_at
		FROM memberships
		WHERE org_id = $1 AND user_id = $2
	`

	member := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, orgID, userID).Scan(
		&member.ID,
		&member.OrganizationID,
		&member.UserID,
		&member.Role,
		&member.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// GetMembershipByUser retrieves a user's membership regardless of organization.
// The dashboard's single-org-per-user assumption means at most one row is
// expected; the newest wins if the schema ever holds more.
func (r *OrganizationRepository) GetMembershipByUser(ctx context.Context, userID string) (*models.Membership, error) {
	query := `
		SELECT id, org_id, user_id, role, created_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	member := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&member.ID,
		&member.OrganizationID,
		&member.UserID,
		&member.Role,
		&member.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return member, nil
}

// ListMembersWithUsers retrieves all members of an organization with user details
func (r *OrganizationRepository) ListMembersWithUsers(ctx context.Context, orgID string) ([]*models.MembershipWithUser, error) {
	query := `
		SELECT m.id, m.org_id, m.user_id, m.role, m.created_at,
		       COALESCE(u.name, '') as user_name, COALESCE(u.email, '') as user_email
		FROM memberships m
		LEFT JOIN users u ON m.user_id = u.id
		WHERE m.org_id = $1
		ORDER BY m.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.MembershipWithUser, 0)
	for rows.Next() {
		member := &models.MembershipWithUser{}
		err := rows.Scan(
			&member.ID,
			&member.OrganizationID,
			&member.UserID,
			&member.Role,
			&member.CreatedAt,
			&member.UserName,
			&member.UserEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// UpdateMemberRole changes a user's role in an organization
func (r *OrganizationRepository) UpdateMemberRole(ctx context.Context, orgID, userID, role string) error {
	query := `
		UPDATE memberships
		SET role = $3
		WHERE org_id = $1 AND user_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, orgID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}

	return nil
}

// RemoveMember removes a user from an organization. Callers must check the
// owner rule first; the repository does not enforce it.
func (r *OrganizationRepository) RemoveMember(ctx context.Context, orgID, userID string) error {
	query := `DELETE FROM memberships WHERE org_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, orgID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}
