// project_repository.go implements ProjectRepository, providing database queries
// for project rows and their status lifecycle.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/jmoiron/sqlx"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project row. The caller supplies the ID (generated up
// front so file storage paths can be namespaced before the row is promoted
// out of draft).
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (id, org_id, domain, source_platform, shopify_url,
		                      access_token, items, source_api, special_demands, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.OrganizationID, p.Domain, p.SourcePlatform, p.ShopifyURL,
		p.AccessToken, p.Items, p.SourceAPI, p.SpecialDemands, p.Status, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	query := `
		SELECT id, org_id, domain, source_platform, shopify_url, access_token,
		       items, source_api, special_demands, status, created_by, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &project, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// ListByOrganization retrieves an organization's projects, newest first.
// Draft rows are in-flight submissions and are excluded.
func (r *ProjectRepository) ListByOrganization(ctx context.Context, orgID string) ([]*models.Project, error) {
	var projects []*models.Project
	query := `
		SELECT id, org_id, domain, source_platform, shopify_url, access_token,
		       items, source_api, special_demands, status, created_by, created_at, updated_at
		FROM projects
		WHERE org_id = $1 AND status <> $2
		ORDER BY created_at DESC
	`

	if err := r.db.SelectContext(ctx, &projects, query, orgID, models.ProjectStatusDraft); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// UpdateStatus moves a project to a new lifecycle status
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("project not found: %s", id)
	}

	return nil
}

// Delete removes a project row. project_files, preview_files, and previews
// rows cascade via FK constraints; storage objects are the caller's problem.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}
