// preview_repository.go implements PreviewRepository, providing read-only,
// paginated access to previews generated by the migration engine, plus the
// cleanup queries used by cascading project deletion.
package repositories

import (
	"context"
	"fmt"

	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/jmoiron/sqlx"
)

// PreviewRepository handles database operations for preview data
type PreviewRepository struct {
	db *sqlx.DB
}

// NewPreviewRepository creates a new preview repository
func NewPreviewRepository(db *sqlx.DB) *PreviewRepository {
	return &PreviewRepository{db: db}
}

// ListFiles retrieves the available preview kinds for a project
func (r *PreviewRepository) ListFiles(ctx context.Context, projectID string) ([]*models.PreviewFile, error) {
	var files []*models.PreviewFile
	query := `
		SELECT id, project_id, kind, file_name, file_path, row_count, created_at
		FROM preview_files
		WHERE project_id = $1
		ORDER BY kind ASC
	`

	if err := r.db.SelectContext(ctx, &files, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list preview files: %w", err)
	}

	return files, nil
}

// CountByKind returns the total number of preview records of one kind
func (r *PreviewRepository) CountByKind(ctx context.Context, projectID, kind string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM previews WHERE project_id = $1 AND kind = $2`

	if err := r.db.GetContext(ctx, &count, query, projectID, kind); err != nil {
		return 0, fmt.Errorf("failed to count previews: %w", err)
	}

	return count, nil
}

// ListPage retrieves one page of preview records, ordered by their position in
// the generated preview set.
func (r *PreviewRepository) ListPage(ctx context.Context, projectID, kind string, limit, offset int) ([]*models.Preview, error) {
	var previews []*models.Preview
	query := `
		SELECT id, project_id, kind, position, payload, created_at
		FROM previews
		WHERE project_id = $1 AND kind = $2
		ORDER BY position ASC
		LIMIT $3 OFFSET $4
	`

	if err := r.db.SelectContext(ctx, &previews, query, projectID, kind, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list previews: %w", err)
	}

	return previews, nil
}

// DeleteByProject removes all preview rows and preview-file rows for a project
func (r *PreviewRepository) DeleteByProject(ctx context.Context, projectID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM previews WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to delete previews: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM preview_files WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to delete preview files: %w", err)
	}

	return nil
}
