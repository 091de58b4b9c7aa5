// project_file_repository.go implements ProjectFileRepository, providing database
// queries for uploaded-file metadata rows.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/jmoiron/sqlx"
)

// ProjectFileRepository handles database operations for project file metadata
type ProjectFileRepository struct {
	db *sqlx.DB
}

// NewProjectFileRepository creates a new project file repository
func NewProjectFileRepository(db *sqlx.DB) *ProjectFileRepository {
	return &ProjectFileRepository{db: db}
}

// Create inserts a file metadata row
func (r *ProjectFileRepository) Create(ctx context.Context, f *models.ProjectFile) error {
	query := `
		INSERT INTO project_files (project_id, file_name, file_type, file_path,
		                           file_size, checksum, is_initial)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, upload_date
	`

	err := r.db.QueryRowxContext(ctx, query,
		f.ProjectID, f.FileName, f.FileType, f.FilePath, f.FileSize, f.Checksum, f.IsInitial,
	).Scan(&f.ID, &f.UploadDate)
	if err != nil {
		return fmt.Errorf("failed to create project file: %w", err)
	}

	return nil
}

// GetByID retrieves one file metadata row
func (r *ProjectFileRepository) GetByID(ctx context.Context, id string) (*models.ProjectFile, error) {
	var file models.ProjectFile
	query := `
		SELECT id, project_id, file_name, file_type, file_path, file_size,
		       checksum, is_initial, upload_date
		FROM project_files
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &file, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project file: %w", err)
	}

	return &file, nil
}

// ListByProject retrieves all file rows for a project, newest first
func (r *ProjectFileRepository) ListByProject(ctx context.Context, projectID string) ([]*models.ProjectFile, error) {
	var files []*models.ProjectFile
	query := `
		SELECT id, project_id, file_name, file_type, file_path, file_size,
		       checksum, is_initial, upload_date
		FROM project_files
		WHERE project_id = $1
		ORDER BY upload_date DESC
	`

	if err := r.db.SelectContext(ctx, &files, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}

	return files, nil
}

// ListCustomCSV retrieves a project's ad-hoc custom CSV uploads, newest first
func (r *ProjectFileRepository) ListCustomCSV(ctx context.Context, projectID string) ([]*models.ProjectFile, error) {
	var files []*models.ProjectFile
	query := `
		SELECT id, project_id, file_name, file_type, file_path, file_size,
		       checksum, is_initial, upload_date
		FROM project_files
		WHERE project_id = $1 AND file_type = $2
		ORDER BY upload_date DESC
	`

	if err := r.db.SelectContext(ctx, &files, query, projectID, models.FileTypeCustomCSV); err != nil {
		return nil, fmt.Errorf("failed to list custom files: %w", err)
	}

	return files, nil
}

// Delete removes one file metadata row
func (r *ProjectFileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM project_files WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete project file: %w", err)
	}

	return nil
}

// DeleteByProject removes all file metadata rows for a project
func (r *ProjectFileRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := `DELETE FROM project_files WHERE project_id = $1`
	if _, err := r.db.ExecContext(ctx, query, projectID); err != nil {
		return fmt.Errorf("failed to delete project files: %w", err)
	}

	return nil
}
