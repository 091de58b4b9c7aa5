// platform_repository.go implements PlatformRepository, providing read-only
// queries over the platform capability registry.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/jmoiron/sqlx"
)

// PlatformRepository handles database operations for the platform registry
type PlatformRepository struct {
	db *sqlx.DB
}

// NewPlatformRepository creates a new platform repository
func NewPlatformRepository(db *sqlx.DB) *PlatformRepository {
	return &PlatformRepository{db: db}
}

// List retrieves all platforms ordered by name
func (r *PlatformRepository) List(ctx context.Context) ([]*models.Platform, error) {
	var platforms []*models.Platform
	query := `SELECT id, name, files, api, plugin_url, created_at FROM platforms ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &platforms, query); err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}

	for _, p := range platforms {
		if err := p.DecodeAPI(); err != nil {
			return nil, fmt.Errorf("failed to decode api config for platform %s: %w", p.Name, err)
		}
	}

	return platforms, nil
}

// GetByID retrieves one platform by ID
func (r *PlatformRepository) GetByID(ctx context.Context, id string) (*models.Platform, error) {
	var platform models.Platform
	query := `SELECT id, name, files, api, plugin_url, created_at FROM platforms WHERE id = $1`

	err := r.db.GetContext(ctx, &platform, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get platform: %w", err)
	}

	if err := platform.DecodeAPI(); err != nil {
		return nil, fmt.Errorf("failed to decode api config for platform %s: %w", platform.Name, err)
	}

	return &platform, nil
}
