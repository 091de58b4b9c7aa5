// Package projects implements handlers for the migration project lifecycle:
// the wizard submission flow, project listing and deletion, custom CSV file
// management, and preview pagination.
package projects

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/bytetide-io/bytetide-backend/internal/config"
	"github.com/bytetide-io/bytetide-backend/internal/crypto"
	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/bytetide-io/bytetide-backend/internal/db/repositories"
	"github.com/bytetide-io/bytetide-backend/internal/storage"
	"github.com/bytetide-io/bytetide-backend/internal/telemetry"
)

// Handlers handles project endpoints
type Handlers struct {
	cfg          *config.Config
	projectRepo  *repositories.ProjectRepository
	fileRepo     *repositories.ProjectFileRepository
	previewRepo  *repositories.PreviewRepository
	platformRepo *repositories.PlatformRepository
	store        storage.Storage
	cipher       *crypto.TokenCipher
}

// NewHandlers creates a new project Handlers instance
func NewHandlers(cfg *config.Config, db *sqlx.DB, store storage.Storage, cipher *crypto.TokenCipher) *Handlers {
	return &Handlers{
		cfg:          cfg,
		projectRepo:  repositories.NewProjectRepository(db),
		fileRepo:     repositories.NewProjectFileRepository(db),
		previewRepo:  repositories.NewPreviewRepository(db),
		platformRepo: repositories.NewPlatformRepository(db),
		store:        store,
		cipher:       cipher,
	}
}

// ListProjectsHandler lists an organization's projects, newest first. In-flight
// draft rows never appear here.
// GET /api/organizations/:id/projects
func (h *Handlers) ListProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := h.projectRepo.ListByOrganization(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list projects",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"projects": projects})
	}
}

// GetProjectHandler returns one project. The project is loaded and
// access-checked by the RequireProjectAccess middleware.
// GET /api/projects/:id
func (h *Handlers) GetProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.MustGet("project").(*models.Project)

		files, err := h.fileRepo.ListByProject(c.Request.Context(), project.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load project files",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"project": project,
			"files":   files,
		})
	}
}

// DeleteProjectHandler deletes a project that has not yet been picked up by
// the migration team. The cascade runs uploaded files first, then generated
// preview files, then the rows. Storage objects are removed best-effort: a
// failed object delete is recorded as a warning and does not abort the
// operation, since the database rows are what make the project exist for the
// customer.
// DELETE /api/projects/:id
func (h *Handlers) DeleteProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.MustGet("project").(*models.Project)

		if !project.Deletable() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":         "Project can no longer be deleted; contact support to cancel the migration",
				"currentStatus": project.Status,
			})
			return
		}

		files, err := h.fileRepo.ListByProject(c.Request.Context(), project.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete project files",
			})
			return
		}
		previewFiles, err := h.previewRepo.ListFiles(c.Request.Context(), project.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete project files",
			})
			return
		}

		var warnings []string
		for _, f := range files {
			if err := h.store.Delete(c.Request.Context(), f.FilePath); err != nil {
				telemetry.CleanupFailuresTotal.WithLabelValues("storage_object").Inc()
				warnings = append(warnings, "failed to delete stored file "+f.FileName)
			}
		}
		for _, pf := range previewFiles {
			if err := h.store.Delete(c.Request.Context(), pf.FilePath); err != nil {
				telemetry.CleanupFailuresTotal.WithLabelValues("storage_object").Inc()
				warnings = append(warnings, "failed to delete preview file "+pf.FileName)
			}
		}

		if err := h.fileRepo.DeleteByProject(c.Request.Context(), project.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete project files",
			})
			return
		}
		if err := h.previewRepo.DeleteByProject(c.Request.Context(), project.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete project files",
			})
			return
		}
		if err := h.projectRepo.Delete(c.Request.Context(), project.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete project",
			})
			return
		}

		resp := gin.H{"message": "Project deleted"}
		if len(warnings) > 0 {
			resp["warnings"] = warnings
		}
		c.JSON(http.StatusOK, resp)
	}
}
