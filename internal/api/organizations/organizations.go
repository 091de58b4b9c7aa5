// Package organizations implements handlers for organization CRUD, member
// management, and the email invitation flow.
package organizations

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/bytetide-io/bytetide-backend/internal/config"
	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/bytetide-io/bytetide-backend/internal/db/repositories"
	"github.com/bytetide-io/bytetide-backend/internal/safego"
	"github.com/bytetide-io/bytetide-backend/internal/storage"
)

// Handlers handles organization management endpoints
type Handlers struct {
	cfg            *config.Config
	orgRepo        *repositories.OrganizationRepository
	projectRepo    *repositories.ProjectRepository
	fileRepo       *repositories.ProjectFileRepository
	invitationRepo *repositories.InvitationRepository
	store          storage.Storage
}

// NewHandlers creates a new organization Handlers instance
func NewHandlers(cfg *config.Config, db *sql.DB, sqlxDB *sqlx.DB, store storage.Storage) *Handlers {
	return &Handlers{
		cfg:            cfg,
		orgRepo:        repositories.NewOrganizationRepository(db),
		projectRepo:    repositories.NewProjectRepository(sqlxDB),
		fileRepo:       repositories.NewProjectFileRepository(sqlxDB),
		invitationRepo: repositories.NewInvitationRepository(sqlxDB),
		store:          store,
	}
}

type organizationRequest struct {
	Name    string `json:"name" binding:"required"`
	Domain  string `json:"domain"`
	Country string `json:"country"`
}

// CreateOrganizationHandler creates an organization and makes the caller its
// owner in one flow.
// POST /api/organizations
func (h *Handlers) CreateOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req organizationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Organization name is required",
			})
			return
		}

		org := &models.Organization{
			Name:    strings.TrimSpace(req.Name),
			Domain:  strings.TrimSpace(req.Domain),
			Country: strings.TrimSpace(req.Country),
		}

		if err := h.orgRepo.Create(c.Request.Context(), org); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create organization",
			})
			return
		}

		userID := c.GetString("user_id")
		membership, err := h.orgRepo.AddMember(c.Request.Context(), org.ID, userID, "owner")
		if err != nil {
			// The org row exists without an owner; remove it rather than
			// stranding an unreachable tenant.
			if delErr := h.orgRepo.Delete(c.Request.Context(), org.ID); delErr != nil {
				slog.Error("failed to clean up ownerless organization",
					"org_id", org.ID, "error", delErr)
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create organization",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"organization": org,
			"membership":   membership,
		})
	}
}

// GetOrganizationHandler retrieves the caller's organization
// GET /api/organizations/:id
func (h *Handlers) GetOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		org, err := h.orgRepo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve organization",
			})
			return
		}
		if org == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Organization not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"organization": org})
	}
}

// UpdateOrganizationHandler updates organization profile fields
// PUT /api/organizations/:id
func (h *Handlers) UpdateOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req organizationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Organization name is required",
			})
			return
		}

		org, err := h.orgRepo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve organization",
			})
			return
		}
		if org == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Organization not found",
			})
			return
		}

		org.Name = strings.TrimSpace(req.Name)
		org.Domain = strings.TrimSpace(req.Domain)
		org.Country = strings.TrimSpace(req.Country)

		if err := h.orgRepo.Update(c.Request.Context(), org); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update organization",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"organization": org})
	}
}

// DeleteOrganizationHandler deletes an organization and everything under it.
// Database rows cascade via foreign keys; object storage cleanup for the
// organization's projects is fire-and-forget, since orphaned objects are a
// tolerated failure mode and must not block tenant deletion.
// DELETE /api/organizations/:id
func (h *Handlers) DeleteOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")

		projects, err := h.projectRepo.ListByOrganization(c.Request.Context(), orgID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete organization",
			})
			return
		}

		var paths []string
		for _, p := range projects {
			files, err := h.fileRepo.ListByProject(c.Request.Context(), p.ID)
			if err != nil {
				continue
			}
			for _, f := range files {
				paths = append(paths, f.FilePath)
			}
		}

		if err := h.orgRepo.Delete(c.Request.Context(), orgID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete organization",
			})
			return
		}

		// The request context ends when this handler returns; give the
		// cleanup its own bounded context.
		store := h.store
		safego.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			for _, path := range paths {
				if err := store.Delete(ctx, path); err != nil {
					slog.Warn("failed to delete stored file for removed organization",
						"path", path, "error", err)
				}
			}
		})

		c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
	}
}
