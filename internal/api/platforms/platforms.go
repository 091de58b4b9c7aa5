// Package platforms implements the read-only platform registry endpoint. The
// dashboard fetches this once when the submission form mounts to decide which
// wizard steps render and which validation rules apply.
package platforms

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/bytetide-io/bytetide-backend/internal/db/repositories"
	"github.com/bytetide-io/bytetide-backend/internal/platform"
)

// Handlers handles platform registry endpoints
type Handlers struct {
	platformRepo *repositories.PlatformRepository
}

// NewHandlers creates a new platform Handlers instance
func NewHandlers(db *sqlx.DB) *Handlers {
	return &Handlers{
		platformRepo: repositories.NewPlatformRepository(db),
	}
}

// ListPlatformsHandler lists all source platforms ordered by name,
// with the derived migration mode included for each.
// GET /api/platforms
func (h *Handlers) ListPlatformsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		platforms, err := h.platformRepo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to fetch platforms",
			})
			return
		}

		out := make([]gin.H, 0, len(platforms))
		for _, p := range platforms {
			out = append(out, gin.H{
				"id":         p.ID,
				"name":       p.Name,
				"files":      p.Files,
				"api":        p.API,
				"plugin_url": p.PluginURL,
				"mode":       platform.Classify(p),
			})
		}

		c.JSON(http.StatusOK, gin.H{"platforms": out})
	}
}
