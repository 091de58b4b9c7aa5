// previews.go serves paginated read access to the preview data sets the
// migration engine generates for a project. This service never writes
// previews; it only pages through them.
package projects

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bytetide-io/bytetide-backend/internal/db/models"
)

const previewPageSize = 10

// ListPreviewKindsHandler lists the preview data sets available for a project
// GET /api/projects/:id/previews
func (h *Handlers) ListPreviewKindsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.MustGet("project").(*models.Project)

		files, err := h.previewRepo.ListFiles(c.Request.Context(), project.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list previews",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"previews": files})
	}
}

// GetPreviewPageHandler returns one page of preview records for a data kind
// GET /api/projects/:id/previews/:kind?page=N
func (h *Handlers) GetPreviewPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.MustGet("project").(*models.Project)
		kind := c.Param("kind")

		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "page must be a positive integer",
			})
			return
		}

		total, err := h.previewRepo.CountByKind(c.Request.Context(), project.ID, kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load previews",
			})
			return
		}
		if total == 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No previews available for this data type",
			})
			return
		}

		offset := (page - 1) * previewPageSize
		records, err := h.previewRepo.ListPage(c.Request.Context(), project.ID, kind, previewPageSize, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load previews",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"kind":         kind,
			"page":         page,
			"page_size":    previewPageSize,
			"total":        total,
			"records":      records,
			"has_next":     offset+len(records) < total,
			"has_previous": page > 1,
		})
	}
}
