// custom_files.go implements ad-hoc CSV uploads added to a project after
// submission. Uploads are processed per file: one bad file in a batch does
// not fail the others, so the response always carries a per-file result list.
package projects

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/bytetide-io/bytetide-backend/internal/storage"
	"github.com/bytetide-io/bytetide-backend/internal/telemetry"
	"github.com/bytetide-io/bytetide-backend/internal/validation"
)

type uploadResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Size    int64  `json:"size,omitempty"`
	Path    string `json:"path,omitempty"`
}

// UploadCustomFilesHandler accepts one or more custom CSV files for an
// existing project
// POST /api/projects/:id/custom-files
func (h *Handlers) UploadCustomFilesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.MustGet("project").(*models.Project)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body,
			int64(h.cfg.Uploads.MaxFormSizeMB)<<20)

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid multipart request",
			})
			return
		}
		headers := form.File["files"]
		if len(headers) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "No files provided",
			})
			return
		}

		results := make([]uploadResult, 0, len(headers))
		for _, fh := range headers {
			res := uploadResult{Name: fh.Filename}

			if err := validation.ValidateCSVUpload(fh.Filename, fh.Size, h.cfg.Uploads.MaxFileSizeBytes()); err != nil {
				res.Error = err.Error()
				results = append(results, res)
				continue
			}

			src, err := fh.Open()
			if err != nil {
				res.Error = "Failed to read file"
				results = append(results, res)
				continue
			}

			path := storage.ProjectFilePath(project.ID, fh.Filename)
			uploaded, err := h.store.Upload(c.Request.Context(), path, src, fh.Size)
			src.Close()
			if err != nil {
				res.Error = "Failed to store file"
				results = append(results, res)
				continue
			}

			file := &models.ProjectFile{
				ProjectID: project.ID,
				FileName:  fh.Filename,
				FileType:  models.FileTypeCustomCSV,
				FilePath:  uploaded.Path,
				FileSize:  uploaded.Size,
				Checksum:  uploaded.Checksum,
			}
			if err := h.fileRepo.Create(c.Request.Context(), file); err != nil {
				// Roll the object back so a retry of the same filename
				// starts clean.
				if delErr := h.store.Delete(c.Request.Context(), uploaded.Path); delErr != nil {
					telemetry.CleanupFailuresTotal.WithLabelValues("storage_object").Inc()
					slog.Warn("failed to remove stored file after metadata failure",
						"path", uploaded.Path, "error", delErr)
				}
				res.Error = "Failed to record file"
				results = append(results, res)
				continue
			}

			telemetry.FileUploadBytesTotal.WithLabelValues(models.FileTypeCustomCSV).Add(float64(uploaded.Size))
			res.Success = true
			res.Size = uploaded.Size
			res.Path = uploaded.Path
			results = append(results, res)
		}

		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

// ListCustomFilesHandler lists a project's custom CSV files, newest first
// GET /api/projects/:id/custom-files
func (h *Handlers) ListCustomFilesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.MustGet("project").(*models.Project)

		files, err := h.fileRepo.ListCustomCSV(c.Request.Context(), project.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list files",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"files": files})
	}
}

// downloadURLTTL bounds how long a generated file link stays valid. Links are
// minted per request, so a short window costs the dashboard nothing.
const downloadURLTTL = 15 * time.Minute

// GetFileDownloadURLHandler returns a time-limited download URL for one of a
// project's files (platform-required or custom)
// GET /api/projects/:id/custom-files/:fileId/url
func (h *Handlers) GetFileDownloadURLHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.MustGet("project").(*models.Project)

		file, err := h.fileRepo.GetByID(c.Request.Context(), c.Param("fileId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load file",
			})
			return
		}
		if file == nil || file.ProjectID != project.ID {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "File not found",
			})
			return
		}

		// A metadata row can outlive its object after a tolerated cleanup
		// failure; don't mint a link that will 404 downstream.
		meta, err := h.store.GetMetadata(c.Request.Context(), file.FilePath)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "File is no longer available",
			})
			return
		}

		url, err := h.store.GetURL(c.Request.Context(), file.FilePath, downloadURLTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to generate download URL",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"url":        url,
			"file_name":  file.FileName,
			"size":       meta.Size,
			"expires_in": int(downloadURLTTL.Seconds()),
		})
	}
}

// DownloadFileHandler streams a file's contents through the API. Deployments
// on the local backend have no URL a browser could follow, so this is their
// download path.
// GET /api/projects/:id/custom-files/:fileId/download
func (h *Handlers) DownloadFileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.MustGet("project").(*models.Project)

		file, err := h.fileRepo.GetByID(c.Request.Context(), c.Param("fileId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load file",
			})
			return
		}
		if file == nil || file.ProjectID != project.ID {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "File not found",
			})
			return
		}

		src, err := h.store.Download(c.Request.Context(), file.FilePath)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "File is no longer available",
			})
			return
		}
		defer src.Close()

		c.DataFromReader(http.StatusOK, file.FileSize, "text/csv", src, map[string]string{
			"Content-Disposition": `attachment; filename="` + file.FileName + `"`,
		})
	}
}

type deleteFileRequest struct {
	FileID string `json:"fileId" binding:"required"`
}

// DeleteCustomFileHandler removes one custom CSV file. The metadata row is
// authoritative: a failed storage delete is logged and tolerated, a failed
// row delete is an error.
// DELETE /api/projects/:id/custom-files
func (h *Handlers) DeleteCustomFileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.MustGet("project").(*models.Project)

		var req deleteFileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "fileId is required",
			})
			return
		}

		file, err := h.fileRepo.GetByID(c.Request.Context(), req.FileID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load file",
			})
			return
		}
		if file == nil || file.ProjectID != project.ID || file.FileType != models.FileTypeCustomCSV {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "File not found",
			})
			return
		}

		if err := h.store.Delete(c.Request.Context(), file.FilePath); err != nil {
			telemetry.CleanupFailuresTotal.WithLabelValues("storage_object").Inc()
			slog.Warn("failed to delete stored file",
				"path", file.FilePath, "error", err)
		}

		if err := h.fileRepo.Delete(c.Request.Context(), file.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete file",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
	}
}
