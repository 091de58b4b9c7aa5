// submit.go implements the wizard submission endpoint. A submission arrives as
// one multipart request carrying the full form plus any platform-required or
// custom files, and is applied with a compensating-action scheme: the project
// row is created as a hidden draft, files go to object storage, and only a
// fully uploaded project is promoted to submitted. Any failure along the way
// tears the partial work back down.
package projects

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/bytetide-io/bytetide-backend/internal/platform"
	"github.com/bytetide-io/bytetide-backend/internal/storage"
	"github.com/bytetide-io/bytetide-backend/internal/telemetry"
	"github.com/bytetide-io/bytetide-backend/internal/validation"
	"github.com/bytetide-io/bytetide-backend/internal/wizard"
)

// submissionRequest is the "project" JSON part of the multipart submission.
// File entries reference the multipart file parts by filename.
type submissionRequest struct {
	wizard.FormData
	Files           []wizard.UploadedFile   `json:"files"`
	AdditionalFiles []wizard.AdditionalFile `json:"additional_files"`
}

// SubmitProjectHandler accepts a complete wizard submission
// POST /api/organizations/:id/projects
func (h *Handlers) SubmitProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body,
			int64(h.cfg.Uploads.MaxFormSizeMB)<<20)

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid multipart request",
			})
			return
		}

		var req submissionRequest
		if vals := form.Value["project"]; len(vals) == 0 || json.Unmarshal([]byte(vals[0]), &req) != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid project payload",
			})
			return
		}

		plat, err := h.platformRepo.GetByID(c.Request.Context(), req.PlatformID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load platform",
			})
			return
		}
		if plat == nil {
			telemetry.ProjectSubmissionsTotal.WithLabelValues("validation_failed").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": gin.H{"platform": "Please select your current platform"},
			})
			return
		}
		caps := platform.Derive(plat)

		// Index the uploaded parts and stamp actual sizes into the form
		// entries before validation.
		parts := make(map[string]*multipart.FileHeader, len(form.File["files"]))
		for _, fh := range form.File["files"] {
			parts[fh.Filename] = fh
		}
		for i := range req.Files {
			if fh, ok := parts[req.Files[i].Name]; ok {
				req.Files[i].Size = fh.Size
			}
		}
		for i := range req.AdditionalFiles {
			if fh, ok := parts[req.AdditionalFiles[i].Name]; ok {
				req.AdditionalFiles[i].Size = fh.Size
			}
		}

		errs := wizard.ValidateAll(req.FormData, req.Files, req.AdditionalFiles, caps)
		if errs == nil {
			errs = h.validateSubmissionFiles(req, parts)
		}
		if errs != nil {
			telemetry.ProjectSubmissionsTotal.WithLabelValues("validation_failed").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}

		encryptedToken, err := h.cipher.Seal(req.ShopifyAccessToken)
		if err != nil {
			telemetry.ProjectSubmissionsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to submit project",
			})
			return
		}

		project := &models.Project{
			ID:             uuid.New().String(),
			OrganizationID: c.Param("id"),
			Domain:         req.Domain,
			SourcePlatform: req.PlatformID,
			ShopifyURL:     wizard.NormalizeShopifyURL(req.ShopifyURL),
			AccessToken:    encryptedToken,
			Items:          pq.StringArray(req.Items),
			Status:         models.ProjectStatusDraft,
		}
		if userID := c.GetString("user_id"); userID != "" {
			project.CreatedBy = &userID
		}
		if req.SpecialDemands != "" {
			project.SpecialDemands = &req.SpecialDemands
		}
		if caps.RequiresAPI() {
			raw, err := json.Marshal(req.API)
			if err != nil {
				telemetry.ProjectSubmissionsTotal.WithLabelValues("error").Inc()
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to submit project",
				})
				return
			}
			project.SourceAPI = models.RawJSON(raw)
		}

		if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
			telemetry.ProjectSubmissionsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to submit project",
			})
			return
		}

		if err := h.uploadSubmissionFiles(c.Request.Context(), project.ID, req, parts); err != nil {
			h.compensateSubmission(c.Request.Context(), project.ID)
			telemetry.ProjectSubmissionsTotal.WithLabelValues("compensated").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to upload files",
			})
			return
		}

		if err := h.projectRepo.UpdateStatus(c.Request.Context(), project.ID, models.ProjectStatusSubmitted); err != nil {
			h.compensateSubmission(c.Request.Context(), project.ID)
			telemetry.ProjectSubmissionsTotal.WithLabelValues("compensated").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to submit project",
			})
			return
		}
		project.Status = models.ProjectStatusSubmitted

		telemetry.ProjectSubmissionsTotal.WithLabelValues("accepted").Inc()
		c.JSON(http.StatusCreated, gin.H{"project": project})
	}
}

// validateSubmissionFiles checks that every referenced file entry has an
// uploaded part behind it and that each part is an acceptable CSV.
func (h *Handlers) validateSubmissionFiles(req submissionRequest, parts map[string]*multipart.FileHeader) map[string]string {
	errs := make(map[string]string)

	check := func(name string) {
		fh, ok := parts[name]
		if !ok {
			errs["files"] = "Missing file contents for: " + name
			return
		}
		if err := validation.ValidateCSVUpload(fh.Filename, fh.Size, h.cfg.Uploads.MaxFileSizeBytes()); err != nil {
			errs["files"] = err.Error()
		}
	}
	for _, f := range req.Files {
		check(f.Name)
	}
	for _, f := range req.AdditionalFiles {
		check(f.Name)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// uploadSubmissionFiles streams each part to object storage and records its
// metadata row. Everything lands under the project's key prefix, so no path
// bookkeeping is needed for compensation.
func (h *Handlers) uploadSubmissionFiles(ctx context.Context, projectID string, req submissionRequest, parts map[string]*multipart.FileHeader) error {
	store := func(name, fileType string) error {
		fh := parts[name]
		src, err := fh.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		path := storage.ProjectFilePath(projectID, fh.Filename)
		result, err := h.store.Upload(ctx, path, src, fh.Size)
		if err != nil {
			return err
		}

		file := &models.ProjectFile{
			ProjectID: projectID,
			FileName:  fh.Filename,
			FileType:  fileType,
			FilePath:  result.Path,
			FileSize:  result.Size,
			Checksum:  result.Checksum,
			IsInitial: true,
		}
		if err := h.fileRepo.Create(ctx, file); err != nil {
			return err
		}

		telemetry.FileUploadBytesTotal.WithLabelValues(fileType).Add(float64(result.Size))
		return nil
	}

	for _, f := range req.Files {
		if err := store(f.Name, f.SelectedType); err != nil {
			return err
		}
	}
	for _, f := range req.AdditionalFiles {
		if err := store(f.Name, models.FileTypeCustomCSV); err != nil {
			return err
		}
	}

	return nil
}

// compensateSubmission tears down a failed submission: every object under the
// project's key prefix is removed best-effort, then the draft row is deleted
// (file metadata rows cascade with it). A draft that survives a crash here
// stays invisible to the API, so stranded objects are the only tolerated leak.
func (h *Handlers) compensateSubmission(ctx context.Context, projectID string) {
	// The request context may already be canceled or exhausted.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Minute)
	defer cancel()

	if err := h.store.DeletePrefix(ctx, storage.ProjectFilePrefix(projectID)); err != nil {
		telemetry.CleanupFailuresTotal.WithLabelValues("storage_object").Inc()
		slog.Warn("failed to remove stored files for failed submission",
			"project_id", projectID, "error", err)
	}

	if err := h.projectRepo.Delete(ctx, projectID); err != nil {
		telemetry.CleanupFailuresTotal.WithLabelValues("draft_project").Inc()
		slog.Error("failed to remove draft project after failed submission",
			"project_id", projectID, "error", err)
	}
}

type validateStepRequest struct {
	Step            wizard.Step             `json:"step" binding:"required"`
	Project         wizard.FormData         `json:"project"`
	Files           []wizard.UploadedFile   `json:"files"`
	AdditionalFiles []wizard.AdditionalFile `json:"additional_files"`
}

// ValidateStepHandler validates a single wizard step without submitting,
// so the dashboard can gate its Next button server-side.
// POST /api/wizard/validate
func (h *Handlers) ValidateStepHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req validateStepRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Step is required",
			})
			return
		}
		if req.Step < wizard.StepBasicInfo || req.Step > wizard.StepReview {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown step",
			})
			return
		}

		// Capabilities stay zero-valued until a platform is chosen; step 1
		// validation does not depend on them.
		var caps platform.Capabilities
		if req.Project.PlatformID != "" {
			plat, err := h.platformRepo.GetByID(c.Request.Context(), req.Project.PlatformID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to load platform",
				})
				return
			}
			if plat != nil {
				caps = platform.Derive(plat)
			}
		}

		errs := wizard.ValidateStep(req.Step, req.Project, req.Files, req.AdditionalFiles, caps)
		c.JSON(http.StatusOK, gin.H{
			"valid":  errs == nil,
			"errors": errs,
		})
	}
}
