// Package api wires together all HTTP routes for the migration dashboard
// backend.
//
// Route grouping philosophy:
//   - /health, /ready, and /version are unauthenticated so load balancers and
//     deploy tooling can probe the service without credentials.
//   - Everything under /api requires a Supabase-issued JWT. Organization
//     routes additionally require membership in the addressed organization,
//     and project routes resolve membership through the project's owning
//     organization, so a non-member probing a project ID sees 404.
//   - Upload endpoints carry a tighter rate limit than the rest of the API,
//     since a single submission can move hundreds of megabytes.
package api

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/bytetide-io/bytetide-backend/internal/api/organizations"
	"github.com/bytetide-io/bytetide-backend/internal/api/platforms"
	"github.com/bytetide-io/bytetide-backend/internal/api/projects"
	"github.com/bytetide-io/bytetide-backend/internal/auth"
	"github.com/bytetide-io/bytetide-backend/internal/config"
	"github.com/bytetide-io/bytetide-backend/internal/crypto"
	"github.com/bytetide-io/bytetide-backend/internal/db/repositories"
	"github.com/bytetide-io/bytetide-backend/internal/middleware"
	"github.com/bytetide-io/bytetide-backend/internal/storage"

	// Import storage backends to register them
	_ "github.com/bytetide-io/bytetide-backend/internal/storage/azure"
	_ "github.com/bytetide-io/bytetide-backend/internal/storage/gcs"
	_ "github.com/bytetide-io/bytetide-backend/internal/storage/local"
	_ "github.com/bytetide-io/bytetide-backend/internal/storage/s3"
)

// BackgroundServices holds references to background resources that must be
// stopped during graceful shutdown. The caller (cmd/server) is responsible for
// calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Initialize storage backend
	storageBackend, err := storage.NewStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage backend: %v", err)
	}
	log.Printf("Initialized storage backend: %s", cfg.Storage.DefaultBackend)

	// The config layer sources this from the ENCRYPTION_KEY environment
	// variable; a deployment without it cannot store Shopify tokens.
	if cfg.Security.EncryptionKey == "" {
		log.Fatal("ENCRYPTION_KEY must be set for Shopify token encryption")
	}
	tokenCipher, err := crypto.DeriveTokenCipher(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize token cipher: %v", err)
	}

	// Initialize repositories shared with middleware
	userRepo := repositories.NewUserRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	sqlxDB := sqlx.NewDb(db, "postgres")
	projectRepo := repositories.NewProjectRepository(sqlxDB)

	// Initialize handlers
	platformHandlers := platforms.NewHandlers(sqlxDB)
	orgHandlers := organizations.NewHandlers(cfg, db, sqlxDB, storageBackend)
	projectHandlers := projects.NewHandlers(cfg, sqlxDB, storageBackend, tokenCipher)

	bg := &BackgroundServices{}

	// Global middleware. Ordering matters: security headers and rate limiting
	// run before any request work, request IDs before anything that logs.
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))
	router.Use(CORSMiddleware(cfg))

	uploadLimiter := middleware.NewRateLimiter(middleware.UploadRateLimitConfig())
	bg.rateLimiters = append(bg.rateLimiters, uploadLimiter)
	if cfg.Security.RateLimiting.Enabled {
		limitCfg := middleware.DefaultRateLimitConfig()
		if cfg.Security.RateLimiting.RequestsPerMinute > 0 {
			limitCfg.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
		}
		if cfg.Security.RateLimiting.Burst > 0 {
			limitCfg.BurstSize = cfg.Security.RateLimiting.Burst
		}
		globalLimiter := middleware.NewRateLimiter(limitCfg)
		bg.rateLimiters = append(bg.rateLimiters, globalLimiter)
		router.Use(middleware.RateLimitMiddleware(globalLimiter))
	}

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Readiness check endpoint (includes storage backend probe)
	router.GET("/ready", readinessHandler(db, storageBackend))

	// API version
	router.GET("/version", versionHandler())

	// Authenticated API
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(userRepo))
	{
		api.GET("/platforms", platformHandlers.ListPlatformsHandler())

		api.POST("/organizations", orgHandlers.CreateOrganizationHandler())

		// Invitations addressed to the caller, outside any org scope
		api.GET("/invitations", orgHandlers.ListMyInvitationsHandler())
		api.POST("/invitations/:id/accept", orgHandlers.AcceptInvitationHandler())

		// Server-side step validation for the dashboard wizard. Lives outside
		// the /projects/:id tree because no project exists yet.
		api.POST("/wizard/validate", projectHandlers.ValidateStepHandler())
	}

	// Organization-scoped routes
	orgs := api.Group("/organizations/:id")
	orgs.Use(middleware.RequireOrgMembership(orgRepo))
	{
		orgs.GET("", middleware.RequirePermission(auth.ActionViewOrganization), orgHandlers.GetOrganizationHandler())
		orgs.PUT("", middleware.RequirePermission(auth.ActionManageOrg), orgHandlers.UpdateOrganizationHandler())
		orgs.DELETE("", middleware.RequirePermission(auth.ActionDeleteOrg), orgHandlers.DeleteOrganizationHandler())

		orgs.GET("/members", middleware.RequirePermission(auth.ActionViewOrganization), orgHandlers.ListMembersHandler())
		orgs.PUT("/members/:userId", middleware.RequirePermission(auth.ActionManageMembers), orgHandlers.UpdateMemberRoleHandler())
		orgs.DELETE("/members/:userId", middleware.RequirePermission(auth.ActionManageMembers), orgHandlers.RemoveMemberHandler())

		orgs.POST("/invitations", middleware.RequirePermission(auth.ActionInviteMembers), orgHandlers.CreateInvitationHandler())
		orgs.GET("/invitations", middleware.RequirePermission(auth.ActionInviteMembers), orgHandlers.ListInvitationsHandler())
		orgs.DELETE("/invitations/:invitationId", middleware.RequirePermission(auth.ActionInviteMembers), orgHandlers.RevokeInvitationHandler())

		orgs.GET("/projects", middleware.RequirePermission(auth.ActionViewProjects), projectHandlers.ListProjectsHandler())
		orgs.POST("/projects",
			middleware.RateLimitMiddleware(uploadLimiter),
			middleware.RequirePermission(auth.ActionSubmitProject),
			projectHandlers.SubmitProjectHandler())
	}

	// Project-scoped routes. RequireProjectAccess resolves the project and the
	// caller's membership in its owning organization.
	proj := api.Group("/projects/:id")
	proj.Use(middleware.RequireProjectAccess(projectRepo, orgRepo))
	{
		proj.GET("", middleware.RequirePermission(auth.ActionViewProjects), projectHandlers.GetProjectHandler())
		proj.DELETE("", middleware.RequirePermission(auth.ActionDeleteProject), projectHandlers.DeleteProjectHandler())

		proj.GET("/custom-files", middleware.RequirePermission(auth.ActionViewProjects), projectHandlers.ListCustomFilesHandler())
		proj.POST("/custom-files",
			middleware.RateLimitMiddleware(uploadLimiter),
			middleware.RequirePermission(auth.ActionUploadFiles),
			projectHandlers.UploadCustomFilesHandler())
		proj.DELETE("/custom-files", middleware.RequirePermission(auth.ActionDeleteFiles), projectHandlers.DeleteCustomFileHandler())
		proj.GET("/custom-files/:fileId/url", middleware.RequirePermission(auth.ActionViewProjects), projectHandlers.GetFileDownloadURLHandler())
		proj.GET("/custom-files/:fileId/download", middleware.RequirePermission(auth.ActionViewProjects), projectHandlers.DownloadFileHandler())

		proj.GET("/previews", middleware.RequirePermission(auth.ActionViewProjects), projectHandlers.ListPreviewKindsHandler())
		proj.GET("/previews/:kind", middleware.RequirePermission(auth.ActionViewProjects), projectHandlers.GetPreviewPageHandler())
	}

	return router, bg
}

// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// readinessHandler returns the readiness status of the service.
// Unlike the liveness probe (/health), this also checks the storage backend so
// that a Kubernetes readiness gate fails when uploads/downloads would error.
func readinessHandler(db *sql.DB, storageBackend storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		if err := db.Ping(); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		// Probe with a known-absent sentinel path. Exists() exercises
		// authentication and network connectivity without creating state.
		if _, err := storageBackend.Exists(c.Request.Context(), ".readiness-probe"); err != nil {
			checks["storage"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "storage backend not ready",
			})
			return
		}
		checks["storage"] = "healthy"

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured request logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", requestID.(string)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS for the dashboard frontend
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
