// membership.go implements organization-scoped authorization. Roles are read
// from the memberships table at request time rather than being embedded in
// the JWT, so a role change takes effect on the member's next request without
// token reissue.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bytetide-io/bytetide-backend/internal/auth"
	"github.com/bytetide-io/bytetide-backend/internal/db/models"
	"github.com/bytetide-io/bytetide-backend/internal/db/repositories"
)

// RequireOrgMembership loads the caller's membership in the organization named
// by the :id route parameter. Aborts 403 for non-members; on success sets
// "membership", "role", and "org_id" in the context.
func RequireOrgMembership(orgRepo *repositories.OrganizationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "User not authenticated",
			})
			return
		}

		orgID := c.Param("id")
		if orgID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Organization ID is required",
			})
			return
		}

		membership, err := orgRepo.GetMember(c.Request.Context(), orgID, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check organization membership",
			})
			return
		}
		if membership == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Not a member of this organization",
			})
			return
		}

		c.Set("membership", membership)
		c.Set("role", membership.Role)
		c.Set("org_id", orgID)

		c.Next()
	}
}

// RequireProjectAccess resolves the project named by the :id route parameter,
// then checks the caller's membership in the owning organization. Missing
// projects return 404 before any membership check so non-members cannot probe
// for project existence by status code. On success sets "project",
// "membership", "role", and "org_id".
func RequireProjectAccess(projectRepo *repositories.ProjectRepository, orgRepo *repositories.OrganizationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "User not authenticated",
			})
			return
		}

		projectID := c.Param("id")
		if projectID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Project ID is required",
			})
			return
		}

		project, err := projectRepo.GetByID(c.Request.Context(), projectID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load project",
			})
			return
		}
		if project == nil || project.Status == models.ProjectStatusDraft {
			// Drafts are an implementation detail of submission; they do not
			// exist as far as the API is concerned.
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			return
		}

		membership, err := orgRepo.GetMember(c.Request.Context(), project.OrganizationID, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check organization membership",
			})
			return
		}
		if membership == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			return
		}

		c.Set("project", project)
		c.Set("membership", membership)
		c.Set("role", membership.Role)
		c.Set("org_id", project.OrganizationID)

		c.Next()
	}
}

// RequirePermission checks the caller's role (set by RequireOrgMembership or
// RequireProjectAccess) against the role policy for the given action.
func RequirePermission(action auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			return
		}

		if !auth.CanPerform(auth.Role(role), action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			return
		}

		c.Next()
	}
}
