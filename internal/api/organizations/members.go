// members.go implements member listing and role management within an
// organization.
package organizations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bytetide-io/bytetide-backend/internal/auth"
)

// ListMembersHandler lists organization members with user details
// GET /api/organizations/:id/members
func (h *Handlers) ListMembersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		members, err := h.orgRepo.ListMembersWithUsers(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list members",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"members": members})
	}
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateMemberRoleHandler changes a member's role. The owner role is not
// assignable through this endpoint, and the owner's own role cannot be
// changed; ownership transfer is a support operation.
// PUT /api/organizations/:id/members/:userId
func (h *Handlers) UpdateMemberRoleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Role is required",
			})
			return
		}

		if err := auth.ValidateAssignableRole(req.Role); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}

		orgID := c.Param("id")
		targetUserID := c.Param("userId")

		target, err := h.orgRepo.GetMember(c.Request.Context(), orgID, targetUserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load member",
			})
			return
		}
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Member not found",
			})
			return
		}
		if target.Role == string(auth.RoleOwner) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "The organization owner's role cannot be changed",
			})
			return
		}

		if err := h.orgRepo.UpdateMemberRole(c.Request.Context(), orgID, targetUserID, req.Role); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update member role",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Member role updated"})
	}
}

// RemoveMemberHandler removes a member from the organization. The owner
// cannot be removed.
// DELETE /api/organizations/:id/members/:userId
func (h *Handlers) RemoveMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		targetUserID := c.Param("userId")

		target, err := h.orgRepo.GetMember(c.Request.Context(), orgID, targetUserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load member",
			})
			return
		}
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Member not found",
			})
			return
		}
		if target.Role == string(auth.RoleOwner) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "The organization owner cannot be removed",
			})
			return
		}

		if err := h.orgRepo.RemoveMember(c.Request.Context(), orgID, targetUserID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to remove member",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
	}
}
