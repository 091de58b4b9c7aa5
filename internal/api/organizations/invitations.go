// invitations.go implements the email invitation flow: owners and admins
// invite an address with a role, the invitee accepts with a single-use token,
// and acceptance creates the membership.
package organizations

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/bytetide-io/bytetide-backend/internal/auth"
	"github.com/bytetide-io/bytetide-backend/internal/db/models"
)

type createInvitationRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// CreateInvitationHandler invites an email address into the organization.
// The raw acceptance token is returned once here and only its bcrypt hash is
// stored, the same discipline applied to any other credential at rest.
// POST /api/organizations/:id/invitations
func (h *Handlers) CreateInvitationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createInvitationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Email and role are required",
			})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || !strings.Contains(email, "@") {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "A valid email address is required",
			})
			return
		}

		if err := auth.ValidateAssignableRole(req.Role); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}

		tokenBytes := make([]byte, 32)
		if _, err := rand.Read(tokenBytes); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create invitation",
			})
			return
		}
		rawToken := hex.EncodeToString(tokenBytes)

		tokenHash, err := bcrypt.GenerateFromPassword([]byte(rawToken), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create invitation",
			})
			return
		}

		inviterID := c.GetString("user_id")
		inv := &models.Invitation{
			OrganizationID: c.Param("id"),
			InvitedEmail:   email,
			Role:           req.Role,
			TokenHash:      string(tokenHash),
			Status:         models.InvitationStatusPending,
			InvitedBy:      &inviterID,
			ExpiresAt:      time.Now().AddDate(0, 0, h.cfg.Invitations.ExpiryDays),
		}

		if err := h.invitationRepo.Create(c.Request.Context(), inv); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create invitation",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"invitation": inv,
			"token":      rawToken,
		})
	}
}

// ListInvitationsHandler lists an organization's invitations, newest first
// GET /api/organizations/:id/invitations
func (h *Handlers) ListInvitationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		invitations, err := h.invitationRepo.ListByOrganization(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list invitations",
			})
			return
		}

		// Expiry is evaluated at read time; no sweep flips rows to an
		// expired status.
		now := time.Now()
		out := make([]gin.H, 0, len(invitations))
		for _, inv := range invitations {
			status := inv.Status
			if status == models.InvitationStatusPending && inv.Expired(now) {
				status = "expired"
			}
			out = append(out, gin.H{
				"id":            inv.ID,
				"org_id":        inv.OrganizationID,
				"invited_email": inv.InvitedEmail,
				"role":          inv.Role,
				"status":        status,
				"expires_at":    inv.ExpiresAt,
				"created_at":    inv.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{"invitations": out})
	}
}

// RevokeInvitationHandler deletes a pending invitation
// DELETE /api/organizations/:id/invitations/:invitationId
func (h *Handlers) RevokeInvitationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		inv, err := h.invitationRepo.GetByID(c.Request.Context(), c.Param("invitationId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load invitation",
			})
			return
		}
		if inv == nil || inv.OrganizationID != c.Param("id") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Invitation not found",
			})
			return
		}

		if err := h.invitationRepo.Delete(c.Request.Context(), inv.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to revoke invitation",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Invitation revoked"})
	}
}

// ListMyInvitationsHandler lists pending, unexpired invitations addressed to
// the authenticated user's email
// GET /api/invitations
func (h *Handlers) ListMyInvitationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.ToLower(c.GetString("email"))

		invitations, err := h.invitationRepo.ListPendingByEmail(c.Request.Context(), email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list invitations",
			})
			return
		}

		now := time.Now()
		out := invitations[:0]
		for _, inv := range invitations {
			if !inv.Expired(now) {
				out = append(out, inv)
			}
		}

		c.JSON(http.StatusOK, gin.H{"invitations": out})
	}
}

type acceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// AcceptInvitationHandler accepts an invitation on behalf of the
// authenticated user. The caller's email must match the invited address, the
// invitation must still be pending and unexpired, and the presented token must
// match the stored hash. Acceptance is a conditional update so two concurrent
// accepts cannot both create memberships.
// POST /api/invitations/:id/accept
func (h *Handlers) AcceptInvitationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req acceptInvitationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invitation token is required",
			})
			return
		}

		inv, err := h.invitationRepo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load invitation",
			})
			return
		}
		if inv == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Invitation not found",
			})
			return
		}

		email := strings.ToLower(c.GetString("email"))
		if !strings.EqualFold(inv.InvitedEmail, email) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "This invitation was sent to a different email address",
			})
			return
		}

		if inv.Status != models.InvitationStatusPending {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Invitation has already been accepted",
			})
			return
		}
		if inv.Expired(time.Now()) {
			c.JSON(http.StatusGone, gin.H{
				"error": "Invitation has expired",
			})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(inv.TokenHash), []byte(req.Token)); err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Invalid invitation token",
			})
			return
		}

		accepted, err := h.invitationRepo.MarkAccepted(c.Request.Context(), inv.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to accept invitation",
			})
			return
		}
		if !accepted {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Invitation has already been accepted",
			})
			return
		}

		userID := c.GetString("user_id")
		membership, err := h.orgRepo.AddMember(c.Request.Context(), inv.OrganizationID, userID, inv.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to join organization",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"membership": membership})
	}
}
