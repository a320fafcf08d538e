// internal/interfaces/http/handlers/collaboration.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

// CollaborationHandler handles collaborator and invitation endpoints
type CollaborationHandler struct {
	collaborators *wishlist.CollaboratorService
	invitations   *wishlist.InvitationService
}

// NewCollaborationHandler creates a new collaboration handler
func NewCollaborationHandler(services *wishlist.Services) *CollaborationHandler {
	return &CollaborationHandler{
		collaborators: services.Collaborators,
		invitations:   services.Invitations,
	}
}

// ListCollaborators handles GET /wishlists/:id/collaborators
func (h *CollaborationHandler) ListCollaborators(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	collaborators, err := h.collaborators.List(c.Request.Context(), wishlistID, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Collaborators retrieved successfully", collaborators)
}

// AddCollaborator handles POST /wishlists/:id/collaborators
func (h *CollaborationHandler) AddCollaborator(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req wishlist.AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	collaborator, err := h.collaborators.Add(c.Request.Context(), wishlistID, caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Collaborator added successfully", collaborator)
}

// UpdateCollaboratorRole handles PUT /wishlists/:id/collaborators/:cid
func (h *CollaborationHandler) UpdateCollaboratorRole(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	collaboratorID, ok := uintParam(c, "cid")
	if !ok {
		return
	}

	var req wishlist.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	collaborator, err := h.collaborators.UpdateRole(c.Request.Context(), wishlistID, collaboratorID, caller.UserID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Collaborator role updated successfully", collaborator)
}

// RemoveCollaborator handles DELETE /wishlists/:id/collaborators/:cid
func (h *CollaborationHandler) RemoveCollaborator(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	collaboratorID, ok := uintParam(c, "cid")
	if !ok {
		return
	}

	if err := h.collaborators.Remove(c.Request.Context(), wishlistID, collaboratorID, caller.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Collaborator removed successfully",
	})
}

// Invite handles POST /wishlists/:id/invite
func (h *CollaborationHandler) Invite(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req wishlist.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invitation, err := h.invitations.Invite(c.Request.Context(), wishlistID, caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Invitation sent successfully", invitation)
}

// ListInvitations handles GET /wishlists/:id/invitations
func (h *CollaborationHandler) ListInvitations(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	invitations, err := h.invitations.ListForWishlist(c.Request.Context(), wishlistID, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Invitations retrieved successfully", invitations)
}

// ListMyInvitations handles GET /wishlist-invitations
func (h *CollaborationHandler) ListMyInvitations(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	invitations, err := h.invitations.ListForEmail(c.Request.Context(), caller.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Invitations retrieved successfully", invitations)
}

// AcceptInvitation handles PUT /wishlist-invitations/:id/accept
func (h *CollaborationHandler) AcceptInvitation(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	invitationID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	collaborator, err := h.invitations.Accept(c.Request.Context(), invitationID, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Invitation accepted successfully", collaborator)
}

// DeclineInvitation handles PUT /wishlist-invitations/:id/decline
func (h *CollaborationHandler) DeclineInvitation(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	invitationID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	invitation, err := h.invitations.Decline(c.Request.Context(), invitationID, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Invitation declined", invitation)
}
