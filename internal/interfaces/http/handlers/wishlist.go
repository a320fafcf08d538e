// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlists *wishlist.Service
	activity  *wishlist.ActivityService
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(services *wishlist.Services) *WishlistHandler {
	return &WishlistHandler{
		wishlists: services.Wishlists,
		activity:  services.Activity,
	}
}

// CreateWishlist handles POST /wishlists
func (h *WishlistHandler) CreateWishlist(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var req wishlist.CreateWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	w, err := h.wishlists.Create(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Wishlist created successfully", w)
}

// ListWishlists handles GET /wishlists
func (h *WishlistHandler) ListWishlists(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	lists, err := h.wishlists.ListForUser(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Wishlists retrieved successfully", lists)
}

// ListSharedWithMe handles GET /wishlists/shared-with-me
func (h *WishlistHandler) ListSharedWithMe(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	lists, err := h.wishlists.ListSharedWithUser(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Shared wishlists retrieved successfully", lists)
}

// GetWishlist handles GET /wishlists/:id
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.wishlists.Detail(c.Request.Context(), id, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Wishlist retrieved successfully", detail)
}

// UpdateWishlist handles PUT /wishlists/:id
func (h *WishlistHandler) UpdateWishlist(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req wishlist.UpdateWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	w, err := h.wishlists.Update(c.Request.Context(), id, caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Wishlist updated successfully", w)
}

// DeleteWishlist handles DELETE /wishlists/:id
func (h *WishlistHandler) DeleteWishlist(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.wishlists.Delete(c.Request.Context(), id, caller.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist deleted successfully",
	})
}

// GetStats handles GET /wishlists/:id/stats
func (h *WishlistHandler) GetStats(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.wishlists.Stats(c.Request.Context(), id, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Wishlist stats retrieved successfully", stats)
}

// GetActivity handles GET /wishlists/:id/activity
func (h *WishlistHandler) GetActivity(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.activity.ListRecent(c.Request.Context(), id, caller.UserID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Wishlist activity retrieved successfully", entries)
}
