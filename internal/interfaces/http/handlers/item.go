// internal/interfaces/http/handlers/item.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

const (
	// ShareCodeHeader carries a share code for callers claiming items through a share link
	ShareCodeHeader = "X-Share-Code"
	// SharePasswordHeader carries the password of a protected share
	SharePasswordHeader = "X-Share-Password"
)

// ItemHandler handles wishlist item endpoints
type ItemHandler struct {
	items *wishlist.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(services *wishlist.Services) *ItemHandler {
	return &ItemHandler{items: services.Items}
}

// ListItems handles GET /wishlists/:id/items
func (h *ItemHandler) ListItems(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	items, err := h.items.List(c.Request.Context(), wishlistID, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Items retrieved successfully", items)
}

// AddItem handles POST /wishlists/:id/items
func (h *ItemHandler) AddItem(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req wishlist.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.items.Add(c.Request.Context(), wishlistID, caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Item added to wishlist successfully", item)
}

// UpdateItem handles PUT /wishlists/:id/items/:itemId
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}

	var req wishlist.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.items.Update(c.Request.Context(), wishlistID, itemID, caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Item updated successfully", item)
}

// DeleteItem handles DELETE /wishlists/:id/items/:itemId
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}

	if err := h.items.Delete(c.Request.Context(), wishlistID, itemID, caller.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from wishlist successfully",
	})
}

// ReserveItem handles PUT /wishlists/:id/items/:itemId/reserve
func (h *ItemHandler) ReserveItem(c *gin.Context) {
	h.claim(c, "Item reserved successfully", h.items.Reserve)
}

// PurchaseItem handles PUT /wishlists/:id/items/:itemId/purchase
func (h *ItemHandler) PurchaseItem(c *gin.Context) {
	h.claim(c, "Item marked as purchased", h.items.Purchase)
}

// ReleaseItem handles PUT /wishlists/:id/items/:itemId/release
func (h *ItemHandler) ReleaseItem(c *gin.Context) {
	h.claim(c, "Item reservation released", h.items.Release)
}

type claimFunc func(ctx context.Context, wishlistID, itemID uint, access wishlist.ClaimAccess) (*wishlist.Item, error)

func (h *ItemHandler) claim(c *gin.Context, message string, fn claimFunc) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}

	access := wishlist.ClaimAccess{
		UserID:        caller.UserID,
		ShareCode:     c.GetHeader(ShareCodeHeader),
		SharePassword: c.GetHeader(SharePasswordHeader),
	}

	item, err := fn(c.Request.Context(), wishlistID, itemID, access)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, message, item)
}
