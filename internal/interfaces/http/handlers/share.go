// internal/interfaces/http/handlers/share.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

// ShareHandler handles share link endpoints
type ShareHandler struct {
	shares *wishlist.ShareService
}

// NewShareHandler creates a new share handler
func NewShareHandler(services *wishlist.Services) *ShareHandler {
	return &ShareHandler{shares: services.Shares}
}

// ResolveShareRequest carries the password of a protected share
type ResolveShareRequest struct {
	Password string `json:"password"`
}

// CreateShare handles POST /wishlists/:id/share
func (h *ShareHandler) CreateShare(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req wishlist.CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.shares.Create(c.Request.Context(), wishlistID, caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Wishlist shared successfully", gin.H{
		"share":      result.Share,
		"share_code": result.Share.ShareCode,
		"share_url":  result.ShareURL,
	})
}

// RevokeShare handles DELETE /wishlists/:id/share. The optional type query
// parameter limits revocation to one share type.
func (h *ShareHandler) RevokeShare(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	shareType := wishlist.ShareType(c.Query("type"))
	if err := h.shares.Revoke(c.Request.Context(), wishlistID, caller.UserID, shareType); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist unshared successfully",
	})
}

// ListShares handles GET /wishlists/:id/shares
func (h *ShareHandler) ListShares(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	wishlistID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	shares, err := h.shares.List(c.Request.Context(), wishlistID, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Shares retrieved successfully", shares)
}

// ResolveShare handles GET and POST /wishlists/public/:shareCode. GET takes
// the password from the X-Share-Password header or the password query
// parameter, POST from the JSON body.
func (h *ShareHandler) ResolveShare(c *gin.Context) {
	password := c.GetHeader(SharePasswordHeader)
	if password == "" {
		password = c.Query("password")
	}

	if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		var req ResolveShareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if req.Password != "" {
			password = req.Password
		}
	}

	view, err := h.shares.Resolve(c.Request.Context(), c.Param("shareCode"), password)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Wishlist retrieved successfully", view)
}
