// internal/interfaces/http/handlers/comment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
)

// CommentHandler handles item comment endpoints
type CommentHandler struct {
	comments *wishlist.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(services *wishlist.Services) *CommentHandler {
	return &CommentHandler{comments: services.Comments}
}

// ListComments handles GET /wishlist-items/:itemId/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}

	comments, err := h.comments.List(c.Request.Context(), itemID, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Comments retrieved successfully", comments)
}

// AddComment handles POST /wishlist-items/:itemId/comments
func (h *CommentHandler) AddComment(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}

	var req wishlist.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), itemID, caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Comment added successfully", comment)
}

// DeleteComment handles DELETE /wishlist-items/:itemId/comments/:commentId
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}
	commentID, ok := uintParam(c, "commentId")
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), itemID, commentID, caller.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
	})
}
