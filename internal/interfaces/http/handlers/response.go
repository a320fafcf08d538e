// internal/interfaces/http/handlers/response.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
	"github.com/your-org/giftlist-backend/internal/interfaces/http/middleware"
)

var statusByKind = map[wishlist.ErrorKind]int{
	wishlist.KindValidation:   http.StatusBadRequest,
	wishlist.KindUnauthorized: http.StatusUnauthorized,
	wishlist.KindForbidden:    http.StatusForbidden,
	wishlist.KindNotFound:     http.StatusNotFound,
	wishlist.KindConflict:     http.StatusConflict,
	wishlist.KindExpired:      http.StatusGone,
}

// respondError maps a service error onto its HTTP status. Internal errors
// are attached to the gin context for the request logger and hidden from
// the client.
func respondError(c *gin.Context, err error) {
	kind := wishlist.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"kind":  wishlist.KindInternal,
		})
		return
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
		"kind":  kind,
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"kind":    wishlist.KindValidation,
		"details": err.Error(),
	})
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
	})
}

// uintParam parses a positive numeric path parameter
func uintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		respondError(c, fmt.Errorf("%w: invalid %s", wishlist.ErrValidation, name))
		return 0, false
	}
	return uint(value), true
}

// principal returns the authenticated caller or answers 401
func principal(c *gin.Context) (wishlist.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		respondError(c, fmt.Errorf("%w: user not authenticated", wishlist.ErrUnauthorized))
		return wishlist.Principal{}, false
	}
	return p, true
}
