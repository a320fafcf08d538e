// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
	"github.com/your-org/giftlist-backend/internal/pkg/auth"
)

const (
	contextUserID    = "user_id"
	contextUserEmail = "user_email"
	contextUserName  = "user_name"
	contextClaims    = "token_claims"
)

// TokenValidator validates bearer tokens issued by the identity provider
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
				"kind":  wishlist.KindUnauthorized,
			})
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
				"kind":  wishlist.KindUnauthorized,
			})
			return
		}

		claims, err := validator.ValidateAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
				"kind":  wishlist.KindUnauthorized,
			})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the principal when a valid token is
// present and lets anonymous requests through otherwise
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		if claims, err := validator.ValidateAccessToken(tokenString); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(contextUserID, claims.UserID)
	c.Set(contextUserEmail, claims.Email)
	c.Set(contextUserName, claims.Name)
	c.Set(contextClaims, claims)
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, ok := c.Get(contextUserID)
	if !ok {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok && id != 0
}

// PrincipalFromContext returns the authenticated caller
func PrincipalFromContext(c *gin.Context) (wishlist.Principal, bool) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return wishlist.Principal{}, false
	}
	return wishlist.Principal{
		UserID: userID,
		Email:  c.GetString(contextUserEmail),
		Name:   c.GetString(contextUserName),
	}, true
}
