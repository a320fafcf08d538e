// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
	"github.com/your-org/giftlist-backend/internal/interfaces/http/handlers"
	"github.com/your-org/giftlist-backend/internal/interfaces/http/middleware"
)

// SetupRoutes registers every API route under rg
func SetupRoutes(rg *gin.RouterGroup, services *wishlist.Services, validator middleware.TokenValidator) {
	SetupPublicShareRoutes(rg, services, validator)
	SetupWishlistRoutes(rg, services, validator)
	SetupInvitationRoutes(rg, services, validator)
	SetupCommentRoutes(rg, services, validator)
}

// SetupPublicShareRoutes sets up the share link routes, which need no token.
// A token, when sent, only attributes the request in the logs.
func SetupPublicShareRoutes(rg *gin.RouterGroup, services *wishlist.Services, validator middleware.TokenValidator) {
	shareHandler := handlers.NewShareHandler(services)

	public := rg.Group("/wishlists/public")
	public.Use(middleware.OptionalAuthMiddleware(validator))
	{
		public.GET("/:shareCode", shareHandler.ResolveShare)
		public.POST("/:shareCode", shareHandler.ResolveShare)
	}
}

// SetupWishlistRoutes sets up wishlist, item, collaborator and share routes
func SetupWishlistRoutes(rg *gin.RouterGroup, services *wishlist.Services, validator middleware.TokenValidator) {
	wishlistHandler := handlers.NewWishlistHandler(services)
	itemHandler := handlers.NewItemHandler(services)
	collaborationHandler := handlers.NewCollaborationHandler(services)
	shareHandler := handlers.NewShareHandler(services)

	wishlists := rg.Group("/wishlists")
	wishlists.Use(middleware.AuthMiddleware(validator))
	{
		wishlists.POST("", wishlistHandler.CreateWishlist)
		wishlists.GET("", wishlistHandler.ListWishlists)
		wishlists.GET("/shared-with-me", wishlistHandler.ListSharedWithMe)
		wishlists.GET("/:id", wishlistHandler.GetWishlist)
		wishlists.PUT("/:id", wishlistHandler.UpdateWishlist)
		wishlists.DELETE("/:id", wishlistHandler.DeleteWishlist)
		wishlists.GET("/:id/stats", wishlistHandler.GetStats)
		wishlists.GET("/:id/activity", wishlistHandler.GetActivity)

		// Items
		wishlists.GET("/:id/items", itemHandler.ListItems)
		wishlists.POST("/:id/items", itemHandler.AddItem)
		wishlists.PUT("/:id/items/:itemId", itemHandler.UpdateItem)
		wishlists.DELETE("/:id/items/:itemId", itemHandler.DeleteItem)
		wishlists.PUT("/:id/items/:itemId/reserve", itemHandler.ReserveItem)
		wishlists.PUT("/:id/items/:itemId/purchase", itemHandler.PurchaseItem)
		wishlists.PUT("/:id/items/:itemId/release", itemHandler.ReleaseItem)

		// Collaborators
		wishlists.GET("/:id/collaborators", collaborationHandler.ListCollaborators)
		wishlists.POST("/:id/collaborators", collaborationHandler.AddCollaborator)
		wishlists.PUT("/:id/collaborators/:cid", collaborationHandler.UpdateCollaboratorRole)
		wishlists.DELETE("/:id/collaborators/:cid", collaborationHandler.RemoveCollaborator)
		wishlists.POST("/:id/invite", collaborationHandler.Invite)
		wishlists.GET("/:id/invitations", collaborationHandler.ListInvitations)

		// Sharing
		wishlists.POST("/:id/share", shareHandler.CreateShare)
		wishlists.DELETE("/:id/share", shareHandler.RevokeShare)
		wishlists.GET("/:id/shares", shareHandler.ListShares)
	}
}

// SetupInvitationRoutes sets up the invitee side of invitations
func SetupInvitationRoutes(rg *gin.RouterGroup, services *wishlist.Services, validator middleware.TokenValidator) {
	collaborationHandler := handlers.NewCollaborationHandler(services)

	invitations := rg.Group("/wishlist-invitations")
	invitations.Use(middleware.AuthMiddleware(validator))
	{
		invitations.GET("", collaborationHandler.ListMyInvitations)
		invitations.PUT("/:id/accept", collaborationHandler.AcceptInvitation)
		invitations.PUT("/:id/decline", collaborationHandler.DeclineInvitation)
	}
}

// SetupCommentRoutes sets up item comment routes
func SetupCommentRoutes(rg *gin.RouterGroup, services *wishlist.Services, validator middleware.TokenValidator) {
	commentHandler := handlers.NewCommentHandler(services)

	comments := rg.Group("/wishlist-items/:itemId/comments")
	comments.Use(middleware.AuthMiddleware(validator))
	{
		comments.GET("", commentHandler.ListComments)
		comments.POST("", commentHandler.AddComment)
		comments.DELETE("/:commentId", commentHandler.DeleteComment)
	}
}
