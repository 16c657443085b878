package server

import (
	"github.com/gin-gonic/gin"

	"lotmarket/internal/repository"
	handler "lotmarket/services/devapi/handler"
)

// SetupRouter configures the dev API routes with the same wire contract
// as the hosted marketplace API.
func SetupRouter(repo repository.MarketDB, tokens TokenConfig) *gin.Engine {
	router := gin.New() // full control over middleware and logging

	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware)

	authHandler := handler.NewAuthHandler(repo, func(name, email string) (string, error) {
		return CreateToken(name, email, tokens)
	})
	listingHandler := handler.NewListingHandler(repo)
	profileHandler := handler.NewProfileHandler(repo)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.RegisterHandler)
		auth.POST("/login", authHandler.LoginHandler)
		auth.POST("/create-api-key", RequireAuth(tokens), authHandler.CreateAPIKeyHandler)
	}

	listings := router.Group("/auction/listings")
	{
		listings.GET("", listingHandler.ListHandler)
		listings.GET("/:id", listingHandler.GetHandler)

		protected := listings.Group("", RequireAuth(tokens), RequireAPIKey(repo))
		protected.POST("", listingHandler.CreateHandler)
		protected.PUT("/:id", listingHandler.UpdateHandler)
		protected.DELETE("/:id", listingHandler.DeleteHandler)
		protected.POST("/:id/bids", listingHandler.BidHandler)
	}

	profiles := router.Group("/auction/profiles")
	{
		profiles.GET("/:name", profileHandler.GetHandler)
		profiles.GET("/:name/listings", profileHandler.ListingsHandler)
		profiles.GET("/:name/bids", profileHandler.BidsHandler)

		protected := profiles.Group("", RequireAuth(tokens), RequireAPIKey(repo))
		protected.PUT("/:name", profileHandler.UpdateHandler)
	}

	return router
}
