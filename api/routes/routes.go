package routes

import (
	"github.com/HeemPlayz/arabs-giveaways/internal/config"
	"github.com/HeemPlayz/arabs-giveaways/internal/handlers"
	"github.com/HeemPlayz/arabs-giveaways/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies bundles the handlers the router needs
type HandlerDependencies struct {
	AuthHandler     *handlers.AuthHandler
	GiveawayHandler *handlers.GiveawayHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		public.POST("/auth/login", deps.AuthHandler.Login)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		protected.POST("/auth/register", deps.AuthHandler.Register)

		giveaways := protected.Group("/giveaways")
		{
			giveaways.POST("", deps.GiveawayHandler.CreateGiveaway)
			giveaways.GET("/:messageId", deps.GiveawayHandler.GetGiveaway)
			giveaways.POST("/:messageId/complete", deps.GiveawayHandler.CompleteGiveaway)
			giveaways.POST("/:messageId/reroll", deps.GiveawayHandler.RerollGiveaway)
		}

		protected.GET("/guilds/:guildId/giveaways", deps.GiveawayHandler.ListGiveaways)
	}

	return router
}
