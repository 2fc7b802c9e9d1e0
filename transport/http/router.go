package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/keygate/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(handlers *Handlers, authService *service.AuthService) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(), gin.Recovery())

	router.GET("/healthz", handlers.Health)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.GET("/nonce", handlers.Nonce)
		auth.POST("/login", handlers.Login)
		auth.POST("/logout", AuthMiddleware(authService), handlers.Logout)
		auth.GET("/me", AuthMiddleware(authService), handlers.Me)
	}

	// Key routes (session-authenticated)
	keys := router.Group("/keys")
	keys.Use(AuthMiddleware(authService))
	{
		keys.POST("", handlers.CreateKey)
		keys.GET("", handlers.ListKeys)
		keys.DELETE("", handlers.DeleteKey)
	}

	// Record routes; the POST path does its own credential resolution
	// because it also accepts one-shot signed messages.
	router.GET("/records", handlers.Records)
	router.POST("/records", handlers.OwnerRecords)

	return router
}
