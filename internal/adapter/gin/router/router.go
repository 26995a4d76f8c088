package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory/internal/adapter/gin/handler"
	"user-directory/internal/adapter/gin/middleware"
	"user-directory/internal/navigation"
	"user-directory/pkg/logger"
)

// SetupRouter configures and returns a Gin router with all routes and middleware.
// live serves the websocket endpoint; rateLimiter may be nil.
func SetupRouter(
	viewHandler *handler.ViewHandler,
	live gin.HandlerFunc,
	rateLimiter *middleware.RateLimiter,
	serviceName string,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(logger.RequestIDMiddleware())
	router.Use(middleware.Logger(log))
	router.Use(rateLimiter.Middleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})

	// View snapshots
	router.GET("/", redirectToList)
	users := router.Group(navigation.ListPath)
	{
		users.GET("", viewHandler.ListView)
		users.GET("/:id", viewHandler.DetailView)
	}

	// JSON pass-through
	api := router.Group("/api")
	{
		api.GET("/users", viewHandler.ListUsers)
		api.GET("/users/:id", viewHandler.GetUser)
	}

	if live != nil {
		router.GET("/live", live)
	}

	router.GET("/debug/errors", viewHandler.RecentErrors)

	// Wildcard route
	router.NoRoute(redirectToList)

	return router
}

func redirectToList(c *gin.Context) {
	c.Redirect(http.StatusFound, navigation.ListPath)
}
