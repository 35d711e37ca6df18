package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"corpcab/internal/domain"
	"corpcab/internal/handler"
	"corpcab/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler         *handler.AuthHandler
	RideHandler         *handler.RideHandler
	PaymentHandler      *handler.PaymentHandler
	NotificationHandler *handler.NotificationHandler
	AdminHandler        *handler.AdminHandler
	FeedHandler         *handler.FeedHandler
	Authenticator       middleware.Authenticator
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Unsupported methods on known routes answer 405, not 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Public routes.
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", deps.AuthHandler.SignUp)
			auth.POST("/signin", deps.AuthHandler.SignIn)
		}
		v1.GET("/areas", deps.AdminHandler.ListPublicAreas)
		v1.POST("/contact", deps.AdminHandler.SubmitContact)

		// Authenticated routes.
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(deps.Authenticator))
		authed.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
		{
			authed.POST("/auth/signout", deps.AuthHandler.SignOut)
			authed.GET("/auth/me", deps.AuthHandler.Me)

			rides := authed.Group("/rides")
			{
				rides.POST("", deps.RideHandler.CreateRide)
				rides.GET("", deps.RideHandler.ListRides)
				rides.GET("/stats", deps.RideHandler.Stats)
				rides.GET("/:id", deps.RideHandler.GetRide)
				rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			}

			payments := authed.Group("/payments")
			{
				payments.POST("/intent", deps.PaymentHandler.CreateIntent)
				payments.POST("/confirm", deps.PaymentHandler.Confirm)
			}

			notifications := authed.Group("/notifications")
			{
				notifications.GET("", deps.NotificationHandler.List)
				notifications.POST("/:id/read", deps.NotificationHandler.MarkRead)
				notifications.POST("/read-all", deps.NotificationHandler.MarkAllRead)
			}

			authed.GET("/feed/ws", deps.FeedHandler.Serve)

			admin := authed.Group("/admin")
			admin.Use(middleware.RequireRole(domain.RoleAdmin))
			{
				admin.GET("/areas", deps.AdminHandler.ListAreas)
				admin.POST("/areas", deps.AdminHandler.CreateArea)
				admin.PUT("/areas/:id", deps.AdminHandler.UpdateArea)
				admin.DELETE("/areas/:id", deps.AdminHandler.DeleteArea)
				admin.GET("/contacts", deps.AdminHandler.ListContacts)
				admin.POST("/contacts/:id/resolve", deps.AdminHandler.ResolveContact)
				admin.GET("/bookings", deps.AdminHandler.ListBookings)
				admin.POST("/bookings/:id/status", deps.AdminHandler.SetBookingStatus)
			}
		}
	}

	return router
}
