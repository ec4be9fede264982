package routes

import (
	"net/http"
	"time"

	"helper/handlers"
	"helper/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers account endpoints for both roles.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	users := r.Group("/api/users")
	{
		users.POST("/register", hb.RegisterClient)
		users.POST("/login", hb.LoginClient)
	}

	providers := r.Group("/api/providers")
	{
		providers.POST("/register", hb.RegisterProvider)
		providers.POST("/login", hb.LoginProvider)
	}

	me := r.Group("/api/me")
	me.Use(middleware.JWTAuthMiddleware())
	{
		me.GET("", hb.GetProfile)
		me.PUT("/fcm-token", hb.UpdateFCMToken)
	}
}

// RegisterCatalogRoutes registers the service catalog and quote preview.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/catalog")
	{
		api.GET("/services", hb.ListServices)
		api.POST("/quote", hb.Quote)
	}
}

// RegisterMissionRoutes registers booking and lifecycle endpoints.
func RegisterMissionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/missions")
	api.Use(middleware.JWTAuthMiddleware())
	{
		// Role-routed reads available to both roles.
		api.GET("/:id", hb.GetMission)
		api.GET("/:id/watch", hb.WatchMission)

		client := api.Group("")
		client.Use(middleware.RequireClient())
		client.POST("", hb.CreateMission)
		client.POST("/:id/cancel", hb.CancelMission)

		provider := api.Group("")
		provider.Use(middleware.RequireProvider())
		provider.POST("/:id/start", hb.StartMission)
		provider.POST("/:id/complete", hb.CompleteMission)
	}
}

// RegisterInboxRoutes registers the provider offer inbox.
func RegisterInboxRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/inbox")
	api.Use(middleware.JWTAuthMiddleware(), middleware.RequireProvider())
	{
		api.GET("", hb.ListInbox)
		api.POST("/:missionID/accept", hb.AcceptOffer)
		api.POST("/:missionID/decline", hb.DeclineOffer)
	}
}

// RegisterPaymentRoutes registers the intent endpoint and the webhook. The
// webhook stays unauthenticated; the payment provider signs its calls at
// the edge.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.PaymentWebhook)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(), middleware.RequireClient())
		protected.POST("/intent", hb.PaymentIntent)
	}
}

// RegisterHealthRoute registers the liveness probe.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// SetupRoutes wires global middleware and all route groups.
func SetupRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(middleware.RateLimitMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterUserRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterMissionRoutes(r, hb)
	RegisterInboxRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterHealthRoute(r)
}
