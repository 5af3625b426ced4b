package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doacao-platform/internal/ledger"
	"doacao-platform/internal/metrics"
	"doacao-platform/internal/middleware"
	"doacao-platform/internal/notify"
	"doacao-platform/internal/session"
	ws "doacao-platform/internal/websocket"
)

// Deps is everything the router hands out to its handlers.
type Deps struct {
	Session      *session.Manager
	Ledger       *ledger.Ledger
	Notify       *notify.Center
	Hub          *ws.Hub
	Enhancer     Enhancer
	Uploader     Uploader
	UploadBucket string
	Metrics      *metrics.Metrics
	JWTSecret    string
	Log          *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.Log))
	router.Use(cors.Default())

	authHandler := NewAuthHandler(d.Session, d.JWTSecret, d.Metrics, d.Log)
	requestHandler := NewRequestHandler(d.Ledger, d.Session, d.Notify, d.Metrics, d.Log)
	donationHandler := NewDonationHandler(d.Ledger, d.Session, d.Log)
	notificationHandler := NewNotificationHandler(d.Notify, d.Session)
	mediaHandler := NewMediaHandler(d.Enhancer, d.Uploader, d.UploadBucket, d.Session, d.Log)
	wsHandler := NewWebSocketHandler(d.Hub, d.Session, d.JWTSecret, d.Log)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	router.GET("/ws/notifications", wsHandler.ServeWs)

	api := router.Group("/api")
	authRequired := middleware.AuthMiddleware(d.JWTSecret, d.Log)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/pending-role", authHandler.SetPendingRole)
		auth.POST("/logout", authRequired, authHandler.Logout)
	}

	me := api.Group("/me", authRequired)
	{
		me.GET("", authHandler.GetMe)
		me.PUT("/role", authHandler.UpdateRole)
		me.GET("/donations", donationHandler.GetMyDonations)
	}

	requests := api.Group("/requests")
	{
		requests.GET("", requestHandler.ListRequests)
		requests.GET("/:id", requestHandler.GetRequest)
		requests.POST("", authRequired, requestHandler.CreateRequest)
		requests.POST("/:id/donations", authRequired, donationHandler.CreateDonation)
		requests.POST("/:id/approve", authRequired, requestHandler.ApproveRequest)
	}

	notifications := api.Group("/notifications", authRequired)
	{
		notifications.GET("", notificationHandler.GetSettings)
		notifications.POST("/permission", notificationHandler.RequestPermission)
		notifications.PATCH("/preferences", notificationHandler.UpdatePreferences)
		notifications.POST("/test", notificationHandler.SendTest)
	}

	api.POST("/enhance", mediaHandler.Enhance)
	api.POST("/uploads", authRequired, mediaHandler.Upload)

	return router
}
