package rest

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type RouterParams struct {
	Handler *Handler
	// WebSocket serves GET /ws; the route is omitted when nil
	WebSocket http.HandlerFunc
	Logger    zerolog.Logger
}

// SetupRouter configures all gin routes of the service
func SetupRouter(params RouterParams) *gin.Engine {
	h := params.Handler

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(params.Logger.With().Str("component", "http").Logger()))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", userIDHeader, signatureHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.SetHTMLTemplate(loadTemplates())

	router.GET("/health", h.Health)
	if params.WebSocket != nil {
		router.GET("/ws", gin.WrapF(params.WebSocket))
	}

	// Pages and payment endpoints
	router.GET("/register-card", h.RegisterCardPage)
	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)
	router.GET("/registration/:customer_id", h.RegistrationPage)
	router.POST("/registration/:customer_id", h.CompleteRegistration)
	router.GET("/public-key", h.PublicKey)
	router.POST("/create-setup-intent", requireCaller(), h.CreateSetupIntent)
	router.POST("/webhook", h.Webhook)

	router.POST("/users", h.RegisterUser)

	public := router.Group("")
	{
		public.GET("/users/:id", h.GetUser)
		public.GET("/users/:id/feedback", h.ListFeedback)
		public.GET("/categories", h.ListCategories)
		public.GET("/payment-methods", h.ListPaymentMethods)
		public.GET("/items", h.ListItems)
		public.GET("/items/:id", h.GetItem)
		public.GET("/items/:id/images", h.ListImages)
		public.GET("/items/:id/bids", h.ListBids)
		public.GET("/items/:id/winning", h.WinningBid)
		public.GET("/items/:id/transaction", h.GetTransaction)
		public.POST("/items/:id/close", h.CloseItem)
	}

	authed := router.Group("", requireCaller())
	{
		authed.DELETE("/users/:id", h.DeleteUser)
		authed.POST("/categories", h.CreateCategory)
		authed.DELETE("/categories/:id", h.DeleteCategory)
		authed.POST("/payment-methods", h.CreatePaymentMethod)
		authed.POST("/items", h.CreateItem)
		authed.PUT("/items/:id", h.UpdateItem)
		authed.DELETE("/items/:id", h.DeleteItem)
		authed.POST("/items/:id/images", h.AddImage)
		authed.POST("/items/:id/bids", h.PlaceBid)
		authed.POST("/feedback", h.SubmitFeedback)
		authed.POST("/reports", h.FileReport)
	}

	my := router.Group("/my", requireCaller())
	{
		my.GET("/notifications", h.MyNotifications)
		my.POST("/notifications/:id/read", h.MarkNotificationRead)
		my.GET("/transactions", h.MyTransactions)
	}

	return router
}
