package api

import (
	"github.com/gin-gonic/gin"

	"github.com/vakinha/checkout/internal/platform/mercadopago"
)

// SetupRouter configures the Gin router with all routes and middleware.
func SetupRouter(handler *Handler, ginMode string, webhooks *mercadopago.SignatureValidator) *gin.Engine {
	// Set Gin mode
	gin.SetMode(ginMode)

	router := gin.New()

	// Apply middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())
	router.Use(RequestIDMiddleware())

	// Health check endpoint
	router.GET("/health", handler.Health)

	checkout := router.Group("/checkout")
	{
		checkout.POST("", handler.CreateCheckout)
		checkout.GET("/:id/status", handler.Status)
	}

	router.GET("/pix/qrcode.png", handler.QRCodePNG)

	// Called by Mercado Pago; security is handled by validating the
	// webhook signature
	router.POST("/webhook", WebhookSecurityMiddleware(webhooks, handler.logger), handler.HandleWebhook)

	return router
}
