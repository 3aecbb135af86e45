package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vakinha/checkout/internal/platform/mercadopago"
)

// CORSMiddleware handles Cross-Origin Resource Sharing. The checkout page is
// served from the campaign site, not from this service.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware adds a unique request ID to each request.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// WebhookSecurityMiddleware validates Mercado Pago webhook signatures.
// This ensures webhooks are actually coming from Mercado Pago. Without a
// configured secret every request passes (development mode).
func WebhookSecurityMiddleware(validator *mercadopago.SignatureValidator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !validator.Enabled() {
			c.Next()
			return
		}

		// Mercado Pago sends these headers for webhook validation:
		// x-signature: ts=timestamp,v1=signature
		// x-request-id: unique request ID
		// and signs the data.id query parameter.
		xSignature := c.GetHeader("x-signature")
		xRequestID := c.GetHeader("x-request-id")
		dataID := c.Query("data.id")

		if !validator.Validate(xSignature, xRequestID, dataID) {
			logger.Warn("webhook signature rejected", "request_id", xRequestID, "data_id", dataID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Success: false,
				Error:   "invalid webhook signature",
				Code:    "INVALID_SIGNATURE",
			})
			return
		}

		c.Next()
	}
}
