// Package api contains the HTTP handlers and routing for the payment service.
package api

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
	"github.com/vakinha/checkout/internal/payment"
	"github.com/vakinha/checkout/internal/platform/qrcode"
)

// Handler contains the HTTP handlers for the payment API.
type Handler struct {
	paymentService *payment.Service
	renderer       *qrcode.Renderer
	msgs           *messages.Catalog
	logger         *slog.Logger
}

// NewHandler creates a new API handler with the payment service.
func NewHandler(paymentService *payment.Service, renderer *qrcode.Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		paymentService: paymentService,
		renderer:       renderer,
		msgs:           messages.Default(),
		logger:         logger,
	}
}

// CheckoutRequest represents the JSON body for the checkout endpoint.
type CheckoutRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Document string  `json:"document" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

// PixResponse carries the payment code in every shape clients look for.
type PixResponse struct {
	QRCode       string    `json:"qrcode"`
	QRCodeText   string    `json:"qrcodeText"`
	QRCodeBase64 string    `json:"qrcodeBase64,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// CheckoutResponse represents the response from the checkout endpoint.
type CheckoutResponse struct {
	Success bool        `json:"success"`
	ID      string      `json:"id"`
	Total   float64     `json:"total"`
	Pix     PixResponse `json:"pix"`
}

// StatusResponse represents the response from the status endpoint.
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// CreateCheckout handles POST /checkout
// Creates a PIX charge and returns its copy-paste code.
func (h *Handler) CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("checkout request rejected", "request_id", c.GetString("request_id"), "err", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   h.msgs.Get(messages.APIInvalidBody),
			Code:    "VALIDATION_ERROR",
		})
		return
	}

	payload := domain.CheckoutPayload{
		Name:     req.Name,
		Email:    req.Email,
		Document: req.Document,
		Amount:   req.Amount,
	}

	charge, err := h.paymentService.CreateCharge(c.Request.Context(), payload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{
		Success: true,
		ID:      charge.ID,
		Total:   charge.Amount.Major(),
		Pix: PixResponse{
			QRCode:       charge.QRCode,
			QRCodeText:   charge.QRCode,
			QRCodeBase64: h.qrBase64(charge),
			ExpiresAt:    charge.ExpiresAt.UTC(),
		},
	})
}

// qrBase64 returns the gateway's PNG or renders one. Rendering failures only
// drop the image; the text code is always answered.
func (h *Handler) qrBase64(charge *domain.PixCharge) string {
	if charge.QRCodeBase64 != "" {
		return charge.QRCodeBase64
	}
	if h.renderer == nil {
		return ""
	}
	png, err := h.renderer.PNG(charge.QRCode, qrcode.DefaultSize)
	if err != nil {
		h.logger.Warn("qr image rendering failed", "payment_id", charge.ID, "err", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(png)
}

// Status handles GET /checkout/:id/status
func (h *Handler) Status(c *gin.Context) {
	id := c.Param("id")
	status, err := h.paymentService.GetStatus(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{ID: status.PaymentID, Status: status.Status})
}

// WebhookRequest represents the JSON body from Mercado Pago webhooks.
type WebhookRequest struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
	LiveMode    bool   `json:"live_mode"`
	DateCreated string `json:"date_created"`
}

// HandleWebhook handles POST /webhook
// Receives notifications from Mercado Pago and processes them. It always
// answers 200 so the provider does not retry.
func (h *Handler) HandleWebhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Mercado Pago might send different formats, fall back to the query
		h.logger.Info("webhook body not parsed", "err", err)
	}

	notification := domain.WebhookNotification{
		ID:          req.ID,
		Type:        firstNonEmpty(req.Type, c.Query("type"), c.Query("topic")),
		Action:      req.Action,
		DataID:      firstNonEmpty(req.Data.ID, c.Query("data.id"), c.Query("id")),
		LiveMode:    req.LiveMode,
		DateCreated: req.DateCreated,
	}
	if notification.Type == "" || notification.DataID == "" {
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	if err := h.paymentService.ProcessWebhook(c.Request.Context(), notification); err != nil {
		h.logger.Error("webhook processing error", "payment_id", notification.DataID, "err", err)
		// Still return 200 to prevent MP from retrying
		c.JSON(http.StatusOK, gin.H{"status": "processed_with_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

// QRCodePNG handles GET /pix/qrcode.png?code=&size=
func (h *Handler) QRCodePNG(c *gin.Context) {
	code := c.Query("code")
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(qrcode.DefaultSize)))
	if code == "" || err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   h.msgs.Get(messages.APIInvalidBody),
			Code:    "VALIDATION_ERROR",
		})
		return
	}

	png, err := h.renderer.PNG(code, size)
	if err != nil {
		h.logger.Warn("qr image rendering failed", "err", err)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Success: false,
			Error:   h.msgs.Get(messages.APIRender),
			Code:    "RENDER_ERROR",
		})
		return
	}

	c.Header("Cache-Control", "public, max-age=1800")
	c.Data(http.StatusOK, "image/png", png)
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "vakinha-checkout",
	})
}

// handleServiceError maps domain errors to HTTP responses.
func (h *Handler) handleServiceError(c *gin.Context, err error) {
	var paymentErr *domain.PaymentError
	if errors.As(err, &paymentErr) {
		statusCode := http.StatusInternalServerError

		switch {
		case errors.Is(paymentErr.Err, domain.ErrInvalidCheckout):
			statusCode = http.StatusBadRequest
		case errors.Is(paymentErr.Err, domain.ErrChargeNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(paymentErr.Err, domain.ErrWebhookValidationFailed):
			statusCode = http.StatusUnauthorized
		case errors.Is(paymentErr.Err, domain.ErrPaymentGatewayError):
			statusCode = http.StatusBadGateway
		}

		c.JSON(statusCode, ErrorResponse{
			Success: false,
			Error:   paymentErr.Message,
			Code:    paymentErr.Code,
		})
		return
	}

	// Generic error
	h.logger.Error("unhandled service error", "err", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   h.msgs.Get(messages.APIInternal),
		Code:    "INTERNAL_ERROR",
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
