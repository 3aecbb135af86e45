// Package payment implements the server side of the checkout: creating PIX
// charges, tracking their status and applying gateway notifications.
// This is the service/use-case layer in Clean Architecture.
package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
	"github.com/vakinha/checkout/internal/taxid"
	"github.com/vakinha/checkout/internal/validation"
)

// DefaultTTL is how long a created PIX charge stays payable.
const DefaultTTL = 30 * time.Minute

// Service implements the payment business logic.
// It orchestrates between the payment gateway (to create PIX charges) and
// the status store (to answer status polls).
type Service struct {
	gateway   domain.PaymentGateway
	statuses  domain.StatusStore
	validator *validation.Validator
	msgs      *messages.Catalog
	campaign  domain.Campaign
	ttl       time.Duration
	clock     clock.PassiveClock
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the charge lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock sets the clock used for expiry and status timestamps.
func WithClock(clk clock.PassiveClock) Option {
	return func(s *Service) { s.clock = clk }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMessages sets the catalog for contributor-facing errors.
func WithMessages(c *messages.Catalog) Option {
	return func(s *Service) { s.msgs = c }
}

// NewService creates a new payment service with the required dependencies.
// minimum is the smallest accepted contribution; zero selects the default.
func NewService(
	gateway domain.PaymentGateway,
	statuses domain.StatusStore,
	campaign domain.Campaign,
	minimum amount.Amount,
	opts ...Option,
) *Service {
	s := &Service{
		gateway:  gateway,
		statuses: statuses,
		campaign: campaign,
		msgs:     messages.Default(),
		ttl:      DefaultTTL,
		clock:    clock.RealClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = validation.New(s.msgs, minimum)
	return s
}

// CreateCharge handles the checkout flow:
// 1. Validates the contributor identity and the minimum amount
// 2. Creates a PIX charge at the gateway
// 3. Records the charge as pending for status polls
func (s *Service) CreateCharge(ctx context.Context, payload domain.CheckoutPayload) (*domain.PixCharge, error) {
	if err := s.validate(payload); err != nil {
		return nil, err
	}

	order := domain.PixOrder{
		Reference:     uuid.NewString(),
		Description:   s.description(),
		Amount:        amount.FromMajor(payload.Amount),
		PayerName:     strings.TrimSpace(payload.Name),
		PayerEmail:    strings.TrimSpace(payload.Email),
		PayerDocument: taxid.Digits(payload.Document),
		ExpiresAt:     s.clock.Now().Add(s.ttl),
	}

	charge, err := s.gateway.CreatePixCharge(ctx, order)
	if err != nil {
		s.logger.Error("pix charge creation failed", "reference", order.Reference, "err", err)
		return nil, domain.NewPaymentError(domain.ErrPaymentGatewayError,
			s.msgs.Get(messages.APIGateway),
			"GATEWAY_ERROR")
	}
	if charge.ExpiresAt.IsZero() {
		charge.ExpiresAt = order.ExpiresAt
	}

	status := domain.PaymentStatus{
		PaymentID:   charge.ID,
		Status:      domain.StatusPending,
		ExternalRef: order.Reference,
		Amount:      order.Amount,
		PayerEmail:  order.PayerEmail,
		UpdatedAt:   s.clock.Now(),
	}
	if err := s.statuses.Put(ctx, status); err != nil {
		// The charge exists and is payable; polls fall back to the gateway.
		s.logger.Warn("failed to record charge status", "payment_id", charge.ID, "err", err)
	}

	s.logger.Info("created pix charge",
		"payment_id", charge.ID,
		"reference", order.Reference,
		"amount", amount.Format(order.Amount))

	return charge, nil
}

// GetStatus returns the last known status of a charge. Pending charges are
// refreshed from the gateway so expiry shows up without a notification.
func (s *Service) GetStatus(ctx context.Context, paymentID string) (*domain.PaymentStatus, error) {
	stored, err := s.statuses.Get(ctx, paymentID)
	if err != nil && !errors.Is(err, domain.ErrChargeNotFound) {
		s.logger.Error("status lookup failed", "payment_id", paymentID, "err", err)
		return nil, domain.NewPaymentError(err, s.msgs.Get(messages.APIInternal), "STORE_ERROR")
	}
	if stored != nil && stored.Status != domain.StatusPending {
		return stored, nil
	}

	fresh, gerr := s.gateway.GetPaymentStatus(ctx, paymentID)
	switch {
	case gerr == nil:
		if err := s.statuses.Put(ctx, *fresh); err != nil {
			s.logger.Warn("failed to record charge status", "payment_id", paymentID, "err", err)
		}
		return fresh, nil
	case stored != nil:
		s.logger.Warn("status refresh failed", "payment_id", paymentID, "err", gerr)
		return stored, nil
	default:
		return nil, domain.NewPaymentError(domain.ErrChargeNotFound,
			s.msgs.Get(messages.APINotFound),
			"NOT_FOUND")
	}
}

// ProcessWebhook handles incoming webhook notifications from Mercado Pago.
// It fetches the payment from the gateway and records its status.
func (s *Service) ProcessWebhook(ctx context.Context, notification domain.WebhookNotification) error {
	// Only process payment notifications
	if notification.Type != "payment" {
		s.logger.Info("ignoring webhook", "type", notification.Type)
		return nil
	}
	if notification.DataID == "" {
		return domain.NewPaymentError(domain.ErrWebhookValidationFailed,
			"notification has no payment id",
			"WEBHOOK_INVALID")
	}

	status, err := s.gateway.GetPaymentStatus(ctx, notification.DataID)
	if err != nil {
		s.logger.Error("webhook payment lookup failed", "payment_id", notification.DataID, "err", err)
		return domain.NewPaymentError(domain.ErrPaymentGatewayError,
			"failed to get payment info",
			"WEBHOOK_GATEWAY_ERROR")
	}

	if err := s.statuses.Put(ctx, *status); err != nil {
		s.logger.Error("webhook status write failed", "payment_id", status.PaymentID, "err", err)
		return domain.NewPaymentError(err, "failed to record payment status", "WEBHOOK_STORE_ERROR")
	}

	s.logger.Info("webhook processed",
		"payment_id", status.PaymentID,
		"status", status.Status,
		"detail", status.Detail)
	return nil
}

// validate runs the identity and minimum rules. The first failing rule wins.
func (s *Service) validate(p domain.CheckoutPayload) error {
	checks := []struct {
		field validation.Field
		value string
	}{
		{validation.FieldName, strings.TrimSpace(p.Name)},
		{validation.FieldEmail, strings.TrimSpace(p.Email)},
		{validation.FieldTaxID, p.Document},
	}
	for _, c := range checks {
		if r := s.validator.Field(c.field, c.value); !r.Valid {
			return domain.NewPaymentError(domain.ErrInvalidCheckout, r.Message, "VALIDATION_ERROR")
		}
	}

	if minimum := s.validator.Minimum(); amount.FromMajor(p.Amount) < minimum {
		return domain.NewPaymentError(domain.ErrInvalidCheckout,
			s.msgs.Format(messages.AmountMinimum, amount.FormatBRL(minimum)),
			"VALIDATION_ERROR")
	}
	return nil
}

func (s *Service) description() string {
	label := s.msgs.Get(messages.SummaryContribution)
	if s.campaign.Name == "" {
		return label
	}
	return label + " - " + s.campaign.Name
}
