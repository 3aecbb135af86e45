package domain

import "context"

// PaymentGateway creates PIX charges and reports their status.
// This is a "port" in hexagonal architecture - the domain defines what it needs,
// and infrastructure provides the implementation.
type PaymentGateway interface {
	// CreatePixCharge creates a PIX charge and returns its EMV code.
	CreatePixCharge(ctx context.Context, order PixOrder) (*PixCharge, error)

	// GetPaymentStatus retrieves the gateway view of a charge.
	GetPaymentStatus(ctx context.Context, paymentID string) (*PaymentStatus, error)
}

// StatusStore keeps the last known status of each charge.
type StatusStore interface {
	// Put records status, replacing any previous value.
	Put(ctx context.Context, status PaymentStatus) error

	// Get returns ErrChargeNotFound for unknown ids.
	Get(ctx context.Context, paymentID string) (*PaymentStatus, error)
}

// HandoffStore holds one session handoff record per browser session.
type HandoffStore interface {
	// Save replaces the session's record with h in a single write.
	Save(ctx context.Context, sessionID string, h SessionHandoff) error

	// Load returns ErrNoActiveCheckout when the session has no record.
	Load(ctx context.Context, sessionID string) (*SessionHandoff, error)
}
