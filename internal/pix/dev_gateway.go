package pix

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/vakinha/checkout/internal/domain"
)

// DevGateway issues static BR Codes locally. It stands in for the real
// gateway when no access token is configured; payments it issues are never
// confirmed, only left pending until they expire.
type DevGateway struct {
	key   string
	name  string
	city  string
	clock clock.PassiveClock

	mu      sync.Mutex
	charges map[string]domain.PixCharge
}

// NewDevGateway creates a development gateway receiving on key.
func NewDevGateway(key, merchantName, merchantCity string, clk clock.PassiveClock) *DevGateway {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &DevGateway{
		key:     key,
		name:    merchantName,
		city:    merchantCity,
		clock:   clk,
		charges: make(map[string]domain.PixCharge),
	}
}

// CreatePixCharge implements domain.PaymentGateway.
func (g *DevGateway) CreatePixCharge(_ context.Context, order domain.PixOrder) (*domain.PixCharge, error) {
	code, err := Payload{
		Key:          g.key,
		MerchantName: g.name,
		MerchantCity: g.city,
		Amount:       order.Amount,
		TxID:         order.Reference,
	}.Encode()
	if err != nil {
		return nil, fmt.Errorf("build dev pix code: %w", err)
	}

	charge := domain.PixCharge{
		ID:        uuid.NewString(),
		Reference: order.Reference,
		Amount:    order.Amount,
		QRCode:    code,
		ExpiresAt: order.ExpiresAt,
		Status:    domain.StatusPending,
	}

	g.mu.Lock()
	g.charges[charge.ID] = charge
	g.mu.Unlock()

	return &charge, nil
}

// GetPaymentStatus implements domain.PaymentGateway.
func (g *DevGateway) GetPaymentStatus(_ context.Context, paymentID string) (*domain.PaymentStatus, error) {
	g.mu.Lock()
	charge, ok := g.charges[paymentID]
	g.mu.Unlock()
	if !ok {
		return nil, domain.ErrChargeNotFound
	}

	now := g.clock.Now()
	status := domain.StatusPending
	if !charge.ExpiresAt.IsZero() && !now.Before(charge.ExpiresAt) {
		status = domain.StatusExpired
	}
	return &domain.PaymentStatus{
		PaymentID:   charge.ID,
		Status:      status,
		Detail:      "dev_gateway",
		ExternalRef: charge.Reference,
		Amount:      charge.Amount,
		UpdatedAt:   now,
	}, nil
}
