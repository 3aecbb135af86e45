// Package mercadopago implements the PaymentGateway interface using the Mercado Pago SDK.
package mercadopago

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/domain"
)

// paymentAPI is the part of the SDK payment client the adapter uses.
type paymentAPI interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
	Get(ctx context.Context, id int) (*payment.Response, error)
}

// Adapter implements the domain.PaymentGateway interface using Mercado Pago SDK.
type Adapter struct {
	client          paymentAPI
	notificationURL string
}

// NewAdapter creates an adapter authenticated with accessToken. Payment
// updates are announced to notificationURL when it is set.
func NewAdapter(accessToken, notificationURL string) (*Adapter, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create MP config: %w", err)
	}
	return newAdapter(payment.NewClient(cfg), notificationURL), nil
}

func newAdapter(client paymentAPI, notificationURL string) *Adapter {
	return &Adapter{client: client, notificationURL: notificationURL}
}

// CreatePixCharge creates a payment with payment_method_id=pix. The EMV
// code comes back in point_of_interaction.transaction_data.
func (a *Adapter) CreatePixCharge(ctx context.Context, order domain.PixOrder) (*domain.PixCharge, error) {
	firstName, lastName := splitName(order.PayerName)

	request := payment.Request{
		TransactionAmount: order.Amount.Major(),
		Description:       order.Description,
		PaymentMethodID:   "pix",
		ExternalReference: order.Reference,
		NotificationURL:   a.notificationURL,
		Payer: &payment.PayerRequest{
			Email:     order.PayerEmail,
			FirstName: firstName,
			LastName:  lastName,
			Identification: &payment.IdentificationRequest{
				Type:   "CPF",
				Number: order.PayerDocument,
			},
		},
	}

	result, err := a.client.Create(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	data := result.PointOfInteraction.TransactionData
	if data.QRCode == "" {
		return nil, fmt.Errorf("payment %d has no pix code", result.ID)
	}

	return &domain.PixCharge{
		ID:           strconv.Itoa(result.ID),
		Reference:    order.Reference,
		Amount:       order.Amount,
		QRCode:       data.QRCode,
		QRCodeBase64: data.QRCodeBase64,
		ExpiresAt:    order.ExpiresAt,
		Status:       MapStatus(result.Status),
	}, nil
}

// GetPaymentStatus retrieves payment information from Mercado Pago.
// Used when processing webhooks to get the current payment status.
func (a *Adapter) GetPaymentStatus(ctx context.Context, paymentID string) (*domain.PaymentStatus, error) {
	// SDK uses int for payment IDs
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment ID format: %w", err)
	}

	result, err := a.client.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment info: %w", err)
	}

	updated := result.DateCreated
	if updated.IsZero() {
		updated = time.Now()
	}

	return &domain.PaymentStatus{
		PaymentID:   paymentID,
		Status:      MapStatus(result.Status),
		Detail:      result.StatusDetail,
		ExternalRef: result.ExternalReference,
		Amount:      amount.FromMajor(result.TransactionAmount),
		PayerEmail:  result.Payer.Email,
		UpdatedAt:   updated,
	}, nil
}

// MapStatus folds Mercado Pago payment statuses into the checkout's four.
func MapStatus(mp string) string {
	switch mp {
	case "approved":
		return domain.StatusPaid
	case "cancelled", "expired":
		return domain.StatusExpired
	case "rejected", "refunded", "charged_back":
		return domain.StatusFailed
	default:
		return domain.StatusPending
	}
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
