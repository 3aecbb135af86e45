// Package domain contains the core business entities and interfaces for the
// donation checkout. It has no dependencies on external frameworks or
// infrastructure.
package domain

import (
	"time"

	"github.com/vakinha/checkout/internal/amount"
)

// Campaign identifies the crowdfunding page a contribution goes to.
type Campaign struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ContributorIdentity is the contributor data collected by the form.
// It is built fresh on each submit attempt and never persisted on its own.
type ContributorIdentity struct {
	LegalName string
	Email     string
	Phone     string // digits only
	TaxID     string // CPF, digits only
}

// Perk is an optional add-on the contributor can attach to a contribution.
type Perk struct {
	ID    string
	Name  string
	Price amount.Amount
}

// CheckoutPayload is the body sent to the remote payment service.
// Amount is the total in major units; the service converts to minor units.
type CheckoutPayload struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Document string  `json:"document"`
	Amount   float64 `json:"amount"`
}

// PaymentPresentation is what the payment modal shows once the service
// returned a usable payment code.
type PaymentPresentation struct {
	Total     amount.Amount
	PixCode   string    // EMV "copia e cola" text
	PaymentID string    // optional, used for status polling
	ExpiresAt time.Time // optional
}

// HandoffPerk is a selected perk as recorded in the session handoff.
type HandoffPerk struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// SessionHandoff is the snapshot of checkout intent written right before
// the network call, so a later page in the same session can rebuild context.
// It is always written whole.
type SessionHandoff struct {
	SessionID    string        `json:"sessionId"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Document     string        `json:"document"`
	Amount       float64       `json:"amount"`
	Perks        []HandoffPerk `json:"perks"`
	PerksTotal   float64       `json:"perksTotal"`
	Total        float64       `json:"total"`
	CampaignID   string        `json:"campaignId"`
	CampaignName string        `json:"campaignName"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Payment status values exposed by the payment service.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusExpired = "expired"
	StatusFailed  = "failed"
)

// PaymentStatus is the current state of a PIX charge.
type PaymentStatus struct {
	PaymentID   string        `json:"payment_id"`
	Status      string        `json:"status"`        // one of the Status* values
	Detail      string        `json:"status_detail"` // gateway specific detail
	ExternalRef string        `json:"external_ref"`
	Amount      amount.Amount `json:"amount_cents"`
	PayerEmail  string        `json:"payer_email"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PixOrder is a request to create a PIX charge at the gateway.
type PixOrder struct {
	Reference     string        // our external reference
	Description   string        // shown on the payer's bank statement
	Amount        amount.Amount // minor units
	PayerName     string
	PayerEmail    string
	PayerDocument string // CPF digits
	ExpiresAt     time.Time
}

// PixCharge is a created PIX charge.
type PixCharge struct {
	ID           string
	Reference    string
	Amount       amount.Amount
	QRCode       string // EMV text
	QRCodeBase64 string // optional PNG supplied by the gateway
	ExpiresAt    time.Time
	Status       string
}

// WebhookNotification represents an incoming webhook from Mercado Pago.
type WebhookNotification struct {
	ID          string `json:"id"`
	Type        string `json:"type"`   // "payment", "merchant_order", etc.
	Action      string `json:"action"` // "payment.created", "payment.updated", etc.
	DataID      string `json:"data_id"`
	LiveMode    bool   `json:"live_mode"`
	DateCreated string `json:"date_created"`
}
