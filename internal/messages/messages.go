// Package messages holds the user-facing strings of the checkout flow.
package messages

import (
	_ "embed"
	"fmt"

	"github.com/magiconair/properties"
)

//go:embed pt_BR.properties
var ptBR []byte

// Message keys.
const (
	NameRequired    = "validation.name.required"
	EmailRequired   = "validation.email.required"
	EmailInvalid    = "validation.email.invalid"
	PhoneInvalid    = "validation.phone.invalid"
	CPFRequired     = "validation.cpf.required"
	CPFInvalid      = "validation.cpf.invalid"
	AmountMinimum   = "validation.amount.minimum"
	AmountSubmit    = "validation.amount.submit"
	ValidationBrief = "validation.summary"

	ErrorStatus    = "checkout.error.status"
	ErrorTransport = "checkout.error.transport"
	ErrorMalformed = "checkout.error.malformed"
	ErrorNoCode    = "checkout.error.no_code"
	ErrorStorage   = "checkout.error.storage"
	ErrorGeneric   = "checkout.error.generic"

	ModalLoading       = "modal.loading"
	ModalExpired       = "modal.expired"
	ModalPaid          = "modal.paid"
	ModalCopyLabel     = "modal.copy.label"
	ModalCopyDone      = "modal.copy.done"
	ModalQRUnavailable = "modal.qr.unavailable"

	SummaryFree         = "summary.free"
	SummaryContribution = "summary.contribution"
	SummaryTotal        = "summary.total"

	HandoffMissing = "handoff.missing"

	APIInvalidBody = "api.error.invalid_body"
	APIGateway     = "api.error.gateway"
	APINotFound    = "api.error.not_found"
	APIRender      = "api.error.render"
	APIInternal    = "api.error.internal"
)

// Catalog looks up messages by key.
type Catalog struct {
	props *properties.Properties
}

// Default returns the embedded pt-BR catalog.
func Default() *Catalog {
	p, err := properties.Load(ptBR, properties.UTF8)
	if err != nil {
		panic(fmt.Sprintf("messages: embedded catalog: %v", err))
	}
	// Keep literal %s/%d verbs; they are filled by Format.
	p.DisableExpansion = true
	return &Catalog{props: p}
}

// Load parses a catalog from properties-formatted data. Keys missing from
// data fall back to the embedded defaults.
func Load(data []byte) (*Catalog, error) {
	base := Default()
	p, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("parse message catalog: %w", err)
	}
	p.DisableExpansion = true
	base.props.Merge(p)
	return base, nil
}

// Get returns the message for key, or the key itself when it is unknown.
func (c *Catalog) Get(key string) string {
	return c.props.GetString(key, key)
}

// Format returns the message for key with args substituted.
func (c *Catalog) Format(key string, args ...any) string {
	return fmt.Sprintf(c.Get(key), args...)
}
