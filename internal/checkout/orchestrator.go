// Package checkout turns a validated contribution into a payment code by
// calling the remote payment service.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"k8s.io/utils/clock"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
	"github.com/vakinha/checkout/internal/validation"
)

// Response is the raw answer of the remote payment service.
type Response struct {
	StatusCode int
	Body       []byte
}

// PaymentClient submits a checkout payload to the remote payment service.
// It returns an error only when no response was received.
type PaymentClient interface {
	Checkout(ctx context.Context, payload domain.CheckoutPayload) (*Response, error)
}

// Request is one submit attempt.
type Request struct {
	Input validation.Input
	Perks []domain.Perk // selected perks
}

// CodePaths lists where a payment code may appear in a successful response,
// in priority order.
var CodePaths = []string{
	"_pix.qrcode",
	"pix.qrcode",
	"_pix.qrcodeText",
	"pix.qrcodeText",
	"point_of_interaction.transaction_data.qr_code",
}

var (
	idPaths        = []string{"id", "_pix.id", "pix.id"}
	expiresAtPaths = []string{"pix.expiresAt", "_pix.expiresAt", "date_of_expiration"}
)

// Orchestrator runs the submit pipeline: validate, write the session
// handoff, call the payment service once and extract the payment code.
type Orchestrator struct {
	validator *validation.Validator
	client    PaymentClient
	handoff   domain.HandoffStore
	campaign  domain.Campaign
	sessionID string

	msgs      *messages.Catalog
	logger    *slog.Logger
	clock     clock.PassiveClock
	codePaths []string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMessages sets the message catalog for user-facing errors.
func WithMessages(c *messages.Catalog) Option {
	return func(o *Orchestrator) { o.msgs = c }
}

// WithClock sets the clock used to stamp the handoff.
func WithClock(c clock.PassiveClock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithCodePaths replaces the payment code lookup order.
func WithCodePaths(paths ...string) Option {
	return func(o *Orchestrator) { o.codePaths = paths }
}

// New creates an orchestrator for one page session.
func New(
	validator *validation.Validator,
	client PaymentClient,
	handoff domain.HandoffStore,
	campaign domain.Campaign,
	sessionID string,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		validator: validator,
		client:    client,
		handoff:   handoff,
		campaign:  campaign,
		sessionID: sessionID,
		msgs:      messages.Default(),
		logger:    slog.Default(),
		clock:     clock.RealClock{},
		codePaths: CodePaths,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate runs the form rules alone. It returns *validation.Errors or nil.
func (o *Orchestrator) Validate(req Request) error {
	return o.validator.ValidateForm(req.Input)
}

// Submit runs one checkout attempt. Errors are *validation.Errors when the
// form is invalid, or *domain.OrchestratorError with a displayable message.
// There are no retries.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*domain.PaymentPresentation, error) {
	if err := o.Validate(req); err != nil {
		return nil, err
	}

	identity := validation.Identity(req.Input)
	perksTotal := PerksTotal(req.Perks)
	total := req.Input.Amount + perksTotal

	payload := domain.CheckoutPayload{
		Name:     identity.LegalName,
		Email:    identity.Email,
		Document: identity.TaxID,
		Amount:   total.Major(),
	}

	if err := o.handoff.Save(ctx, o.sessionID, o.snapshot(payload, req, perksTotal, total)); err != nil {
		o.logger.Error("checkout handoff write failed", "session", o.sessionID, "err", err)
		return nil, &domain.OrchestratorError{
			Kind:    domain.KindStorage,
			Message: o.msgs.Get(messages.ErrorStorage),
			Err:     err,
		}
	}

	resp, err := o.client.Checkout(ctx, payload)
	if err != nil {
		o.logger.Error("checkout transport failure", "session", o.sessionID, "err", err)
		return nil, &domain.OrchestratorError{
			Kind:    domain.KindTransport,
			Message: o.msgs.Get(messages.ErrorTransport),
			Err:     err,
		}
	}

	doc, decodeErr := decodeObject(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := lookupString(doc, "error")
		if msg == "" {
			msg = o.msgs.Format(messages.ErrorStatus, resp.StatusCode)
		}
		o.logger.Error("checkout transport failure", "session", o.sessionID, "status", resp.StatusCode, "message", msg)
		return nil, &domain.OrchestratorError{
			Kind:    domain.KindTransport,
			Message: msg,
			Err:     fmt.Errorf("payment service status %d", resp.StatusCode),
		}
	}

	if decodeErr != nil {
		o.logger.Warn("checkout semantic failure", "session", o.sessionID, "reason", "malformed body", "err", decodeErr)
		return nil, &domain.OrchestratorError{
			Kind:    domain.KindSemantic,
			Message: o.msgs.Get(messages.ErrorMalformed),
			Err:     decodeErr,
		}
	}

	code := firstString(doc, o.codePaths)
	o.logger.Debug("checkout response", "session", o.sessionID, "code_prefix", prefix(code, 80))
	if code == "" {
		o.logger.Warn("checkout semantic failure", "session", o.sessionID, "reason", "no payment code")
		return nil, &domain.OrchestratorError{
			Kind:    domain.KindSemantic,
			Message: o.msgs.Get(messages.ErrorNoCode),
		}
	}

	p := &domain.PaymentPresentation{
		Total:     total,
		PixCode:   code,
		PaymentID: firstString(doc, idPaths),
	}
	if raw := firstString(doc, expiresAtPaths); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			p.ExpiresAt = t
		}
	}
	return p, nil
}

func (o *Orchestrator) snapshot(payload domain.CheckoutPayload, req Request, perksTotal, total amount.Amount) domain.SessionHandoff {
	perks := make([]domain.HandoffPerk, 0, len(req.Perks))
	for _, p := range req.Perks {
		perks = append(perks, domain.HandoffPerk{ID: p.ID, Name: p.Name, Price: p.Price.Major()})
	}
	return domain.SessionHandoff{
		SessionID:    o.sessionID,
		Name:         payload.Name,
		Email:        payload.Email,
		Document:     payload.Document,
		Amount:       payload.Amount,
		Perks:        perks,
		PerksTotal:   perksTotal.Major(),
		Total:        total.Major(),
		CampaignID:   o.campaign.ID,
		CampaignName: o.campaign.Name,
		CreatedAt:    o.clock.Now().UTC(),
	}
}

func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode payment service response: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode payment service response: not an object")
	}
	return doc, nil
}

func firstString(doc map[string]any, paths []string) string {
	for _, p := range paths {
		if s, ok := lookupString(doc, p); ok && s != "" {
			return s
		}
	}
	return ""
}

// lookupString walks a dotted path. Numbers are returned in their JSON text.
func lookupString(doc map[string]any, path string) (string, bool) {
	var cur any = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = m[key]; !ok {
			return "", false
		}
	}
	switch v := cur.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	}
	return "", false
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
