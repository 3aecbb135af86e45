package domain

import "errors"

// Domain errors represent business rule violations.
var (
	// ErrInvalidCheckout is returned when a checkout request fails validation.
	ErrInvalidCheckout = errors.New("invalid checkout request")

	// ErrChargeNotFound is returned when a charge id is unknown.
	ErrChargeNotFound = errors.New("charge not found")

	// ErrPaymentGatewayError is returned when there's an error communicating with the gateway.
	ErrPaymentGatewayError = errors.New("payment gateway error")

	// ErrWebhookValidationFailed is returned when webhook signature validation fails.
	ErrWebhookValidationFailed = errors.New("webhook validation failed")

	// ErrNoActiveCheckout is returned by a handoff store holding no record
	// for the session.
	ErrNoActiveCheckout = errors.New("no active checkout")
)

// Orchestrator failure classes. OrchestratorError matches them with errors.Is.
var (
	ErrTransport = errors.New("payment service transport failure")
	ErrSemantic  = errors.New("payment service returned no usable payment code")
	ErrStorage   = errors.New("session handoff write failed")
)

// PaymentError wraps a domain error with additional context.
type PaymentError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface.
func (e *PaymentError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap allows errors.Is and errors.As to work with PaymentError.
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError with the given error and message.
func NewPaymentError(err error, message, code string) *PaymentError {
	return &PaymentError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// ErrorKind classifies an OrchestratorError.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindSemantic  ErrorKind = "semantic"
	KindStorage   ErrorKind = "storage"
)

// OrchestratorError is a failed submission. Message is safe to show to the
// contributor; Err carries the diagnostic cause for logs.
type OrchestratorError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *OrchestratorError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *OrchestratorError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *OrchestratorError) Is(target error) bool {
	switch e.Kind {
	case KindTransport:
		return target == ErrTransport
	case KindSemantic:
		return target == ErrSemantic
	case KindStorage:
		return target == ErrStorage
	}
	return false
}

// RenderingError reports that a scannable code could not be drawn. It is
// never fatal: the copy-paste text stays available.
type RenderingError struct {
	Err error
}

func (e *RenderingError) Error() string { return "render payment code: " + e.Err.Error() }

func (e *RenderingError) Unwrap() error { return e.Err }
