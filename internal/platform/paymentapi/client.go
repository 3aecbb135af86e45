// Package paymentapi is the HTTP client of the remote payment service.
package paymentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vakinha/checkout/internal/checkout"
	"github.com/vakinha/checkout/internal/domain"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Client implements checkout.PaymentClient over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Checkout posts the payload and returns the raw response. Non-2xx answers
// are not errors at this level.
func (c *Client) Checkout(ctx context.Context, payload domain.CheckoutPayload) (*checkout.Response, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &checkout.Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// statusResponse mirrors GET /checkout/:id/status.
type statusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Status fetches the current status of a payment.
func (c *Client) Status(ctx context.Context, paymentID string) (string, error) {
	endpoint := fmt.Sprintf("%s/checkout/%s/status", c.baseURL, url.PathEscape(paymentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", domain.ErrChargeNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Status, nil
}
