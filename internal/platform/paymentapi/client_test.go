package paymentapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vakinha/checkout/internal/domain"
)

func TestCheckout(t *testing.T) {
	t.Parallel()

	var got domain.CheckoutPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"CPF inválido"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	resp, err := c.Checkout(context.Background(), domain.CheckoutPayload{
		Name: "Maria Silva", Email: "m@x.com", Document: "52998224725", Amount: 60,
	})
	require.NoError(t, err, "non-2xx is returned as a response")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"error":"CPF inválido"}`, string(resp.Body))
	assert.Equal(t, 60.0, got.Amount)
	assert.Equal(t, "52998224725", got.Document)
}

func TestCheckout_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(base).Checkout(context.Background(), domain.CheckoutPayload{})
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/checkout/42/status":
			_, _ = w.Write([]byte(`{"id":"42","status":"paid"}`))
		case "/checkout/boom/status":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	st, err := c.Status(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, st)

	_, err = c.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrChargeNotFound)

	_, err = c.Status(context.Background(), "boom")
	assert.ErrorContains(t, err, "unexpected status 500")
}
