package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/domain"
)

type fakePayments struct {
	created  []payment.Request
	response string
	err      error
	gotID    int
}

func (f *fakePayments) respond() (*payment.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	var r payment.Response
	if err := json.Unmarshal([]byte(f.response), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (f *fakePayments) Create(_ context.Context, r payment.Request) (*payment.Response, error) {
	f.created = append(f.created, r)
	return f.respond()
}

func (f *fakePayments) Get(_ context.Context, id int) (*payment.Response, error) {
	f.gotID = id
	return f.respond()
}

const pixResponse = `{
	"id": 1319283921,
	"status": "pending",
	"status_detail": "pending_waiting_transfer",
	"external_reference": "ref-1",
	"transaction_amount": 60,
	"point_of_interaction": {
		"transaction_data": {
			"qr_code": "00020126580014br.gov.bcb.pix",
			"qr_code_base64": "iVBORw0KGgo="
		}
	}
}`

func TestCreatePixCharge(t *testing.T) {
	t.Parallel()

	fake := &fakePayments{response: pixResponse}
	a := newAdapter(fake, "https://api.example.com/webhook")

	expires := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	charge, err := a.CreatePixCharge(context.Background(), domain.PixOrder{
		Reference:     "ref-1",
		Description:   "Contribuição",
		Amount:        amount.Amount(6000),
		PayerName:     "Maria  da Silva",
		PayerEmail:    "m@x.com",
		PayerDocument: "52998224725",
		ExpiresAt:     expires,
	})
	require.NoError(t, err)

	require.Len(t, fake.created, 1)
	req := fake.created[0]
	assert.Equal(t, "pix", req.PaymentMethodID)
	assert.Equal(t, 60.0, req.TransactionAmount)
	assert.Equal(t, "ref-1", req.ExternalReference)
	assert.Equal(t, "https://api.example.com/webhook", req.NotificationURL)
	require.NotNil(t, req.Payer)
	assert.Equal(t, "Maria", req.Payer.FirstName)
	assert.Equal(t, "da Silva", req.Payer.LastName)
	require.NotNil(t, req.Payer.Identification)
	assert.Equal(t, "52998224725", req.Payer.Identification.Number)

	assert.Equal(t, "1319283921", charge.ID)
	assert.Equal(t, "00020126580014br.gov.bcb.pix", charge.QRCode)
	assert.Equal(t, "iVBORw0KGgo=", charge.QRCodeBase64)
	assert.Equal(t, domain.StatusPending, charge.Status)
	assert.Equal(t, expires, charge.ExpiresAt)
}

func TestCreatePixCharge_Errors(t *testing.T) {
	t.Parallel()

	a := newAdapter(&fakePayments{err: errors.New("401 unauthorized")}, "")
	_, err := a.CreatePixCharge(context.Background(), domain.PixOrder{Amount: 100})
	assert.ErrorContains(t, err, "unauthorized")

	a = newAdapter(&fakePayments{response: `{"id": 7, "status": "pending"}`}, "")
	_, err = a.CreatePixCharge(context.Background(), domain.PixOrder{Amount: 100})
	assert.ErrorContains(t, err, "no pix code")
}

func TestGetPaymentStatus(t *testing.T) {
	t.Parallel()

	fake := &fakePayments{response: `{
		"id": 42,
		"status": "approved",
		"status_detail": "accredited",
		"external_reference": "ref-1",
		"transaction_amount": 60.5,
		"payer": {"email": "m@x.com"}
	}`}
	a := newAdapter(fake, "")

	st, err := a.GetPaymentStatus(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, 42, fake.gotID)
	assert.Equal(t, domain.StatusPaid, st.Status)
	assert.Equal(t, "accredited", st.Detail)
	assert.Equal(t, amount.Amount(6050), st.Amount)
	assert.Equal(t, "m@x.com", st.PayerEmail)
	assert.False(t, st.UpdatedAt.IsZero())

	_, err = a.GetPaymentStatus(context.Background(), "abc")
	assert.ErrorContains(t, err, "invalid payment ID")
}

func TestMapStatus(t *testing.T) {
	t.Parallel()

	for mp, want := range map[string]string{
		"approved":     domain.StatusPaid,
		"pending":      domain.StatusPending,
		"in_process":   domain.StatusPending,
		"authorized":   domain.StatusPending,
		"cancelled":    domain.StatusExpired,
		"rejected":     domain.StatusFailed,
		"refunded":     domain.StatusFailed,
		"charged_back": domain.StatusFailed,
	} {
		assert.Equal(t, want, MapStatus(mp), mp)
	}
}
