package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/pix"
	"github.com/vakinha/checkout/internal/platform/store"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// stubGateway answers with fixed results and counts lookups.
type stubGateway struct {
	charge    *domain.PixCharge
	createErr error
	status    *domain.PaymentStatus
	statusErr error
	lookups   int
	orders    []domain.PixOrder
}

func (g *stubGateway) CreatePixCharge(_ context.Context, order domain.PixOrder) (*domain.PixCharge, error) {
	g.orders = append(g.orders, order)
	return g.charge, g.createErr
}

func (g *stubGateway) GetPaymentStatus(_ context.Context, _ string) (*domain.PaymentStatus, error) {
	g.lookups++
	return g.status, g.statusErr
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(gw domain.PaymentGateway, clk *clocktesting.FakePassiveClock) (*Service, *store.MemoryStatusStore) {
	statuses := store.NewMemoryStatusStore()
	svc := NewService(gw, statuses,
		domain.Campaign{ID: "5971177", Name: "Ajuda Humanitária"},
		0,
		WithClock(clk),
		WithLogger(quietLogger()),
	)
	return svc, statuses
}

func validPayload() domain.CheckoutPayload {
	return domain.CheckoutPayload{
		Name:     "Maria Silva",
		Email:    "m@x.com",
		Document: "529.982.247-25",
		Amount:   60,
	}
}

func TestCreateCharge_DevGateway(t *testing.T) {
	t.Parallel()

	clk := clocktesting.NewFakePassiveClock(now)
	gw := pix.NewDevGateway("vakinha@example.com", "Vakinha", "Belo Horizonte", clk)
	svc, statuses := newService(gw, clk)

	charge, err := svc.CreateCharge(context.Background(), validPayload())
	require.NoError(t, err)

	assert.NotEmpty(t, charge.ID)
	assert.Equal(t, amount.Amount(6000), charge.Amount)
	assert.Equal(t, now.Add(DefaultTTL), charge.ExpiresAt)
	assert.True(t, pix.VerifyCRC(charge.QRCode))

	st, err := statuses.Get(context.Background(), charge.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, st.Status)
	assert.Equal(t, "m@x.com", st.PayerEmail)
	assert.Equal(t, charge.Reference, st.ExternalRef)
}

func TestCreateCharge_OrderFields(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{charge: &domain.PixCharge{ID: "123", QRCode: "000201"}}
	svc, _ := newService(gw, clocktesting.NewFakePassiveClock(now))

	charge, err := svc.CreateCharge(context.Background(), validPayload())
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTTL), charge.ExpiresAt, "gateway without expiry gets the service ttl")

	require.Len(t, gw.orders, 1)
	order := gw.orders[0]
	assert.Equal(t, "52998224725", order.PayerDocument)
	assert.Equal(t, amount.Amount(6000), order.Amount)
	assert.Equal(t, "Contribuição - Ajuda Humanitária", order.Description)
	assert.NotEmpty(t, order.Reference)
}

func TestCreateCharge_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*domain.CheckoutPayload)
		message string
	}{
		{"short name", func(p *domain.CheckoutPayload) { p.Name = "Al" }, "Por favor, informe seu nome completo."},
		{"bad email", func(p *domain.CheckoutPayload) { p.Email = "maria" }, "E-mail inválido."},
		{"bad cpf", func(p *domain.CheckoutPayload) { p.Document = "529.982.247-26" }, "CPF inválido."},
		{"below minimum", func(p *domain.CheckoutPayload) { p.Amount = 24.99 }, "O valor mínimo para doação é de R$ 25,00"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gw := &stubGateway{}
			svc, _ := newService(gw, clocktesting.NewFakePassiveClock(now))

			p := validPayload()
			tc.mutate(&p)
			_, err := svc.CreateCharge(context.Background(), p)
			require.ErrorIs(t, err, domain.ErrInvalidCheckout)

			var perr *domain.PaymentError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "VALIDATION_ERROR", perr.Code)
			assert.Equal(t, tc.message, perr.Message)
			assert.Empty(t, gw.orders, "gateway is never called")
		})
	}
}

func TestCreateCharge_GatewayError(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{createErr: errors.New("mp: 401")}
	svc, _ := newService(gw, clocktesting.NewFakePassiveClock(now))

	_, err := svc.CreateCharge(context.Background(), validPayload())
	require.ErrorIs(t, err, domain.ErrPaymentGatewayError)

	var perr *domain.PaymentError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "GATEWAY_ERROR", perr.Code)
}

func TestGetStatus_ExpiresThroughGateway(t *testing.T) {
	t.Parallel()

	clk := clocktesting.NewFakePassiveClock(now)
	gw := pix.NewDevGateway("vakinha@example.com", "Vakinha", "BH", clk)
	svc, _ := newService(gw, clk)

	charge, err := svc.CreateCharge(context.Background(), validPayload())
	require.NoError(t, err)

	st, err := svc.GetStatus(context.Background(), charge.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, st.Status)

	clk.SetTime(now.Add(DefaultTTL))
	st, err = svc.GetStatus(context.Background(), charge.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, st.Status)
}

func TestGetStatus_NotFound(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{statusErr: domain.ErrChargeNotFound}
	svc, _ := newService(gw, clocktesting.NewFakePassiveClock(now))

	_, err := svc.GetStatus(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrChargeNotFound)

	var perr *domain.PaymentError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "NOT_FOUND", perr.Code)
}

func TestGetStatus_StoredPendingSurvivesGatewayFailure(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{
		charge:    &domain.PixCharge{ID: "42", QRCode: "000201"},
		statusErr: errors.New("timeout"),
	}
	svc, _ := newService(gw, clocktesting.NewFakePassiveClock(now))

	_, err := svc.CreateCharge(context.Background(), validPayload())
	require.NoError(t, err)

	st, err := svc.GetStatus(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, st.Status)
}

func TestProcessWebhook(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{status: &domain.PaymentStatus{PaymentID: "42", Status: domain.StatusPaid, Detail: "accredited"}}
	svc, statuses := newService(gw, clocktesting.NewFakePassiveClock(now))
	ctx := context.Background()

	require.NoError(t, svc.ProcessWebhook(ctx, domain.WebhookNotification{Type: "merchant_order", DataID: "9"}))
	assert.Zero(t, gw.lookups, "other notification types are ignored")

	require.NoError(t, svc.ProcessWebhook(ctx, domain.WebhookNotification{Type: "payment", DataID: "42"}))
	st, err := statuses.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, st.Status)

	st, err = svc.GetStatus(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, st.Status)
	assert.Equal(t, 1, gw.lookups, "settled statuses are served from the store")

	err = svc.ProcessWebhook(ctx, domain.WebhookNotification{Type: "payment"})
	assert.ErrorIs(t, err, domain.ErrWebhookValidationFailed)

	gw.statusErr = errors.New("mp down")
	err = svc.ProcessWebhook(ctx, domain.WebhookNotification{Type: "payment", DataID: "42"})
	assert.ErrorIs(t, err, domain.ErrPaymentGatewayError)
}
