package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
	"github.com/vakinha/checkout/internal/validation"
)

// journal records the order of side effects across fakes.
type journal struct {
	events []string
}

type fakeClient struct {
	j        *journal
	resp     *Response
	err      error
	payloads []domain.CheckoutPayload
}

func (f *fakeClient) Checkout(_ context.Context, p domain.CheckoutPayload) (*Response, error) {
	f.j.events = append(f.j.events, "network")
	f.payloads = append(f.payloads, p)
	return f.resp, f.err
}

type fakeHandoff struct {
	j     *journal
	err   error
	saved map[string]domain.SessionHandoff
}

func (f *fakeHandoff) Save(_ context.Context, id string, h domain.SessionHandoff) error {
	f.j.events = append(f.j.events, "handoff")
	if f.err != nil {
		return f.err
	}
	f.saved[id] = h
	return nil
}

func (f *fakeHandoff) Load(_ context.Context, id string) (*domain.SessionHandoff, error) {
	h, ok := f.saved[id]
	if !ok {
		return nil, domain.ErrNoActiveCheckout
	}
	return &h, nil
}

type fixture struct {
	j       *journal
	client  *fakeClient
	handoff *fakeHandoff
	orch    *Orchestrator
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(body string, status int) *fixture {
	j := &journal{}
	f := &fixture{
		j:       j,
		client:  &fakeClient{j: j, resp: &Response{StatusCode: status, Body: []byte(body)}},
		handoff: &fakeHandoff{j: j, saved: map[string]domain.SessionHandoff{}},
	}
	f.orch = New(
		validation.New(messages.Default(), 0),
		f.client,
		f.handoff,
		domain.Campaign{ID: "5971177", Name: "Ajuda Humanitária"},
		"session-1",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(clocktesting.NewFakePassiveClock(now)),
	)
	return f
}

func mariaInput(a amount.Amount) validation.Input {
	return validation.Input{
		Name:   "Maria Silva",
		Email:  "m@x.com",
		Phone:  "31999998888",
		TaxID:  "52998224725",
		Amount: a,
	}
}

const okBody = `{"success":true,"id":"abc-123","total":60,"pix":{"qrcode":"00020126-EMV","expiresAt":"2026-03-01T12:30:00Z"}}`

func TestSubmit_EndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(okBody, 200)
	perk := domain.Perk{ID: "turbo", Name: "Turbinar", Price: 1000}

	p, err := f.orch.Submit(context.Background(), Request{Input: mariaInput(5000), Perks: []domain.Perk{perk}})
	require.NoError(t, err)

	assert.Equal(t, []string{"handoff", "network"}, f.j.events, "handoff is written before the request")

	require.Len(t, f.client.payloads, 1)
	assert.Equal(t, domain.CheckoutPayload{
		Name:     "Maria Silva",
		Email:    "m@x.com",
		Document: "52998224725",
		Amount:   60.00,
	}, f.client.payloads[0])

	h := f.handoff.saved["session-1"]
	assert.Equal(t, 60.00, h.Total)
	assert.Equal(t, 10.00, h.PerksTotal)
	assert.Equal(t, 60.00, h.Amount)
	assert.Equal(t, []domain.HandoffPerk{{ID: "turbo", Name: "Turbinar", Price: 10}}, h.Perks)
	assert.Equal(t, "5971177", h.CampaignID)
	assert.Equal(t, now, h.CreatedAt)

	assert.Equal(t, amount.Amount(6000), p.Total)
	assert.Equal(t, "00020126-EMV", p.PixCode)
	assert.Equal(t, "abc-123", p.PaymentID)
	assert.Equal(t, now.Add(30*time.Minute), p.ExpiresAt)
}

func TestSubmit_BlankAmount(t *testing.T) {
	t.Parallel()

	f := newFixture(okBody, 200)
	field := amount.NewField(2500, 5000)
	require.True(t, field.Blank())

	_, err := f.orch.Submit(context.Background(), Request{Input: mariaInput(field.Value())})
	var verrs *validation.Errors
	require.ErrorAs(t, err, &verrs)
	_, ok := verrs.Get(validation.FieldAmount)
	assert.True(t, ok)
	assert.Empty(t, f.j.events, "no handoff write and no request")
}

func TestSubmit_BelowMinimumNeverCallsNetwork(t *testing.T) {
	t.Parallel()

	prop := func(cents uint16, name string, validCPF bool) bool {
		f := newFixture(okBody, 200)
		in := mariaInput(amount.Amount(cents) % validation.DefaultMinimum)
		in.Name = name
		if !validCPF {
			in.TaxID = "52998224726"
		}
		_, err := f.orch.Submit(context.Background(), Request{Input: in})
		return err != nil && len(f.client.payloads) == 0 && len(f.handoff.saved) == 0
	}
	require.NoError(t, quick.Check(prop, nil))
}

func TestSubmit_CodeExtractionOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "underscore qrcode wins", body: `{"_pix":{"qrcode":"A","qrcodeText":"B"},"pix":{"qrcode":"C"}}`, want: "A"},
		{name: "pix qrcode", body: `{"pix":{"qrcode":"C","qrcodeText":"D"}}`, want: "C"},
		{name: "empty values are skipped", body: `{"_pix":{"qrcode":""},"pix":{"qrcode":"","qrcodeText":"D"}}`, want: "D"},
		{name: "underscore text", body: `{"_pix":{"qrcodeText":"B"}}`, want: "B"},
		{name: "mercado pago shape", body: `{"id":123,"point_of_interaction":{"transaction_data":{"qr_code":"E"}}}`, want: "E"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(tc.body, 201)
			p, err := f.orch.Submit(context.Background(), Request{Input: mariaInput(5000)})
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.PixCode)
		})
	}
}

func TestSubmit_NumericID(t *testing.T) {
	t.Parallel()

	f := newFixture(`{"id":1234567890123,"pix":{"qrcode":"X"}}`, 200)
	p, err := f.orch.Submit(context.Background(), Request{Input: mariaInput(5000)})
	require.NoError(t, err)
	assert.Equal(t, "1234567890123", p.PaymentID)
	assert.True(t, p.ExpiresAt.IsZero())
}

func TestSubmit_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		body     string
		code     int
		netErr   error
		sentinel error
		message  string
	}{
		{
			name:     "missing code",
			body:     `{"success":true,"pix":{"expiresAt":"2026-03-01T12:30:00Z"}}`,
			code:     200,
			sentinel: domain.ErrSemantic,
			message:  "A API não retornou o código PIX. Verifique as credenciais.",
		},
		{
			name:     "malformed body",
			body:     `<html>`,
			code:     200,
			sentinel: domain.ErrSemantic,
			message:  "O serviço de pagamento retornou uma resposta inválida.",
		},
		{
			name:     "array body",
			body:     `[]`,
			code:     200,
			sentinel: domain.ErrSemantic,
			message:  "O serviço de pagamento retornou uma resposta inválida.",
		},
		{
			name:     "error field",
			body:     `{"success":false,"error":"CPF inválido"}`,
			code:     400,
			sentinel: domain.ErrTransport,
			message:  "CPF inválido",
		},
		{
			name:     "status fallback",
			body:     `bad gateway`,
			code:     502,
			sentinel: domain.ErrTransport,
			message:  "Erro 502 ao processar pagamento.",
		},
		{
			name:     "network failure",
			netErr:   errors.New("dial tcp: connection refused"),
			sentinel: domain.ErrTransport,
			message:  "Não foi possível contatar o serviço de pagamento. Verifique sua conexão e tente novamente.",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(tc.body, tc.code)
			if tc.netErr != nil {
				f.client.resp = nil
				f.client.err = tc.netErr
			}

			p, err := f.orch.Submit(context.Background(), Request{Input: mariaInput(5000)})
			assert.Nil(t, p)
			require.ErrorIs(t, err, tc.sentinel)

			var oerr *domain.OrchestratorError
			require.ErrorAs(t, err, &oerr)
			assert.Equal(t, tc.message, oerr.Message)
			assert.Len(t, f.client.payloads, 1, "exactly one request, no retries")
		})
	}
}

func TestSubmit_HandoffFailureAborts(t *testing.T) {
	t.Parallel()

	f := newFixture(okBody, 200)
	f.handoff.err = errors.New("disk full")

	_, err := f.orch.Submit(context.Background(), Request{Input: mariaInput(5000)})
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, []string{"handoff"}, f.j.events)
}

func TestWithCodePaths(t *testing.T) {
	t.Parallel()

	f := newFixture(`{"pix":{"qrcode":"A"},"emv":"Z"}`, 200)
	WithCodePaths("emv")(f.orch)

	p, err := f.orch.Submit(context.Background(), Request{Input: mariaInput(5000)})
	require.NoError(t, err)
	assert.Equal(t, "Z", p.PixCode)
}
