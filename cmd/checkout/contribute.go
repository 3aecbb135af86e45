package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/utils/clock"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/checkout"
	"github.com/vakinha/checkout/internal/clipboard"
	"github.com/vakinha/checkout/internal/countdown"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
	"github.com/vakinha/checkout/internal/modal"
	"github.com/vakinha/checkout/internal/platform/paymentapi"
	"github.com/vakinha/checkout/internal/platform/qrcode"
	"github.com/vakinha/checkout/internal/taxid"
	"github.com/vakinha/checkout/internal/validation"
)

// pollInterval is how often a shown payment is checked for confirmation.
const pollInterval = 5 * time.Second

var quickAmounts = []amount.Amount{2500, 5000, 10000, 20000}

var perkCatalog = []domain.Perk{
	{ID: "selo", Name: "Selo de apoiador", Price: 0},
	{ID: "destaque", Name: "Destaque na campanha", Price: 1000},
	{ID: "turbo", Name: "Turbinar divulgação", Price: 2000},
}

var fieldLabels = map[validation.Field]string{
	validation.FieldName:   "Nome",
	validation.FieldEmail:  "E-mail",
	validation.FieldPhone:  "Telefone",
	validation.FieldTaxID:  "CPF",
	validation.FieldAmount: "Valor",
}

type contributeOptions struct {
	name, email, phone, cpf string
	amountText              string
	quick                   int
	perks                   []string
	copy                    bool
}

func newContributeCmd(a *app) *cobra.Command {
	opts := contributeOptions{quick: -1}

	cmd := &cobra.Command{
		Use:   "contribute",
		Short: "Preenche o formulário e gera o PIX da contribuição",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.contribute(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "nome completo")
	f.StringVar(&opts.email, "email", "", "e-mail")
	f.StringVar(&opts.phone, "phone", "", "telefone com DDD")
	f.StringVar(&opts.cpf, "cpf", "", "CPF")
	f.StringVar(&opts.amountText, "amount", "", "valor digitado, ex.: 50,00")
	f.IntVar(&opts.quick, "quick", -1, fmt.Sprintf("índice do valor rápido (0-%d)", len(quickAmounts)-1))
	f.StringSliceVar(&opts.perks, "perk", nil, "turbine a contribuição: "+perkIDs())
	f.BoolVar(&opts.copy, "copy", false, "copia o código PIX para a área de transferência")
	return cmd
}

func perkIDs() string {
	var s string
	for i, p := range perkCatalog {
		if i > 0 {
			s += ", "
		}
		s += p.ID
	}
	return s
}

func (a *app) contribute(ctx context.Context, out io.Writer, opts contributeOptions) error {
	validator := validation.New(a.msgs, amount.Amount(a.cfg.Campaign.MinAmountCents))

	field := amount.NewField(quickAmounts...)
	if opts.quick >= 0 {
		if _, err := field.SelectQuick(opts.quick); err != nil {
			return err
		}
	} else {
		field.Type(opts.amountText)
	}
	if r := validator.CheckAmount(field.Text()); !r.Valid {
		fmt.Fprintf(out, "%s: %s\n", fieldLabels[validation.FieldAmount], r.Message)
	}

	selection := checkout.NewPerkSelection(perkCatalog...)
	for _, id := range opts.perks {
		if err := selection.Set(id, true); err != nil {
			return err
		}
	}

	orch := checkout.New(
		validator,
		paymentapi.NewClient(a.cfg.Client.APIURL),
		a.handoffs,
		domain.Campaign{ID: a.cfg.Campaign.ID, Name: a.cfg.Campaign.Name},
		a.session,
		checkout.WithLogger(a.logger),
		checkout.WithMessages(a.msgs),
	)
	fmt.Fprintf(out, "%s <%s> | CPF %s | Tel %s\n", opts.name, opts.email, taxid.Mask(opts.cpf), validation.MaskPhone(opts.phone))
	printSummary(out, orch.Summary(field.Value(), selection.Selected()))

	renderer := qrcode.NewRenderer(qrcode.Options{})
	view := newTerminalView(out, a.msgs, renderer)
	clk := clock.RealClock{}
	ctrl := modal.New(modal.Config{
		Orchestrator: orch,
		View:         view,
		Renderer:     renderer,
		Copier:       a.clipboard(),
		Clock:        clk,
		Messages:     a.msgs,
		Logger:       a.logger,
		PaymentTTL:   a.cfg.TTL(),
	})

	req := checkout.Request{
		Input: validation.Input{
			Name:   opts.name,
			Email:  opts.email,
			Phone:  opts.phone,
			TaxID:  opts.cpf,
			Amount: field.Value(),
		},
		Perks: selection.Selected(),
	}

	// The request is not cancelled by an interrupt; only its own timeout
	// ends it.
	if err := ctrl.Submit(context.WithoutCancel(ctx), req); err != nil {
		var verrs *validation.Errors
		if errors.As(err, &verrs) {
			printValidation(out, a, verrs)
		}
		return errReported
	}

	if opts.copy {
		if ok, _ := ctrl.Copy(ctx); !ok {
			view.println("Não foi possível copiar o código. Copie manualmente.")
		}
	}

	snap := ctrl.Snapshot()
	if snap.Presentation != nil && snap.Presentation.PaymentID != "" {
		poller := a.pollStatus(ctx, clk, ctrl, snap.Presentation.PaymentID)
		defer poller.Stop()
	}

	select {
	case <-ctx.Done():
		return ctrl.Dismiss()
	case <-view.Settled():
		paid := ctrl.Snapshot().Paid
		if err := ctrl.Close(); err != nil {
			return err
		}
		if !paid {
			return errReported
		}
		return nil
	}
}

// pollStatus checks the payment service for confirmation until the code
// would have expired.
func (a *app) pollStatus(ctx context.Context, clk clock.WithTicker, ctrl *modal.Controller, paymentID string) *countdown.Timer {
	client := paymentapi.NewClient(a.cfg.Client.APIURL)
	poller := countdown.New(clk, countdown.WithInterval(pollInterval))
	poller.Start(int(a.cfg.TTL()/pollInterval), func(int) {
		status, err := client.Status(ctx, paymentID)
		if err != nil {
			a.logger.Debug("status poll failed", "payment_id", paymentID, "err", err)
			return
		}
		if status == domain.StatusPaid {
			poller.Stop()
			ctrl.MarkPaid()
		}
	}, nil)
	return poller
}

func (a *app) clipboard() *clipboard.Service {
	if a.cfg.Client.ForceOSC52 {
		return clipboard.New(a.logger, clipboard.OSC52{Out: os.Stdout})
	}
	return clipboard.NewDefault(os.Stdout, a.logger)
}

func printSummary(out io.Writer, sum checkout.OrderSummary) {
	fmt.Fprintf(out, "%s: %s\n", sum.Contribution.Label, sum.Contribution.Value)
	for _, l := range sum.Perks {
		fmt.Fprintf(out, "  %s: %s\n", l.Label, l.Value)
	}
	if sum.PerksTotal != "" {
		fmt.Fprintf(out, "  Turbine: %s\n", sum.PerksTotal)
	}
	fmt.Fprintf(out, "%s: %s\n", sum.Total.Label, sum.Total.Value)
}

func printValidation(out io.Writer, a *app, verrs *validation.Errors) {
	fmt.Fprintln(out, a.msgs.Get(messages.ValidationBrief))
	for _, fe := range verrs.Fields() {
		fmt.Fprintf(out, "  %s: %s\n", fieldLabels[fe.Field], fe.Message)
	}

	state := validation.NewState()
	state.Apply(verrs)
	if f, ok := state.FirstErrored(); ok {
		fmt.Fprintf(out, "Corrija primeiro: %s\n", fieldLabels[f])
	}
}
