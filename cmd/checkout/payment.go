package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/utils/clock"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/countdown"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
)

// handBackDelay is how long the missing-checkout notice stays before the
// entry form is shown instead.
const handBackDelay = 2 * time.Second

// defaultCampaignName is shown when the handoff carries no campaign name.
const defaultCampaignName = "AJUDA HUMANITÁRIA | ZONA DA MATA - MG"

func newPaymentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "payment",
		Short: "Mostra a contribuição em andamento desta sessão",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			contribute, _, err := cmd.Root().Find([]string{"contribute"})
			if err != nil {
				return err
			}
			return a.payment(cmd.Context(), cmd.OutOrStdout(), clock.RealClock{}, contribute.Usage)
		},
	}
}

func (a *app) payment(ctx context.Context, out io.Writer, clk clock.Clock, handBack func() error) error {
	h, err := a.handoffs.Load(ctx, a.session)
	if errors.Is(err, domain.ErrNoActiveCheckout) {
		fmt.Fprintln(out, a.msgs.Get(messages.HandoffMissing))
		select {
		case <-ctx.Done():
			return nil
		case <-clk.After(handBackDelay):
		}
		return handBack()
	}
	if err != nil {
		return fmt.Errorf("load handoff: %w", err)
	}

	renderHandoff(out, *h, clk.Now(), a.cfg.TTL(), a.msgs)
	return nil
}

// renderHandoff prints the payment page for a recorded checkout.
func renderHandoff(out io.Writer, h domain.SessionHandoff, now time.Time, ttl time.Duration, msgs *messages.Catalog) {
	campaign := h.CampaignName
	if campaign == "" {
		campaign = defaultCampaignName
	}
	total := h.Total
	if total == 0 {
		total = h.Amount
	}

	fmt.Fprintln(out, campaign)
	fmt.Fprintf(out, "[%s] %s <%s>\n", initial(h.Name), h.Name, h.Email)
	for _, p := range h.Perks {
		price := msgs.Get(messages.SummaryFree)
		if p.Price > 0 {
			price = "+" + amount.FormatBRL(amount.FromMajor(p.Price))
		}
		fmt.Fprintf(out, "  %s: %s\n", p.Name, price)
	}
	fmt.Fprintf(out, "%s: %s\n", msgs.Get(messages.SummaryTotal), amount.FormatBRL(amount.FromMajor(total)))

	remaining := int(h.CreatedAt.Add(ttl).Sub(now) / time.Second)
	if remaining <= 0 {
		fmt.Fprintln(out, msgs.Get(messages.ModalExpired))
		return
	}
	fmt.Fprintf(out, "Expira em %s\n", countdown.Display(remaining))
}

func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	r := []rune(name)
	return strings.ToUpper(string(r[0]))
}
