package checkout

import (
	"errors"
	"fmt"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
)

// ErrUnknownPerk is returned when toggling a perk that is not in the catalog.
var ErrUnknownPerk = errors.New("unknown perk")

// PerkSelection is the on/off state of each perk of a catalog.
type PerkSelection struct {
	catalog  []domain.Perk
	selected map[string]bool
}

// NewPerkSelection creates a selection over catalog with nothing selected.
func NewPerkSelection(catalog ...domain.Perk) *PerkSelection {
	return &PerkSelection{catalog: catalog, selected: make(map[string]bool)}
}

// Toggle flips the perk and returns its new state.
func (s *PerkSelection) Toggle(id string) (bool, error) {
	if !s.known(id) {
		return false, fmt.Errorf("%w: %q", ErrUnknownPerk, id)
	}
	s.selected[id] = !s.selected[id]
	return s.selected[id], nil
}

// Set selects or deselects the perk.
func (s *PerkSelection) Set(id string, on bool) error {
	if !s.known(id) {
		return fmt.Errorf("%w: %q", ErrUnknownPerk, id)
	}
	s.selected[id] = on
	return nil
}

// Selected returns the selected perks in catalog order.
func (s *PerkSelection) Selected() []domain.Perk {
	var out []domain.Perk
	for _, p := range s.catalog {
		if s.selected[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// Catalog returns every perk on offer.
func (s *PerkSelection) Catalog() []domain.Perk {
	return s.catalog
}

func (s *PerkSelection) known(id string) bool {
	for _, p := range s.catalog {
		if p.ID == id {
			return true
		}
	}
	return false
}

// PerksTotal sums the prices of perks.
func PerksTotal(perks []domain.Perk) amount.Amount {
	var total amount.Amount
	for _, p := range perks {
		total += p.Price
	}
	return total
}

// SummaryLine is one label/value row of the summary panel.
type SummaryLine struct {
	Label string
	Value string
}

// OrderSummary is the live summary panel next to the form.
type OrderSummary struct {
	Contribution SummaryLine
	Perks        []SummaryLine
	PerksTotal   string // empty when no perk adds to the total
	Total        SummaryLine
	TotalAmount  amount.Amount
}

// Summary renders the summary panel for a base amount and selected perks.
// Free perks read "Grátis".
func (o *Orchestrator) Summary(base amount.Amount, perks []domain.Perk) OrderSummary {
	perksTotal := PerksTotal(perks)
	total := base + perksTotal

	sum := OrderSummary{
		Contribution: SummaryLine{Label: o.msgs.Get(messages.SummaryContribution), Value: amount.FormatBRL(base)},
		Total:        SummaryLine{Label: o.msgs.Get(messages.SummaryTotal), Value: amount.FormatBRL(total)},
		TotalAmount:  total,
	}
	for _, p := range perks {
		value := o.msgs.Get(messages.SummaryFree)
		if p.Price > 0 {
			value = "+" + amount.FormatBRL(p.Price)
		}
		sum.Perks = append(sum.Perks, SummaryLine{Label: p.Name, Value: value})
	}
	if perksTotal > 0 {
		sum.PerksTotal = "+" + amount.FormatBRL(perksTotal)
	}
	return sum
}
