package validation

import (
	"regexp"
	"strings"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
	"github.com/vakinha/checkout/internal/taxid"
)

// DefaultMinimum is the smallest accepted contribution (R$ 25,00).
const DefaultMinimum amount.Amount = 2500

// Field names a form field.
type Field string

const (
	FieldName   Field = "name"
	FieldEmail  Field = "email"
	FieldPhone  Field = "phone"
	FieldTaxID  Field = "cpf"
	FieldAmount Field = "amount"
)

// formOrder is the on-page order of the fields; the first errored field in
// this order is the one brought into view after a failed submit.
var formOrder = []Field{FieldName, FieldEmail, FieldPhone, FieldTaxID, FieldAmount}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Input is the raw form content at submit time.
type Input struct {
	Name   string
	Email  string
	Phone  string
	TaxID  string
	Amount amount.Amount
}

// Validator applies the checkout form rules.
type Validator struct {
	msgs    *messages.Catalog
	minimum amount.Amount
	rules   map[Field][]Rule
}

// New creates a validator. A non-positive minimum selects DefaultMinimum.
func New(msgs *messages.Catalog, minimum amount.Amount) *Validator {
	if minimum <= 0 {
		minimum = DefaultMinimum
	}
	v := &Validator{msgs: msgs, minimum: minimum}
	v.rules = map[Field][]Rule{
		FieldName: {
			{Check: func(s string) bool { return len([]rune(s)) >= 3 }, Message: msgs.Get(messages.NameRequired)},
		},
		FieldEmail: {
			{Check: notEmpty, Message: msgs.Get(messages.EmailRequired)},
			{Check: emailPattern.MatchString, Message: msgs.Get(messages.EmailInvalid)},
		},
		FieldPhone: {
			{Check: func(s string) bool { n := len(taxid.Digits(s)); return n >= 10 && n <= 11 }, Message: msgs.Get(messages.PhoneInvalid)},
		},
		FieldTaxID: {
			{Check: notEmpty, Message: msgs.Get(messages.CPFRequired)},
			{Check: taxid.Valid, Message: msgs.Get(messages.CPFInvalid)},
		},
	}
	return v
}

// Minimum returns the minimum accepted contribution.
func (v *Validator) Minimum() amount.Amount { return v.minimum }

// Field validates a single text field.
func (v *Validator) Field(f Field, value string) Result {
	return Validate(value, v.rules[f])
}

// CheckAmount is the continuous minimum check run on blur and on quick
// button selection. A blank field is not an error while the contributor is
// still filling the form.
func (v *Validator) CheckAmount(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Valid: true}
	}
	if amount.Parse(text) < v.minimum {
		return Result{Message: v.msgs.Format(messages.AmountMinimum, amount.FormatBRL(v.minimum))}
	}
	return Result{Valid: true}
}

// ValidateForm runs every field rule plus the authoritative minimum-amount
// check. It returns *Errors listing each failing field in form order, or nil.
func (v *Validator) ValidateForm(in Input) error {
	values := map[Field]string{
		FieldName:  in.Name,
		FieldEmail: in.Email,
		FieldPhone: in.Phone,
		FieldTaxID: in.TaxID,
	}

	errs := &Errors{}
	for _, f := range formOrder {
		if f == FieldAmount {
			if in.Amount < v.minimum {
				errs.add(f, v.msgs.Format(messages.AmountSubmit, amount.FormatBRL(v.minimum)))
			}
			continue
		}
		if r := v.Field(f, values[f]); !r.Valid {
			errs.add(f, r.Message)
		}
	}
	if errs.empty() {
		return nil
	}
	return errs
}

// Identity normalizes validated input into a contributor identity.
func Identity(in Input) domain.ContributorIdentity {
	return domain.ContributorIdentity{
		LegalName: strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     taxid.Digits(in.Phone),
		TaxID:     taxid.Digits(in.TaxID),
	}
}

func notEmpty(s string) bool { return s != "" }
