package amount

import "errors"

// ErrNoSuchQuickAmount is returned when a quick-amount index is out of range.
var ErrNoSuchQuickAmount = errors.New("no such quick amount")

// Field holds the state of the contribution amount input: the masked text
// and which quick-amount button, if any, is highlighted. Only the text is
// stored; the numeric value is always parsed back from it.
type Field struct {
	text     string
	quick    []Amount
	selected int
}

// NewField creates an empty amount field offering the given quick amounts.
func NewField(quick ...Amount) *Field {
	return &Field{quick: quick, selected: -1}
}

// Type applies a keystroke: the raw field value is masked and any quick
// button highlighting is cleared. It returns the new field text.
func (f *Field) Type(raw string) string {
	f.text = MaskKeystroke(raw)
	f.selected = -1
	return f.text
}

// SelectQuick overwrites the field with the canonical masked form of the
// i-th quick amount and highlights only that button.
func (f *Field) SelectQuick(i int) (string, error) {
	if i < 0 || i >= len(f.quick) {
		return f.text, ErrNoSuchQuickAmount
	}
	f.text = Format(f.quick[i])
	f.selected = i
	return f.text, nil
}

// Text returns the masked field text.
func (f *Field) Text() string { return f.text }

// Value returns the amount the field currently represents.
func (f *Field) Value() Amount { return Parse(f.text) }

// Blank reports whether the field is empty.
func (f *Field) Blank() bool { return f.text == "" }

// Selected returns the highlighted quick button.
func (f *Field) Selected() (int, bool) {
	return f.selected, f.selected >= 0
}

// QuickAmounts returns the configured quick amounts.
func (f *Field) QuickAmounts() []Amount {
	out := make([]Amount, len(f.quick))
	copy(out, f.quick)
	return out
}
