package validation

import "github.com/vakinha/checkout/internal/taxid"

// MaskPhone renders the live-typing phone mask: (00) 0000-0000 for landlines
// and (00) 00000-0000 once the eleventh digit is typed.
func MaskPhone(raw string) string {
	d := taxid.Digits(raw)
	if len(d) > 11 {
		d = d[:11]
	}
	if len(d) <= 2 {
		return d
	}
	area, rest := d[:2], d[2:]
	split := 4
	if len(d) == 11 {
		split = 5
	}
	if len(rest) > split {
		rest = rest[:split] + "-" + rest[split:]
	}
	return "(" + area + ") " + rest
}
