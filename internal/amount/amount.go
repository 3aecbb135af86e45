// Package amount converts between contributor-typed currency text and
// integer minor units (centavos).
//
// The text form is always derived from the numeric value and vice versa, so
// a field never holds a display string that disagrees with its amount.
package amount

import (
	"math"
	"strconv"
	"strings"
)

// Amount is a non-negative monetary value expressed in minor units.
type Amount int64

// maxDigits caps the significant digits accepted from typed input.
const maxDigits = 15

// Parse treats every non-digit character in text as absent and reads the
// remaining digits as a count of minor units. Empty input yields zero.
func Parse(text string) Amount {
	digits := significantDigits(text)
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return Amount(v)
}

// Format renders a using pt-BR separators with exactly two fraction digits,
// e.g. 123456 -> "1.234,56".
func Format(a Amount) string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := strconv.FormatInt(v/100, 10)
	cents := v % 100

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	if cents < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(cents, 10))
	return b.String()
}

// FormatBRL renders a with the Real currency symbol.
func FormatBRL(a Amount) string {
	return "R$ " + Format(a)
}

// MaskKeystroke is the live-typing transform applied to the amount field.
// Non-digits are dropped, the digits are reinterpreted as minor units and
// re-rendered, so the value grows right-to-left as the contributor types.
// Input without any digit clears the field.
func MaskKeystroke(raw string) string {
	if !hasDigit(raw) {
		return ""
	}
	return Format(Parse(raw))
}

// FromMajor converts a wire amount in major units to minor units, rounding
// to the nearest centavo.
func FromMajor(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return Amount(math.Round(v * 100))
}

// Major returns a in major units, as the remote service expects it.
func (a Amount) Major() float64 {
	return float64(a) / 100
}

// String implements fmt.Stringer.
func (a Amount) String() string {
	return FormatBRL(a)
}

func significantDigits(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r < '0' || r > '9' {
			continue
		}
		if b.Len() == 0 && r == '0' {
			continue
		}
		if b.Len() == maxDigits {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
