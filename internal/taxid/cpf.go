// Package taxid validates and formats the Brazilian individual taxpayer
// registry number (CPF).
package taxid

import "strings"

// Length is the number of digits in a CPF.
const Length = 11

// Valid reports whether s holds a CPF whose two check digits match.
// Formatting characters are ignored.
func Valid(s string) bool {
	d := Digits(s)
	if len(d) != Length || allSame(d) {
		return false
	}
	if checkDigit(d[:9], 10) != int(d[9]-'0') {
		return false
	}
	return checkDigit(d[:10], 11) == int(d[10]-'0')
}

// checkDigit computes a CPF check digit over digits using weights that start
// at firstWeight and decrease by one per position down to 2.
func checkDigit(digits string, firstWeight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (firstWeight - i)
	}
	r := 11 - sum%11
	if r >= 10 {
		return 0
	}
	return r
}

// Digits strips everything but ASCII digits from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Mask renders the live-typing mask 000.000.000-00 for up to 11 digits of s.
func Mask(s string) string {
	d := Digits(s)
	if len(d) > Length {
		d = d[:Length]
	}
	var b strings.Builder
	for i := 0; i < len(d); i++ {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteByte(d[i])
	}
	return b.String()
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}
