// Package pix builds and inspects PIX "copia e cola" payment codes (BR Code,
// an EMV merchant-presented QR payload).
package pix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vakinha/checkout/internal/amount"
)

// Top level field ids.
const (
	idPayloadFormat   = "00"
	idMerchantAccount = "26"
	idCategoryCode    = "52"
	idCurrency        = "53"
	idAmount          = "54"
	idCountry         = "58"
	idMerchantName    = "59"
	idMerchantCity    = "60"
	idAdditionalData  = "62"
	idCRC             = "63"

	gui = "br.gov.bcb.pix"

	maxNameLen = 25
	maxCityLen = 15
	maxTxIDLen = 25
)

var (
	ErrMissingKey  = errors.New("pix: key is required")
	ErrFieldLength = errors.New("pix: field value too long")
	ErrMalformed   = errors.New("pix: malformed payload")
)

// Payload is a static BR Code.
type Payload struct {
	Key          string
	MerchantName string
	MerchantCity string
	Amount       amount.Amount // zero lets the payer choose
	TxID         string        // "***" when empty
}

// Encode renders the payload, CRC included.
func (p Payload) Encode() (string, error) {
	if strings.TrimSpace(p.Key) == "" {
		return "", ErrMissingKey
	}

	account, err := tlv(
		field{"00", gui},
		field{"01", p.Key},
	)
	if err != nil {
		return "", err
	}
	txid := sanitizeTxID(p.TxID)
	additional, err := tlv(field{"05", txid})
	if err != nil {
		return "", err
	}

	fields := []field{
		{idPayloadFormat, "01"},
		{idMerchantAccount, account},
		{idCategoryCode, "0000"},
		{idCurrency, "986"},
	}
	if p.Amount > 0 {
		fields = append(fields, field{idAmount, strconv.FormatFloat(p.Amount.Major(), 'f', 2, 64)})
	}
	fields = append(fields,
		field{idCountry, "BR"},
		field{idMerchantName, clean(p.MerchantName, maxNameLen)},
		field{idMerchantCity, clean(p.MerchantCity, maxCityLen)},
		field{idAdditionalData, additional},
	)

	body, err := tlv(fields...)
	if err != nil {
		return "", err
	}
	body += idCRC + "04"
	return body + fmt.Sprintf("%04X", CRC16(body)), nil
}

type field struct {
	id, value string
}

func tlv(fields ...field) (string, error) {
	var b strings.Builder
	for _, f := range fields {
		if len(f.value) > 99 {
			return "", fmt.Errorf("%w: %s has %d bytes", ErrFieldLength, f.id, len(f.value))
		}
		fmt.Fprintf(&b, "%s%02d%s", f.id, len(f.value), f.value)
	}
	return b.String(), nil
}

// Field is one decoded TLV element.
type Field struct {
	ID    string
	Value string
}

// ParseTLV splits s into its top level fields.
func ParseTLV(s string) ([]Field, error) {
	var out []Field
	for i := 0; i < len(s); {
		if i+4 > len(s) {
			return nil, fmt.Errorf("%w: truncated header at %d", ErrMalformed, i)
		}
		id := s[i : i+2]
		n, err := strconv.Atoi(s[i+2 : i+4])
		if err != nil {
			return nil, fmt.Errorf("%w: length of %s: %v", ErrMalformed, id, err)
		}
		i += 4
		if i+n > len(s) {
			return nil, fmt.Errorf("%w: %s overruns payload", ErrMalformed, id)
		}
		out = append(out, Field{ID: id, Value: s[i : i+n]})
		i += n
	}
	return out, nil
}

// Lookup returns the value of the first field with id.
func Lookup(fields []Field, id string) (string, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f.Value, true
		}
	}
	return "", false
}

// VerifyCRC reports whether code ends in a CRC field matching its content.
func VerifyCRC(code string) bool {
	if len(code) < 8 || code[len(code)-8:len(code)-4] != idCRC+"04" {
		return false
	}
	want := fmt.Sprintf("%04X", CRC16(code[:len(code)-4]))
	return strings.EqualFold(want, code[len(code)-4:])
}

// CRC16 is CRC-16/CCITT-FALSE: polynomial 0x1021, initial value 0xFFFF.
func CRC16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// clean strips accents, upper-cases and keeps the characters a BR Code
// reader is guaranteed to accept.
func clean(s string, max int) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(stripped) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ') {
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if len(out) > max {
		out = strings.TrimSpace(out[:max])
	}
	return out
}

func sanitizeTxID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxTxIDLen {
		out = out[:maxTxIDLen]
	}
	if out == "" {
		return "***"
	}
	return out
}
