package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	tsPattern = regexp.MustCompile(`ts=([^,]+)`)
	v1Pattern = regexp.MustCompile(`v1=([^,]+)`)
)

// SignatureValidator validates Mercado Pago webhook signatures.
type SignatureValidator struct {
	secret string
}

// NewSignatureValidator creates a validator for the given webhook secret.
func NewSignatureValidator(secret string) *SignatureValidator {
	return &SignatureValidator{secret: secret}
}

// Enabled reports whether a secret is configured.
func (v *SignatureValidator) Enabled() bool {
	return v != nil && v.secret != ""
}

// Validate checks the x-signature header from Mercado Pago.
//
// The x-signature header contains: ts=<timestamp>,v1=<signature>
// The signature is HMAC-SHA256 of: id:<data.id>;request-id:<x-request-id>;ts:<timestamp>;
func (v *SignatureValidator) Validate(xSignature, xRequestID, dataID string) bool {
	if xSignature == "" || !v.Enabled() {
		return false
	}

	ts, hash := parseSignatureHeader(xSignature)
	if ts == "" || hash == "" {
		return false
	}

	expected := Sign(BuildManifest(dataID, xRequestID, ts), v.secret)
	return hmac.Equal([]byte(strings.ToLower(hash)), []byte(expected))
}

func parseSignatureHeader(header string) (ts, hash string) {
	if m := tsPattern.FindStringSubmatch(header); len(m) > 1 {
		ts = strings.TrimSpace(m[1])
	}
	if m := v1Pattern.FindStringSubmatch(header); len(m) > 1 {
		hash = strings.TrimSpace(m[1])
	}
	return ts, hash
}

// BuildManifest constructs the string to be signed. Alphanumeric data ids
// are signed in lower case.
func BuildManifest(dataID, requestID, ts string) string {
	var parts []string
	if dataID != "" {
		parts = append(parts, "id:"+strings.ToLower(dataID))
	}
	if requestID != "" {
		parts = append(parts, "request-id:"+requestID)
	}
	if ts != "" {
		parts = append(parts, "ts:"+ts)
	}
	return strings.Join(parts, ";") + ";"
}

// Sign computes the hex HMAC-SHA256 of manifest.
func Sign(manifest, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(manifest))
	return hex.EncodeToString(h.Sum(nil))
}
