package mercadopago

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureValidator(t *testing.T) {
	t.Parallel()

	v := NewSignatureValidator("s3cret")
	is := assert.New(t)

	sig := Sign(BuildManifest("123456", "req-1", "1704908010"), "s3cret")
	is.True(v.Validate("ts=1704908010,v1="+sig, "req-1", "123456"))
	is.True(v.Validate("ts=1704908010, v1="+sig, "req-1", "123456"), "space after comma")

	is.False(v.Validate("ts=1704908010,v1="+sig, "req-2", "123456"), "request id is signed")
	is.False(v.Validate("ts=1704908011,v1="+sig, "req-1", "123456"), "timestamp is signed")
	is.False(v.Validate("v1="+sig, "req-1", "123456"))
	is.False(v.Validate("", "req-1", "123456"))

	is.False(NewSignatureValidator("").Validate("ts=1,v1=abc", "", ""))
	is.False(NewSignatureValidator("").Enabled())
}

func TestBuildManifest(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "id:abc123;request-id:r;ts:9;", BuildManifest("ABC123", "r", "9"))
	assert.Equal(t, "ts:9;", BuildManifest("", "", "9"))
}
