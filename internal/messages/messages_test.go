package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Equal(t, "CPF inválido.", c.Get(CPFInvalid))
	assert.Equal(t, "O valor mínimo para doação é de R$ 25,00", c.Format(AmountMinimum, "R$ 25,00"))
	assert.Equal(t, "Erro 502 ao processar pagamento.", c.Format(ErrorStatus, 502))
	assert.Equal(t, "unknown.key", c.Get("unknown.key"))
}

func TestLoadOverridesDefaults(t *testing.T) {
	c, err := Load([]byte("validation.cpf.invalid = Documento inválido.\n"))
	require.NoError(t, err)

	assert.Equal(t, "Documento inválido.", c.Get(CPFInvalid))
	assert.Equal(t, "E-mail inválido.", c.Get(EmailInvalid))
}
