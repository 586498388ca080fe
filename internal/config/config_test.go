// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, 8, cfg.Security.PasswordMinLength)
	assert.Equal(t, 0.08, cfg.Pricing.TaxRate)
	assert.Equal(t, int64(599), cfg.Pricing.ShippingBaseRate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PASSWORD_MIN_LENGTH", "12")
	t.Setenv("PRICING_TAX_RATE", "0.2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Security.PasswordMinLength)
	assert.Equal(t, 0.2, cfg.Pricing.TaxRate)
}

func TestValidateRejectsBadTaxRate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Pricing.TaxRate = 1.5
	assert.Error(t, cfg.Validate())
}
