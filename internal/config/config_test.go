package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:        "8080",
		FrontendURL: "https://shop.example.com",
		JWT:         JWTConfig{Secret: "a", RefreshSecret: "b"},
		Paystack:    PaystackConfig{SecretKey: "sk_test"},
		Shipping:    ShippingConfig{LocalRate: "20", OtherRate: "30"},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.Secret = ""
	assert.ErrorContains(t, cfg.Validate(), "MALTITI_JWT_SECRET")

	cfg = validConfig()
	cfg.Paystack.SecretKey = ""
	assert.ErrorContains(t, cfg.Validate(), "MALTITI_PAYSTACK_SECRET_KEY")

	cfg = validConfig()
	cfg.FrontendURL = ""
	assert.ErrorContains(t, cfg.Validate(), "MALTITI_FRONTEND_URL")
}

func TestShippingRates(t *testing.T) {
	rates, err := ShippingConfig{LocalRate: "20", OtherRate: "30.50"}.Rates()
	require.NoError(t, err)
	assert.True(t, rates.Local.Equal(decimal.NewFromInt(20)))
	assert.True(t, rates.Other.Equal(decimal.RequireFromString("30.5")))

	_, err = ShippingConfig{LocalRate: "abc", OtherRate: "30"}.Rates()
	assert.Error(t, err)

	_, err = ShippingConfig{LocalRate: "-1", OtherRate: "30"}.Rates()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", DB: "shop", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=shop sslmode=disable", p.DSN())

	p.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", p.DSN())
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8080", Config{Port: "8080"}.Addr())
	assert.Equal(t, ":9000", Config{Port: ":9000"}.Addr())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("MALTITI_JWT_SECRET", "s1")
	t.Setenv("MALTITI_JWT_REFRESH_SECRET", "s2")
	t.Setenv("MALTITI_PAYSTACK_SECRET_KEY", "sk")
	t.Setenv("MALTITI_FRONTEND_URL", "https://shop.example.com/")
	t.Setenv("MALTITI_SHIPPING_LOCAL_RATE", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s1", cfg.JWT.Secret)
	assert.Equal(t, "https://shop.example.com", cfg.FrontendURL)
	assert.Equal(t, "25", cfg.Shipping.LocalRate)
	assert.Equal(t, "30", cfg.Shipping.OtherRate)
	assert.Equal(t, "https://api.paystack.co", cfg.Paystack.BaseURL)
}
