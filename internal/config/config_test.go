package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL_TEST", "postgres://localhost/pesaguru_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://localhost/pesaguru_test", cfg.DatabaseURL)
	assert.Equal(t, 15*time.Minute, cfg.MarketDataCacheTTL)
	assert.Equal(t, "0 2 * * *", cfg.AllocationReviewSchedule)
	assert.Equal(t, "noreply@pesaguru.co.ke", cfg.MailFrom)
}

func TestLoad_LegacyMailKeyAndProviderURL(t *testing.T) {
	viper.Reset()
	t.Setenv("SENDINBLUE_API_KEY", "legacy-key")
	t.Setenv("INVESTMENT_PROVIDER_URL", "https://advice.example.com/")
	t.Setenv("ALLOW_CROSS_SITE_DEV", "TRUE")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.BrevoAPIKey)
	assert.Equal(t, "https://advice.example.com", cfg.InvestmentProviderURL)
	assert.True(t, cfg.AllowCrossSiteDev)
}
