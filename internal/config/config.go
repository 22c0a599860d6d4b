package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	AutoMigrate         bool
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	CookieDomain        string

	InvestmentProviderURL    string // market data / advice API; empty = built-in snapshot
	InvestmentProviderAPIKey string
	MarketDataCacheTTL       time.Duration

	AllocationReviewSchedule string // cron expression for the review sweep

	BrevoAPIKey string // BREVO_API_KEY, or legacy SENDINBLUE_API_KEY
	MailFrom    string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MARKET_DATA_CACHE_TTL", "15m")
	viper.SetDefault("ALLOCATION_REVIEW_SCHEDULE", "0 2 * * *")

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = viper.GetString("NODE_ENV")
	}
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	brevoKey := viper.GetString("BREVO_API_KEY")
	if brevoKey == "" {
		brevoKey = viper.GetString("SENDINBLUE_API_KEY")
	}

	return &Config{
		Env:                      env,
		Port:                     viper.GetString("PORT"),
		LogLevel:                 viper.GetString("LOG_LEVEL"),
		SessionSecret:            viper.GetString("SESSION_SECRET"),
		DatabaseURL:              dbURL,
		RedisURL:                 viper.GetString("REDIS_URL"),
		AutoMigrate:              viper.GetBool("AUTO_MIGRATE"),
		FrontendURLEndsWith:      viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:              viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:        strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:           viper.GetString("HEALTH_ADMIN_KEY"),
		CookieDomain:             viper.GetString("COOKIE_DOMAIN"),
		InvestmentProviderURL:    strings.TrimRight(viper.GetString("INVESTMENT_PROVIDER_URL"), "/"),
		InvestmentProviderAPIKey: viper.GetString("INVESTMENT_PROVIDER_API_KEY"),
		MarketDataCacheTTL:       viper.GetDuration("MARKET_DATA_CACHE_TTL"),
		AllocationReviewSchedule: viper.GetString("ALLOCATION_REVIEW_SCHEDULE"),
		BrevoAPIKey:              brevoKey,
		MailFrom:                 mailFrom(viper.GetString("MAIL_FROM")),
	}, nil
}

func mailFrom(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "noreply@pesaguru.co.ke"
	}
	return s
}
