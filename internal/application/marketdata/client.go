package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pesaguru-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Client is the investment provider's market-data feed.
type Client interface {
	GetMarketData(ctx context.Context) (*domain.MarketFactors, error)
}

var ErrProviderUnavailable = errors.New("Investment provider unavailable")

// NewClient picks the provider client for the configured URL. With no URL the
// built-in snapshot is used; with a Redis client the result is cached for ttl.
func NewClient(baseURL, apiKey string, rdb *redis.Client, ttl time.Duration) Client {
	var c Client = StaticClient{}
	if baseURL != "" {
		c = NewHTTPClient(baseURL, apiKey)
	}
	if rdb != nil && ttl > 0 {
		c = &CachedClient{Next: c, RDB: rdb, TTL: ttl}
	}
	return c
}

// HTTPClient fetches market data from a remote provider over JSON/HTTP.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	st := gobreaker.Settings{
		Name:        "InvestmentProvider",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}
	return &HTTPClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

type marketDataResponse struct {
	EquityMarketTrend    string   `json:"equity_market_trend"`
	InterestRateTrend    string   `json:"interest_rate_trend"`
	EconomicOutlook      string   `json:"economic_outlook"`
	InflationRate        float64  `json:"inflation_rate"`
	MarketVolatility     string   `json:"market_volatility"`
	KenyaSpecificFactors []string `json:"kenya_specific_factors"`
}

func (c *HTTPClient) GetMarketData(ctx context.Context) (*domain.MarketFactors, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrProviderUnavailable
		}
		return nil, err
	}
	return out.(*domain.MarketFactors), nil
}

func (c *HTTPClient) fetch(ctx context.Context) (*domain.MarketFactors, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/market-data", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("investment provider %d: %s", resp.StatusCode, string(b))
	}
	var body marketDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode market data: %w", err)
	}
	return &domain.MarketFactors{
		EquityMarketTrend:    body.EquityMarketTrend,
		InterestRateTrend:    body.InterestRateTrend,
		EconomicOutlook:      body.EconomicOutlook,
		InflationRate:        body.InflationRate,
		MarketVolatility:     body.MarketVolatility,
		KenyaSpecificFactors: body.KenyaSpecificFactors,
	}, nil
}

// StaticClient serves a fixed Kenyan market snapshot.
type StaticClient struct{}

func (StaticClient) GetMarketData(context.Context) (*domain.MarketFactors, error) {
	return &domain.MarketFactors{
		EquityMarketTrend: "neutral",
		InterestRateTrend: "stable",
		EconomicOutlook:   "moderate_growth",
		InflationRate:     6.8,
		MarketVolatility:  "moderate",
		KenyaSpecificFactors: []string{
			"CBK rate decisions drive money market yields",
			"T-bill and infrastructure bond yields above inflation",
			"KES exchange rate pressure on import-heavy sectors",
		},
	}, nil
}
