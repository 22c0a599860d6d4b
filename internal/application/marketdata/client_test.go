package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pesaguru-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_GetMarketData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/market-data", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"equity_market_trend":"bearish","interest_rate_trend":"rising","economic_outlook":"slowdown","inflation_rate":7.4,"market_volatility":"high","kenya_specific_factors":["Eurobond maturity"]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret")
	f, err := c.GetMarketData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bearish", f.EquityMarketTrend)
	assert.Equal(t, "rising", f.InterestRateTrend)
	assert.Equal(t, 7.4, f.InflationRate)
	assert.Equal(t, []string{"Eurobond maturity"}, f.KenyaSpecificFactors)
}

func TestHTTPClient_BreakerOpensAfterFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	for i := 0; i < 3; i++ {
		_, err := c.GetMarketData(context.Background())
		require.Error(t, err)
	}
	_, err := c.GetMarketData(context.Background())
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

type countingClient struct {
	calls int
}

func (c *countingClient) GetMarketData(context.Context) (*domain.MarketFactors, error) {
	c.calls++
	return &domain.MarketFactors{EquityMarketTrend: "bullish", InflationRate: 5.1}, nil
}

func TestCachedClient_ServesFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	next := &countingClient{}
	c := &CachedClient{Next: next, RDB: rdb, TTL: time.Minute}

	for i := 0; i < 3; i++ {
		f, err := c.GetMarketData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "bullish", f.EquityMarketTrend)
	}
	assert.Equal(t, 1, next.calls)
	assert.True(t, mr.Exists(CacheKey))

	mr.FastForward(2 * time.Minute)
	_, err := c.GetMarketData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestNewClient_DefaultsToStaticSnapshot(t *testing.T) {
	c := NewClient("", "", nil, 0)
	_, ok := c.(StaticClient)
	require.True(t, ok)
	f, err := c.GetMarketData(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, f.KenyaSpecificFactors)
}
