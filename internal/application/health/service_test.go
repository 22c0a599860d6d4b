package health

import (
	"context"
	"errors"
	"testing"

	"pesaguru-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping() error { return p.err }

type provider struct{ err error }

func (p provider) GetMarketData(context.Context) (*domain.MarketFactors, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &domain.MarketFactors{EquityMarketTrend: "neutral"}, nil
}

func TestCollectHealth_NothingConfigured(t *testing.T) {
	result := CollectHealth(context.Background(), Checks{})
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, "disconnected", result.Dependencies["database"].Status)
	assert.Equal(t, "disconnected", result.Dependencies["redis"].Status)
	assert.Equal(t, "unconfigured", result.Dependencies["investment_provider"].Status)
	assert.Equal(t, 0, result.Traffic.TotalRequests)
}

func TestCollectHealth_WithMiniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	result := CollectHealth(ctx, Checks{Redis: rdb, DB: pinger{}, Provider: provider{}})
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "connected", result.Dependencies["redis"].Status)
	assert.Equal(t, "reachable", result.Dependencies["investment_provider"].Status)
	assert.Equal(t, "100", result.Traffic.SuccessRate)

	require.NoError(t, rdb.Set(ctx, "health:global:req_total", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:req_errors", "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_time_total", "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_count", "10", 0).Err())

	result = CollectHealth(ctx, Checks{Redis: rdb, DB: pinger{}})
	assert.Equal(t, 10, result.Traffic.TotalRequests)
	assert.Equal(t, 8, result.Traffic.SuccessCount)
	assert.Equal(t, "80.0", result.Traffic.SuccessRate)
	assert.Equal(t, "15.05", result.Traffic.AvgResponseTime)
}

func TestCollectHealth_Degraded(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	result := CollectHealth(context.Background(), Checks{Redis: rdb, DB: pinger{err: errors.New("down")}, Provider: provider{err: errors.New("timeout")}})
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, "error", result.Dependencies["database"].Status)
	assert.Equal(t, "unreachable", result.Dependencies["investment_provider"].Status)
}

func TestRenderDashboardHTML(t *testing.T) {
	html := RenderDashboardHTML(CollectHealth(context.Background(), Checks{}))
	assert.Contains(t, html, "PesaGuru")
	assert.Contains(t, html, "investment_provider")
	assert.Contains(t, html, "System Issues Detected")
}
