package marketdata

import (
	"context"
	"encoding/json"
	"time"

	"pesaguru-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const CacheKey = "marketdata:snapshot"

// CachedClient keeps the last provider snapshot in Redis for TTL.
type CachedClient struct {
	Next Client
	RDB  *redis.Client
	TTL  time.Duration
}

func (c *CachedClient) GetMarketData(ctx context.Context) (*domain.MarketFactors, error) {
	if b, err := c.RDB.Get(ctx, CacheKey).Bytes(); err == nil {
		var f domain.MarketFactors
		if json.Unmarshal(b, &f) == nil {
			return &f, nil
		}
	} else if err != redis.Nil {
		log.Warn().Err(err).Msg("market data cache read failed")
	}

	f, err := c.Next.GetMarketData(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(f); err == nil {
		if err := c.RDB.Set(ctx, CacheKey, b, c.TTL).Err(); err != nil {
			log.Warn().Err(err).Msg("market data cache write failed")
		}
	}
	return f, nil
}
