// internal/services/stats_cache.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const productionStatsKey = "prodcrm:production:stats"

// StatsCache holds the most recent production stats snapshot.
type StatsCache interface {
	GetStats(ctx context.Context) (*ProductionStats, bool, error)
	SetStats(ctx context.Context, stats *ProductionStats) error
	Invalidate(ctx context.Context) error
}

type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

func (c *RedisStatsCache) GetStats(ctx context.Context) (*ProductionStats, bool, error) {
	raw, err := c.client.Get(ctx, productionStatsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var stats ProductionStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		// Drop an entry we can no longer decode.
		c.client.Del(ctx, productionStatsKey)
		return nil, false, nil
	}
	return &stats, true, nil
}

func (c *RedisStatsCache) SetStats(ctx context.Context, stats *ProductionStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productionStatsKey, raw, c.ttl).Err()
}

func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, productionStatsKey).Err()
}

func (c *RedisStatsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

type noopStatsCache struct{}

func (noopStatsCache) GetStats(context.Context) (*ProductionStats, bool, error) {
	return nil, false, nil
}
func (noopStatsCache) SetStats(context.Context, *ProductionStats) error { return nil }
func (noopStatsCache) Invalidate(context.Context) error                 { return nil }
