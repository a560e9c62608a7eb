package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisStatsCache(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	cache := NewRedisStatsCache(client, time.Minute)
	require.NoError(t, cache.Invalidate(ctx))

	_, ok, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	stats := &ProductionStats{
		Active:         12,
		Urgent:         3,
		ScanLimit:      1000,
		NotImplemented: []string{StatEfficiency, StatCompletedToday},
		GeneratedAt:    fixedNow,
	}
	require.NoError(t, cache.SetStats(ctx, stats))

	got, ok, err := cache.GetStats(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(12), got.Active)
	assert.Equal(t, int64(3), got.Urgent)
	assert.Nil(t, got.Efficiency)
	assert.True(t, fixedNow.Equal(got.GeneratedAt))

	ttl, err := client.TTL(ctx, productionStatsKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err = cache.GetStats(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStatsCache_DropsUndecodableEntry(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, productionStatsKey, "{not json", time.Minute).Err())

	_, ok, err := NewRedisStatsCache(client, time.Minute).GetStats(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := client.Exists(ctx, productionStatsKey).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
