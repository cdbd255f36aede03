//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"mealmind/internal/infrastructure/config"
	"mealmind/internal/testinfra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisServiceRoundTrip(t *testing.T) {
	addr := testinfra.StartRedis(t)
	ctx := context.Background()

	svc, err := NewService(config.CacheConfig{TTL: time.Minute}, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	key := Key("mealdb:search", "nihari")
	require.NoError(t, svc.Set(ctx, key, []byte(`[{"name":"Nihari"}]`), 0))
	got, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Nihari"}]`, string(got))

	ttl, err := svc.client.TTL(ctx, keyPrefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisServiceUnreachable(t *testing.T) {
	_, err := NewService(config.CacheConfig{TTL: time.Minute}, config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
