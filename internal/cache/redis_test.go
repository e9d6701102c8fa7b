package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockfortress/stockfortress/internal/config"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{AddressRedis: mr.Addr()}
	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return mr, cache
}

func TestRedisSetAndGet(t *testing.T) {
	_, cache := setupTestRedis(t)
	ctx := context.Background()

	expected := json.RawMessage(`{"meta":{"ticker":"AAPL"}}`)
	err := cache.Set(ctx, "report:AAPL", expected, time.Minute)
	require.NoError(t, err)

	actual, found, err := cache.Get(ctx, "report:AAPL")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, string(expected), string(actual))
}

func TestRedisGetNotFound(t *testing.T) {
	_, cache := setupTestRedis(t)

	_, found, err := cache.Get(context.Background(), "report:MISSING")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisInvalidate(t *testing.T) {
	_, cache := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "report:TSLA", json.RawMessage(`{}`), time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "report:TSLA"))

	_, found, err := cache.Get(ctx, "report:TSLA")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{AddressRedis: "127.0.0.1:9999"}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}

func TestLayered_DurableLevelIsAuthoritative(t *testing.T) {
	_, durable := setupTestRedis(t)
	ctx := context.Background()

	// Значение есть только на durable-уровне, локальный пуст.
	value := json.RawMessage(`{"meta":{"ticker":"NVDA"}}`)
	require.NoError(t, durable.Set(ctx, "report:NVDA", value, time.Minute))

	layered := NewLayered(durable, NewMemory(time.Now), time.Minute, newNoopLogger())

	got, found := layered.Get(ctx, "report:NVDA")
	require.True(t, found)
	assert.JSONEq(t, string(value), string(got))
}

func TestLayered_SetWritesBothLevels(t *testing.T) {
	mr, durable := setupTestRedis(t)
	ctx := context.Background()

	local := NewMemory(time.Now)
	layered := NewLayered(durable, local, time.Minute, newNoopLogger())

	value := json.RawMessage(`{"meta":{"ticker":"AAPL"}}`)
	layered.Set(ctx, "report:AAPL", value)

	stored, err := mr.Get("report:AAPL")
	require.NoError(t, err)
	assert.JSONEq(t, string(value), stored)
	assert.Equal(t, 1, local.Len())
}

func TestLayered_FallsBackToLocalWhenDurableIsDown(t *testing.T) {
	mr, durable := setupTestRedis(t)
	ctx := context.Background()

	local := NewMemory(time.Now)
	layered := NewLayered(durable, local, time.Minute, newNoopLogger())

	value := json.RawMessage(`{"meta":{"ticker":"TSLA"}}`)
	layered.Set(ctx, "report:TSLA", value)

	mr.Close()

	got, found := layered.Get(ctx, "report:TSLA")
	require.True(t, found, "после падения redis значение читается из локального уровня")
	assert.JSONEq(t, string(value), string(got))
}
