package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server when TEST_REDIS_ADDR is set, e.g. localhost:6379.
func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := NewRedisClient(addr, "", 15)
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() {
		client.Client.FlushDB(context.Background())
		_ = client.Close()
	})

	return NewRedisCache(client.Client)
}

func TestRedisCache_GetAndTouch(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "page:tvshow:1", []string{"Lost"}, time.Second))

	var got []string
	found, err := c.GetAndTouch(ctx, "page:tvshow:1", &got, time.Minute)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"Lost"}, got)

	ttl := c.client.TTL(ctx, "page:tvshow:1").Val()
	assert.Greater(t, ttl, 30*time.Second)

	found, err = c.GetAndTouch(ctx, "page:tvshow:404", &got, time.Minute)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_DeletePattern(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	for _, k := range []string{"page:tvshow:1", "page:tvshow:2", "page:genre:1"} {
		require.NoError(t, c.Set(ctx, k, 1, time.Minute))
	}

	require.NoError(t, c.DeletePattern(ctx, "page:tvshow:*"))

	var v int
	found, err := c.Get(ctx, "page:tvshow:2", &v)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = c.Get(ctx, "page:genre:1", &v)
	require.NoError(t, err)
	assert.True(t, found)
}
