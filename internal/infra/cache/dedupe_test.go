package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestMemoryDeduper(t *testing.T) {
	d := NewMemoryDeduper()
	ctx := context.Background()

	first, err := d.FirstSeen(ctx, "wh-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.FirstSeen(ctx, "wh-1")
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, d.Forget(ctx, "wh-1"))
	retried, _ := d.FirstSeen(ctx, "wh-1")
	assert.True(t, retried)

	other, _ := d.FirstSeen(ctx, "wh-2")
	assert.True(t, other)

	empty, _ := d.FirstSeen(ctx, "")
	assert.True(t, empty)
	empty, _ = d.FirstSeen(ctx, "")
	assert.True(t, empty, "deliveries without an id are never deduped")
}

func TestMemoryDeduper_Expires(t *testing.T) {
	d := NewMemoryDeduper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	first, _ := d.FirstSeen(context.Background(), "wh-1")
	require.True(t, first)

	now = now.Add(WebhookSeenTTL + time.Second)
	again, _ := d.FirstSeen(context.Background(), "wh-1")
	assert.True(t, again)
}

func TestRedisDeduper(t *testing.T) {
	d := NewRedisDeduper(setupTestRedis(t))
	ctx := context.Background()

	first, err := d.FirstSeen(ctx, "wh-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.FirstSeen(ctx, "wh-1")
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, d.Forget(ctx, "wh-1"))
	retried, err := d.FirstSeen(ctx, "wh-1")
	require.NoError(t, err)
	assert.True(t, retried)
}
