package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNopNeverHits(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.SetJSON(context.Background(), InterviewKey("a"), map[string]int{"x": 1}, time.Minute))

	var dst map[string]int
	hit, err := c.GetJSON(context.Background(), InterviewKey("a"), &dst)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "interview:a", InterviewKey("a"))
}

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisCache(rdb)
	type view struct {
		ID    string `json:"id"`
		Turns int    `json:"turns"`
	}

	var got view
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "k", view{ID: "it-1", Turns: 3}, time.Minute))
	hit, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, view{ID: "it-1", Turns: 3}, got)

	require.NoError(t, rdb.Set(ctx, "bad", "{not json", time.Minute).Err())
	hit, err = c.GetJSON(ctx, "bad", &got)
	require.NoError(t, err)
	assert.False(t, hit, "corrupt entries read as a miss")

	require.NoError(t, c.Del(ctx, "k"))
	hit, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
