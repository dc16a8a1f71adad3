package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set; skipping redis tests")
	}
	client, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisTokenBlacklist(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	bl := NewRedisTokenBlacklist(client)
	token := "token-" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, blacklistKey(token)) })

	revoked, err := bl.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, token, time.Now().Add(time.Minute)))
	revoked, err = bl.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, blacklistKey(token)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	// the raw token is never stored as a key
	n, err := client.Exists(ctx, "blacklist:access:"+token).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisTokenBlacklistSkipsExpiredToken(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	bl := NewRedisTokenBlacklist(client)
	token := "expired-" + uuid.NewString()

	require.NoError(t, bl.Revoke(ctx, token, time.Now().Add(-time.Second)))
	revoked, err := bl.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisAttemptLimiter(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	limiter := NewRedisAttemptLimiter(client, "test-"+uuid.NewString(), 3, time.Minute)
	email := "User@Example.com"
	t.Cleanup(func() { client.Del(ctx, limiter.key(email)) })

	for i := 0; i < 3; i++ {
		blocked, err := limiter.Blocked(ctx, email)
		require.NoError(t, err)
		assert.False(t, blocked, "attempt %d", i+1)
		require.NoError(t, limiter.Fail(ctx, email))
	}

	// keys are case insensitive
	blocked, err := limiter.Blocked(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, blocked)

	ttl, err := client.TTL(ctx, limiter.key(email)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, limiter.Reset(ctx, email))
	blocked, err = limiter.Blocked(ctx, email)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestRedisAttemptLimiterRestoresLostWindow(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	limiter := NewRedisAttemptLimiter(client, "test-"+uuid.NewString(), 3, time.Minute)
	key := limiter.key("a@example.com")
	t.Cleanup(func() { client.Del(ctx, key) })

	// counter left without an expiry
	require.NoError(t, client.Set(ctx, key, 1, 0).Err())
	require.NoError(t, limiter.Fail(ctx, "a@example.com"))

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
