package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter counts failed attempts per key inside a fixed window.
type AttemptLimiter interface {
	Blocked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type RedisAttemptLimiter struct {
	Client      *redis.Client
	Prefix      string
	MaxAttempts int64
	Window      time.Duration
}

func NewRedisAttemptLimiter(client *redis.Client, prefix string, maxAttempts int, window time.Duration) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{
		Client:      client,
		Prefix:      prefix,
		MaxAttempts: int64(maxAttempts),
		Window:      window,
	}
}

func (l *RedisAttemptLimiter) key(k string) string {
	return fmt.Sprintf("attempts:%s:%s", l.Prefix, strings.ToLower(k))
}

func (l *RedisAttemptLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	if l.MaxAttempts <= 0 {
		return false, nil
	}
	n, err := l.Client.Get(ctx, l.key(key)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read attempts: %w", err)
	}
	return n >= l.MaxAttempts, nil
}

// Fail increments the counter; the window starts at the first failure.
func (l *RedisAttemptLimiter) Fail(ctx context.Context, key string) error {
	k := l.key(key)
	n, err := l.Client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	if n > 1 {
		ttl, err := l.Client.TTL(ctx, k).Result()
		if err != nil {
			return fmt.Errorf("read attempt window: %w", err)
		}
		// a negative ttl means the expire after the first failure was lost
		if ttl >= 0 {
			return nil
		}
	}
	if err := l.Client.Expire(ctx, k, l.Window).Err(); err != nil {
		return fmt.Errorf("set attempt window: %w", err)
	}
	return nil
}

func (l *RedisAttemptLimiter) Reset(ctx context.Context, key string) error {
	if err := l.Client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}
