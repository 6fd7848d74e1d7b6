package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed logins per account key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// RedisLoginLimiter keeps a failure counter per email that expires after the
// lockout window, measured from the first failure.
type RedisLoginLimiter struct {
	client      redis.Cmdable
	maxAttempts int
	window      time.Duration
}

// NewRedisLoginLimiter builds a limiter. maxAttempts <= 0 disables limiting.
func NewRedisLoginLimiter(client redis.Cmdable, maxAttempts int, window time.Duration) *RedisLoginLimiter {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

func (l *RedisLoginLimiter) key(email string) string {
	return "login:failures:" + strings.ToLower(strings.TrimSpace(email))
}

// Allow reports whether another attempt is permitted for email.
func (l *RedisLoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	if l.maxAttempts <= 0 || l.client == nil {
		return true, nil
	}
	count, err := l.client.Get(ctx, l.key(email)).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return count < l.maxAttempts, nil
}

// RecordFailure increments the failure counter for email.
func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, email string) error {
	if l.maxAttempts <= 0 || l.client == nil {
		return nil
	}
	key := l.key(email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return l.client.Expire(ctx, key, l.window).Err()
	}
	return nil
}

// Reset clears the failure counter for email.
func (l *RedisLoginLimiter) Reset(ctx context.Context, email string) error {
	if l.maxAttempts <= 0 || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, l.key(email)).Err()
}

// NoopLoginLimiter never limits.
type NoopLoginLimiter struct{}

func (NoopLoginLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (NoopLoginLimiter) RecordFailure(context.Context, string) error { return nil }
func (NoopLoginLimiter) Reset(context.Context, string) error         { return nil }
