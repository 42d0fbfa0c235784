package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
	
	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// AttemptLimiter đếm số lần thất bại theo identifier trong một cửa sổ thời gian
type AttemptLimiter struct {
	redis       *redis.Client // Kết nối đến Redis để lưu bộ đếm
	prefix      string        // Prefix để phân biệt các loại bộ đếm
	maxAttempts int64
	window      time.Duration
}

// Option là function type để cấu hình AttemptLimiter
type Option func(*AttemptLimiter)

// NewAttemptLimiter tạo một instance mới của AttemptLimiter
func NewAttemptLimiter(redis *redis.Client, opts ...Option) *AttemptLimiter {
	l := &AttemptLimiter{
		redis:       redis,
		prefix:      "ratelimit",
		maxAttempts: defaultMaxAttempts,
		window:      defaultWindow,
	}
	
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithPrefix cấu hình prefix cho các key trong Redis
func WithPrefix(prefix string) Option {
	return func(l *AttemptLimiter) {
		l.prefix = prefix // Ví dụ: "ratelimit:ws_auth"
	}
}

// WithLimit sets how many failures are tolerated within window.
func WithLimit(maxAttempts int64, window time.Duration) Option {
	return func(l *AttemptLimiter) {
		if maxAttempts > 0 {
			l.maxAttempts = maxAttempts
		}
		if window > 0 {
			l.window = window
		}
	}
}

func (l *AttemptLimiter) key(identifier string) string {
	return fmt.Sprintf("%s:%s", l.prefix, identifier)
}

// Allow reports whether identifier may attempt again.
func (l *AttemptLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	failures, err := l.redis.Get(ctx, l.key(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read attempt counter: %w", err)
	}
	
	return failures < l.maxAttempts, nil
}

// RecordFailure counts one failed attempt. The window starts at the first failure.
func (l *AttemptLimiter) RecordFailure(ctx context.Context, identifier string) error {
	key := l.key(identifier)
	
	failures, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increase attempt counter: %w", err)
	}
	
	if failures == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set attempt counter expiry: %w", err)
		}
	}
	
	return nil
}

// Reset clears the failures of identifier, e.g. after a successful attempt.
func (l *AttemptLimiter) Reset(ctx context.Context, identifier string) error {
	return l.redis.Del(ctx, l.key(identifier)).Err()
}
