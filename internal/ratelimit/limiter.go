// Package ratelimit provides a Redis-backed fixed-window limiter used on
// the OTP resend endpoints, where the in-memory per-instance limiter is
// not strict enough.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	rdb    *redis.Client
	prefix string
}

func NewLimiter(rdb *redis.Client, prefix string) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix}
}

// Allow increments the window counter for key and reports whether the
// request fits under max. The first hit in a window sets the expiry.
func (l *Limiter) Allow(ctx context.Context, key string, max int64, window time.Duration) (bool, error) {
	full := l.prefix + ":" + key
	count, err := l.rdb.Incr(ctx, full).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr failed: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, full, window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire failed: %w", err)
		}
	}
	return count <= max, nil
}

// Middleware limits by client IP. Redis failures fail open: a broken
// limiter must not take down login.
func (l *Limiter) Middleware(max int64, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP() + ":" + c.Path()
		ok, err := l.Allow(c.Context(), key, max, window)
		if err != nil {
			return c.Next()
		}
		if !ok {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   true,
				"message": "Too many requests, slow down",
			})
		}
		return c.Next()
	}
}
