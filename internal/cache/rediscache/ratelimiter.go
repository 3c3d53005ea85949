package rediscache

import (
	"context"
	"time"

	"github.com/BearBump/OrderTrack/internal/ratelimit"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is the fixed-window limiter shared between instances.
type RateLimiter struct {
	c      *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRateLimiter(addr string, limit int64, window time.Duration) *RateLimiter {
	return NewRateLimiterWithClient(redis.NewClient(&redis.Options{Addr: addr}), limit, window)
}

func NewRateLimiterWithClient(c *redis.Client, limit int64, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = ratelimit.DefaultMaxRequests
	}
	if window <= 0 {
		window = ratelimit.DefaultWindow
	}
	return &RateLimiter{c: c, prefix: "rl:lookup:", limit: limit, window: window}
}

// Check открывает окно через SET NX PX (TTL ставится только первым запросом),
// затем делает INCR. Отклонённые запросы тоже инкрементят счётчик, на результат это не влияет.
func (rl *RateLimiter) Check(ctx context.Context, identifier string) (ratelimit.Result, error) {
	key := rl.prefix + identifier

	pipe := rl.c.TxPipeline()
	pipe.SetNX(ctx, key, 0, rl.window)
	incr := pipe.Incr(ctx, key)
	pttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return ratelimit.Result{}, errors.Wrap(err, "redis ratelimit")
	}

	if incr.Val() <= rl.limit {
		return ratelimit.Result{Allowed: true}, nil
	}
	remaining := pttl.Val()
	if remaining <= 0 {
		remaining = rl.window
	}
	return ratelimit.Result{Allowed: false, RemainingTime: remaining}, nil
}
