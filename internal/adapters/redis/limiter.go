package redisad

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"placereview/internal/adapters/observability"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a fixed-window counter per key. Each window gets its own Redis
// key that expires with the window.
type Limiter struct {
	c      redis.Cmdable
	scope  string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewClient(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

func NewLimiter(c redis.Cmdable, scope string, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{c: c, scope: scope, limit: limit, window: window, now: time.Now}
}

func (l *Limiter) Limit() int { return l.limit }

// Allow counts one hit for id. Redis failures let the request through.
func (l *Limiter) Allow(ctx context.Context, id string) Decision {
	now := l.now()
	slot := now.UnixNano() / int64(l.window)
	key := fmt.Sprintf("rl:%s:%s:%d", l.scope, id, slot)
	reset := time.Unix(0, (slot+1)*int64(l.window))

	var incr *redis.IntCmd
	_, err := l.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("scope", l.scope).Msg("rate limiter unavailable; allowing request")
		return Decision{Allowed: true, Remaining: l.limit}
	}

	n := int(incr.Val())
	if n > l.limit {
		observability.ObserveRateLimited(l.scope)
		return Decision{Allowed: false, Remaining: 0, RetryAfter: reset.Sub(now)}
	}
	return Decision{Allowed: true, Remaining: l.limit - n}
}
