package redis

import (
	"context"
	"fmt"
	"time"
)

// Quota is a provider request budget per fixed window, shared by every
// process pointed at the same Redis (CLI runs, API server, scheduler).
type Quota struct {
	Name   string        // provider key, e.g. "finmind"
	Limit  int           // requests per window
	Window time.Duration // window length
}

// FinMindQuota returns the FinMind budget. 무료 토큰은 시간당 600회.
func FinMindQuota(perHour int) Quota {
	if perHour <= 0 {
		perHour = 600
	}
	return Quota{Name: "finmind", Limit: perHour, Window: time.Hour}
}

// YahooQuota keeps the ^TNX lookups polite.
var YahooQuota = Quota{Name: "yahoo", Limit: 2, Window: time.Second}

// RateLimiter enforces Quotas with one INCR counter per window bucket
// ⭐ SSOT: 외부 API 쿼터는 여기서만
type RateLimiter struct {
	client *Client
	prefix string
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// Take consumes one request from the current window. When the window is
// spent it returns how long until the next one starts.
func (r *RateLimiter) Take(ctx context.Context, q Quota) (time.Duration, error) {
	if !r.client.Enabled() || q.Limit <= 0 || q.Window <= 0 {
		return 0, nil
	}

	now := r.now()
	key := r.quotaKey(q, now)

	pipe := r.client.Redis().TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.PExpire(ctx, key, q.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("quota %s: %w", q.Name, err)
	}

	if count.Val() <= int64(q.Limit) {
		return 0, nil
	}
	return untilNextWindow(now, q.Window), nil
}

// Used returns how many requests the current window has consumed
func (r *RateLimiter) Used(ctx context.Context, q Quota) (int, error) {
	if !r.client.Enabled() || q.Window <= 0 {
		return 0, nil
	}
	n, err := r.client.Redis().Get(ctx, r.quotaKey(q, r.now())).Int()
	if err != nil {
		if IsNil(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("quota %s: %w", q.Name, err)
	}
	return n, nil
}

// Wait blocks until the quota admits one request or ctx is done
func (r *RateLimiter) Wait(ctx context.Context, q Quota) error {
	for {
		wait, err := r.Take(ctx, q)
		if err != nil {
			return err
		}
		if wait == 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *RateLimiter) quotaKey(q Quota, now time.Time) string {
	bucket := now.UnixMilli() / q.Window.Milliseconds()
	return fmt.Sprintf("%s:quota:%s:%d", r.prefix, q.Name, bucket)
}

func untilNextWindow(now time.Time, window time.Duration) time.Duration {
	w := window.Milliseconds()
	next := (now.UnixMilli()/w + 1) * w
	return time.Duration(next-now.UnixMilli()) * time.Millisecond
}
