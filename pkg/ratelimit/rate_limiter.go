package ratelimit

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"wanderly/internal/shared/config"

	"github.com/redis/go-redis/v9"
)

// Class groups routes that share a request budget
type Class string

const (
	ClassDefault         Class = "default"
	ClassPublic          Class = "public"
	ClassAuth            Class = "auth"
	ClassBooking         Class = "booking"
	ClassBookingCritical Class = "booking_critical"
	ClassAdmin           Class = "admin"
	ClassUser            Class = "user"
	ClassHealth          Class = "health"
)

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the oldest counted request leaves the window
	ResetAt time.Time
}

// RetryAfter is how long a denied client should wait, rounded up to a second
func (r *Result) RetryAfter(now time.Time) time.Duration {
	wait := r.ResetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	return wait.Truncate(time.Second) + time.Second
}

// RateLimiter keeps one sorted set of request timestamps per (client, class)
type RateLimiter struct {
	scripter  redis.Scripter
	enabled   bool
	window    time.Duration
	limits    map[Class]int
	whitelist []string
	now       func() time.Time
}

func NewRateLimiter(scripter redis.Scripter, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		scripter:  scripter,
		enabled:   cfg.Enabled,
		window:    cfg.WindowDuration,
		whitelist: cfg.WhitelistedIPs,
		now:       time.Now,
		limits: map[Class]int{
			ClassDefault:         cfg.DefaultRequests,
			ClassPublic:          cfg.PublicRequests,
			ClassAuth:            cfg.AuthRequests,
			ClassBooking:         cfg.BookingRequests,
			ClassBookingCritical: cfg.BookingCriticalRequests,
			ClassAdmin:           cfg.AdminRequests,
			ClassUser:            cfg.UserRequests,
			ClassHealth:          cfg.HealthRequests,
		},
	}
}

// Trims entries older than the window and admits only while under the limit.
// Returns {allowed, count, oldest score in the window}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current = redis.call('ZCARD', key)
	local allowed = 0
	if current < limit then
		redis.call('ZADD', key, now, ARGV[5])
		current = current + 1
		allowed = 1
	end
	redis.call('PEXPIRE', key, window_ms)

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local oldest_ms = now
	if oldest[2] then
		oldest_ms = tonumber(oldest[2])
	end
	return {allowed, current, oldest_ms}
`)

// Allow counts one request from clientIP against the budget of class
func (r *RateLimiter) Allow(ctx context.Context, clientIP string, class Class) (*Result, error) {
	limit := r.Limit(class)
	now := r.now()

	if !r.enabled || slices.Contains(r.whitelist, clientIP) {
		return &Result{Allowed: true, Limit: limit, Remaining: limit, ResetAt: now.Add(r.window)}, nil
	}

	key := "wanderly:ratelimit:" + clientIP + ":" + string(class)
	res, err := slidingWindow.Run(ctx, r.scripter, []string{key},
		now.Add(-r.window).UnixMilli(),
		now.UnixMilli(),
		limit,
		r.window.Milliseconds(),
		strconv.FormatInt(now.UnixNano(), 10),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	return &Result{
		Allowed:   res[0] == 1,
		Limit:     limit,
		Remaining: max(limit-int(res[1]), 0),
		ResetAt:   time.UnixMilli(res[2]).Add(r.window),
	}, nil
}

// Limit returns the per-window budget of class; unknown classes get the default
func (r *RateLimiter) Limit(class Class) int {
	if n, ok := r.limits[class]; ok {
		return n
	}
	return r.limits[ClassDefault]
}
