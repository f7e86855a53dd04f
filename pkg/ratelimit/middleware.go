package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wanderly/internal/shared/utils/response"
	"wanderly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware applies the class of the matched route to the client IP.
// Redis failures let the request through.
func Middleware(limiter *RateLimiter) gin.HandlerFunc {
	log := logger.GetDefault()

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := clientIP(c)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		result, err := limiter.Allow(ctx, clientIP, ClassifyRoute(c.Request.Method, path))
		if err != nil {
			log.WarnContext(ctx, "rate limit check failed", "error", err, "ip", clientIP)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if result.Allowed {
			c.Next()
			return
		}

		retryAfter := result.RetryAfter(time.Now())
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		log.LogRateLimitExceeded(ctx, clientIP, path)
		response.RespondJSON(c, "error", http.StatusTooManyRequests, "Rate limit exceeded", nil, gin.H{
			"limit":       result.Limit,
			"retry_after": int(retryAfter.Seconds()),
		})
		c.Abort()
	}
}

type routeRule struct {
	class Class
	match func(method, path string) bool
}

func contains(fragments ...string) func(string, string) bool {
	return func(_, path string) bool {
		for _, f := range fragments {
			if strings.Contains(path, f) {
				return true
			}
		}
		return false
	}
}

// routeRules is evaluated in order; the first match wins
var routeRules = []routeRule{
	{ClassHealth, func(_, path string) bool {
		for _, p := range []string{"/health", "/ping", "/status", "/metrics"} {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}},
	{ClassAdmin, contains("/admin/")},
	{ClassAuth, contains("/auth/")},
	// calls that move money or take capacity
	{ClassBookingCritical, func(method, path string) bool {
		return strings.Contains(path, "/payments") ||
			(method == http.MethodPost && strings.Contains(path, "/bookings"))
	}},
	{ClassBooking, func(_, path string) bool {
		return strings.Contains(path, "/bookings") || strings.HasSuffix(path, "/availability")
	}},
	{ClassUser, contains("/cart", "/wishlist", "/vendor/")},
	{ClassPublic, contains("/experiences")},
}

// ClassifyRoute maps a route pattern (or raw path) to its budget class
func ClassifyRoute(method, path string) Class {
	for _, rule := range routeRules {
		if rule.match(method, path) {
			return rule.class
		}
	}
	return ClassDefault
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP
func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := c.GetHeader("X-Real-IP"); net.ParseIP(ip) != nil {
		return ip
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
