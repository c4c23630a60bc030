package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is an in-memory fixed-window limiter. Each key gets
// limit tokens per window; stale keys are swept in the background.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
}

type client struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter builds a limiter and starts its sweep goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, c := range rl.clients {
			if now.Sub(c.lastReset) > rl.window*2 {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// take consumes one token for key, reporting whether the request may
// proceed and how many tokens remain in the current window.
func (rl *RateLimiter) take(key string) (allowed bool, remaining int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, exists := rl.clients[key]
	if !exists || now.Sub(c.lastReset) >= rl.window {
		rl.clients[key] = &client{tokens: rl.limit - 1, lastReset: now}
		return true, rl.limit - 1
	}
	if c.tokens > 0 {
		c.tokens--
		return true, c.tokens
	}
	return false, 0
}

// Allow reports whether a request for key fits in the current window.
func (rl *RateLimiter) Allow(key string) bool {
	allowed, _ := rl.take(key)
	return allowed
}

// Remaining returns the tokens left for key without consuming one.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, exists := rl.clients[key]
	if !exists || time.Since(c.lastReset) >= rl.window {
		return rl.limit
	}
	return c.tokens
}

type limitOptions struct {
	code       string
	message    string
	headers    bool
	retryAfter bool
}

func (rl *RateLimiter) handler(keyFunc func(*gin.Context) string, opts limitOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining := rl.take(keyFunc(c))
		if !allowed {
			if opts.retryAfter {
				c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    opts.code,
					"message": opts.message,
				},
			})
			return
		}

		if opts.headers {
			c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}
		c.Next()
	}
}

// RateLimit limits by client IP, scoped per guest session when the
// request carries a guest token.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return limiter.handler(func(c *gin.Context) string {
		key := c.ClientIP()
		if guestToken := c.GetHeader(GuestTokenHeader); guestToken != "" {
			key = guestToken + ":" + key
		}
		return key
	}, limitOptions{
		code:    "RATE_LIMIT_EXCEEDED",
		message: "Too many requests. Please try again later.",
		headers: true,
	})
}

// AuthRateLimit is the tighter limiter for credential endpoints. The
// auth prefix keeps the login budget apart from any global limiter
// sharing the same client IP.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return limiter.handler(func(c *gin.Context) string {
		return "auth:" + c.ClientIP()
	}, limitOptions{
		code:       "AUTH_RATE_LIMIT_EXCEEDED",
		message:    "Too many authentication attempts. Please try again later.",
		headers:    true,
		retryAfter: true,
	})
}

// RateLimitByKey limits with a caller-supplied key extractor.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return limiter.handler(keyFunc, limitOptions{
		code:    "RATE_LIMIT_EXCEEDED",
		message: "Too many requests. Please try again later.",
	})
}
