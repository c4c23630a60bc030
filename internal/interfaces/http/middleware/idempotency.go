package middleware

import (
	"net/http"
	"time"

	"github.com/cartly/backend/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader carries the client-chosen key that makes a
// mutating request safe to retry
const IdempotencyKeyHeader = "Idempotency-Key"

// DefaultIdempotencyTTL is how long a processed key blocks replays
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Store cache.IdempotencyStore
	TTL   time.Duration
}

// Idempotency rejects replays of requests carrying an Idempotency-Key
// header already seen within the TTL. Requests without the header pass
// through untouched. The key is scoped to method and path so the same
// key can be reused across different endpoints.
func Idempotency(store cache.IdempotencyStore) gin.HandlerFunc {
	return IdempotencyWithConfig(IdempotencyConfig{Store: store, TTL: DefaultIdempotencyTTL})
}

// IdempotencyWithConfig returns an idempotency middleware with custom configuration
func IdempotencyWithConfig(cfg IdempotencyConfig) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		scopedKey := c.Request.Method + ":" + c.FullPath() + ":" + key
		marked, err := cfg.Store.MarkProcessed(c.Request.Context(), scopedKey, ttl)
		if err != nil {
			// Store failure must not block the request
			c.Next()
			return
		}

		if !marked {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DUPLICATE_REQUEST",
					"message": "A request with this idempotency key was already processed.",
				},
			})
			return
		}

		c.Next()
	}
}
