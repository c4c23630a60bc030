package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cartly/backend/internal/infrastructure/logger"
)

// Guest token extraction
const (
	// GuestTokenHeader carries the anonymous cart identity. The token
	// is an opaque value minted by the frontend; the backend only ever
	// uses it as a lookup key.
	GuestTokenHeader = "X-Guest-Token"

	// GuestTokenKey is the gin context key for the extracted token
	GuestTokenKey = "guest_token"

	maxGuestTokenLength = 128
)

// GuestToken extracts the guest cart token from the request header and
// stores it in the context. A token longer than the column limit is
// rejected outright instead of being truncated into someone else's key.
func GuestToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(GuestTokenHeader)
		if token == "" {
			c.Next()
			return
		}

		if len(token) > maxGuestTokenLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Guest token is too long",
				},
			})
			return
		}

		c.Set(GuestTokenKey, token)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithGuestToken(ctx, log, token)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetGuestToken retrieves the guest token from gin.Context, or empty
func GetGuestToken(c *gin.Context) string {
	if token, exists := c.Get(GuestTokenKey); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}
