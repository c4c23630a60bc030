// Package middleware provides HTTP middleware for the storefront API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLen caps request IDs taken from client headers.
const maxRequestIDLen = 128

// TracingConfig controls the request tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns the tracing configuration used by the server.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "cartly-backend",
		Enabled:     true,
	}
}

// Tracing returns request tracing middleware with the default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin so every request gets a server span named
// after the route pattern, then annotates the span with the request identity
// known at this point in the chain.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	otelMiddleware := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		otelMiddleware(c)
		annotateRequestSpan(c)
	}
}

// TracingAttributeInjector re-annotates the server span after the auth and
// guest token middlewares have run, so user_id and guest_token make it onto
// spans even though tracing starts earlier in the chain.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		annotateRequestSpan(c)
		c.Next()
	}
}

// SpanErrorMarker marks the request span as failed for 4xx and 5xx responses.
// It must sit after the tracing middleware.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		status := c.Writer.Status()
		if !span.IsRecording() || status < http.StatusBadRequest {
			return
		}

		span.SetStatus(codes.Error, statusErrorMessage(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

func statusErrorMessage(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusUnauthorized:
		return "Unauthorized"
	case status == http.StatusForbidden:
		return "Forbidden"
	case status == http.StatusNotFound:
		return "Not Found"
	default:
		return "Client Error"
	}
}

func annotateRequestSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}

	if id := requestIDAttr(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if userID := c.GetString(JWTUserIDKey); userID != "" {
		span.SetAttributes(attribute.String("user_id", userID))
	}
	if guestToken := GetGuestToken(c); guestToken != "" {
		span.SetAttributes(attribute.String("guest_token", guestToken))
	}
}

// requestIDAttr prefers the ID assigned by the RequestID middleware and only
// falls back to the raw client header, truncated to a sane length.
func requestIDAttr(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	id := c.GetHeader("X-Request-ID")
	if len(id) > maxRequestIDLen {
		id = id[:maxRequestIDLen]
	}
	return id
}
