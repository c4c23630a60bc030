package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SwaggerConfig gates access to the API documentation endpoint.
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string // single IPs or CIDR ranges; empty allows all
}

// SwaggerProtection guards the docs routes: 404 when disabled, then an
// optional IP whitelist, then optional JWT auth. The checks stack, so
// a locked-down deployment can require both.
func SwaggerProtection(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) gin.HandlerFunc {
	whitelist := parseIPWhitelist(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "API documentation is not available",
			})
			return
		}

		if len(cfg.AllowedIPs) > 0 && !whitelist.contains(clientIP(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Access to API documentation is restricted",
			})
			return
		}

		if cfg.RequireAuth && jwtMiddleware != nil {
			jwtMiddleware(c)
			if c.IsAborted() {
				return
			}
		}

		c.Next()
	}
}

type ipWhitelist struct {
	ips  []net.IP
	nets []*net.IPNet
}

// parseIPWhitelist parses entries once at setup; malformed entries are
// dropped rather than failing the middleware.
func parseIPWhitelist(entries []string) ipWhitelist {
	var w ipWhitelist
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				w.nets = append(w.nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			w.ips = append(w.ips, ip)
		}
	}
	return w
}

func (w ipWhitelist) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range w.ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range w.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP resolves the caller's IP, falling back to RemoteAddr when
// gin's trusted-proxy resolution yields nothing parseable.
func clientIP(c *gin.Context) net.IP {
	if ip := net.ParseIP(c.ClientIP()); ip != nil {
		return ip
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}
