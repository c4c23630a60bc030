package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "docs"})
	})
	return router
}

func getDocs(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection_Disabled(t *testing.T) {
	router := swaggerRouter(SwaggerConfig{Enabled: false}, nil)

	w := getDocs(router, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestSwaggerProtection_OpenAccess(t *testing.T) {
	router := swaggerRouter(SwaggerConfig{Enabled: true}, nil)

	assert.Equal(t, http.StatusOK, getDocs(router, "").Code)
}

func TestSwaggerProtection_IPWhitelist(t *testing.T) {
	router := swaggerRouter(SwaggerConfig{
		Enabled:    true,
		AllowedIPs: []string{"127.0.0.1", "10.0.0.0/8"},
	}, nil)

	assert.Equal(t, http.StatusOK, getDocs(router, "127.0.0.1:51000").Code)
	assert.Equal(t, http.StatusOK, getDocs(router, "10.50.100.200:51000").Code)

	w := getDocs(router, "192.168.1.1:51000")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestSwaggerProtection_RequireAuth(t *testing.T) {
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	allow := func(c *gin.Context) {
		c.Set("user_id", "admin-1")
		c.Next()
	}

	cfg := SwaggerConfig{Enabled: true, RequireAuth: true}
	assert.Equal(t, http.StatusUnauthorized, getDocs(swaggerRouter(cfg, deny), "").Code)
	assert.Equal(t, http.StatusOK, getDocs(swaggerRouter(cfg, allow), "").Code)
}

func TestSwaggerProtection_IPCheckRunsBeforeAuth(t *testing.T) {
	authCalled := false
	jwt := func(c *gin.Context) {
		authCalled = true
		c.Next()
	}

	router := swaggerRouter(SwaggerConfig{
		Enabled:     true,
		RequireAuth: true,
		AllowedIPs:  []string{"127.0.0.1"},
	}, jwt)

	assert.Equal(t, http.StatusForbidden, getDocs(router, "192.168.1.1:51000").Code)
	assert.False(t, authCalled)

	assert.Equal(t, http.StatusOK, getDocs(router, "127.0.0.1:51000").Code)
	assert.True(t, authCalled)
}

func TestParseIPWhitelist(t *testing.T) {
	w := parseIPWhitelist([]string{"192.168.1.1", "::1", "10.0.0.0/8", "bogus", "999.0.0.0/4"})

	tests := []struct {
		ip   string
		want bool
	}{
		{"192.168.1.1", true},
		{"192.168.1.2", false},
		{"::1", true},
		{"10.200.3.4", true},
		{"11.0.0.1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.contains(net.ParseIP(tt.ip)), "ip %s", tt.ip)
	}

	assert.False(t, w.contains(nil))
}
