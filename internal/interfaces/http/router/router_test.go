package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func echo(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func TestNewRouter_Defaults(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	carts := NewDomainGroup("carts", "/carts")
	carts.GET("", echo("carts"))
	r.Register(carts).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/carts").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/carts").Code)
}

func TestRouter_UseCoversAllGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Use(func(c *gin.Context) {
		c.Header("X-Api-Scope", "storefront")
		c.Next()
	})

	carts := NewDomainGroup("carts", "/carts")
	carts.GET("", echo("carts"))
	orders := NewDomainGroup("orders", "/orders")
	orders.GET("", echo("orders"))

	r.Register(carts).Register(orders).Setup()

	for _, path := range []string{"/api/v1/carts", "/api/v1/orders"} {
		w := serve(engine, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "storefront", w.Header().Get("X-Api-Scope"))
	}
}

func TestDomainGroup_Methods(t *testing.T) {
	tests := []struct {
		method string
		bind   func(*DomainGroup, string, ...gin.HandlerFunc) *DomainGroup
	}{
		{http.MethodGet, (*DomainGroup).GET},
		{http.MethodPost, (*DomainGroup).POST},
		{http.MethodPut, (*DomainGroup).PUT},
		{http.MethodPatch, (*DomainGroup).PATCH},
		{http.MethodDelete, (*DomainGroup).DELETE},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			engine := gin.New()
			g := NewDomainGroup("products", "/products")
			tt.bind(g, "/:id", echo("ok"))

			g.RegisterRoutes(engine.Group("/api/v1"))

			assert.Equal(t, http.StatusOK, serve(engine, tt.method, "/api/v1/products/42").Code)
		})
	}
}

func TestDomainGroup_Middleware(t *testing.T) {
	engine := gin.New()

	g := NewDomainGroup("admin", "/admin")
	g.Use(func(c *gin.Context) {
		c.Header("X-Admin", "guarded")
		c.Next()
	})
	g.GET("/products", echo("ok"))

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/admin/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guarded", w.Header().Get("X-Admin"))
}

func TestDomainGroup_Subgroups(t *testing.T) {
	engine := gin.New()

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.Group("products", "/products").GET("", echo("products"))
	catalog.Group("categories", "/categories").GET("", echo("categories"))

	catalog.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/catalog/products")
	assert.Equal(t, "products", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/catalog/categories")
	assert.Equal(t, "categories", w.Body.String())
}

func TestDomainGroup_SubgroupInheritsMiddleware(t *testing.T) {
	engine := gin.New()

	carts := NewDomainGroup("carts", "/carts")
	carts.Use(func(c *gin.Context) {
		c.Header("X-Cart-Scope", "yes")
		c.Next()
	})
	carts.Group("items", "/items").GET("", echo("items"))

	carts.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/carts/items")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "yes", w.Header().Get("X-Cart-Scope"))
}

func TestDomainGroup_Chaining(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("checkout", "/checkout")
	g.POST("", echo("placed")).
		GET("/:id", echo("status")).
		PUT("/:id/pay", echo("paid"))

	r.Register(g).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/v1/checkout").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/checkout/7").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPut, "/api/v1/checkout/7/pay").Code)
	assert.Equal(t, "checkout", g.Name())
}
