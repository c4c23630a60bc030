package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/cartly/backend/internal/application/cart"
	catalogapp "github.com/cartly/backend/internal/application/catalog"
	identityapp "github.com/cartly/backend/internal/application/identity"
	orderapp "github.com/cartly/backend/internal/application/order"
	domainorder "github.com/cartly/backend/internal/domain/order"
	"github.com/cartly/backend/internal/infrastructure/auth"
	"github.com/cartly/backend/internal/infrastructure/cache"
	"github.com/cartly/backend/internal/infrastructure/config"
	"github.com/cartly/backend/internal/infrastructure/logger"
	"github.com/cartly/backend/internal/infrastructure/payment"
	"github.com/cartly/backend/internal/infrastructure/persistence"
	"github.com/cartly/backend/internal/infrastructure/scheduler"
	"github.com/cartly/backend/internal/infrastructure/storage"
	"github.com/cartly/backend/internal/infrastructure/telemetry"
	"github.com/cartly/backend/internal/interfaces/http/handler"
	"github.com/cartly/backend/internal/interfaces/http/middleware"
	"github.com/cartly/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/cartly/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Cartly Storefront API
//	@version		1.0
//	@description	E-commerce storefront backend: catalog, carts, checkout and orders

//	@contact.name	API Support
//	@contact.url	https://github.com/cartly/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Cartly Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection, routing gorm logs through zap
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize telemetry providers (no-op when disabled)
	telemetryCtx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(telemetryCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(telemetryCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Log export rides the same collector; the bridge tees zap output
	// into OTLP alongside the console core
	loggerProvider, err := telemetry.NewLoggerProvider(telemetryCtx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize log export", zap.Error(err))
	} else if loggerProvider.IsEnabled() {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down logger provider", zap.Error(err))
			}
		}()
		log = telemetry.AttachZapBridge(log, loggerProvider, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	}

	// Continuous profiling; span profiles link traces to flame graphs
	// when both tracing and profiling are up
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Failed to start continuous profiling", zap.Error(err))
	} else if profiler.IsEnabled() {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
		if tracerProvider.IsEnabled() {
			if err := tracerProvider.EnableSpanProfiles(); err != nil {
				log.Warn("Failed to enable span profiles", zap.Error(err))
			}
		}
	}

	// Business metrics (cart merges, orders placed, payment outcomes)
	var businessMetrics *telemetry.BusinessMetrics
	if cfg.Telemetry.Enabled {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:         meterProvider.Meter(cfg.Telemetry.ServiceName),
			Logger:        log,
			StoreProvider: telemetry.NewGormStoreMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
			businessMetrics = nil
		} else {
			businessMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute)
			defer businessMetrics.Stop()
		}

		// Database spans and query metrics ride on the same providers
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register DB tracing plugin", zap.Error(err))
		}
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName), telemetry.DefaultDBMetricsConfig(), log)
		if err != nil {
			log.Warn("Failed to initialize DB metrics", zap.Error(err))
		} else if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
			log.Warn("Failed to register DB metrics plugin", zap.Error(err))
		} else {
			if sqlDB, err := db.DB.DB(); err == nil {
				dbMetrics.SetSQLDB(sqlDB)
				dbMetrics.StartPoolStatsCollection(context.Background())
				defer dbMetrics.Stop()
			}
		}
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	checkoutRepo := persistence.NewGormCheckoutRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Token issuing and revocation
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
		log.Info("Redis token blacklist connected",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	}

	// Object storage for product images
	var objectStorage catalogapp.ObjectStorageService
	switch cfg.Storage.Provider {
	case "s3":
		objectStorage, err = storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		log.Info("S3 object storage initialized",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	default:
		objectStorage, err = storage.NewLocalObjectStorage(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local storage", zap.Error(err))
		}
		log.Info("Local object storage initialized", zap.String("dir", cfg.Storage.LocalDir))
	}

	// Payment gateway
	var gateway domainorder.PaymentGateway
	switch cfg.Payment.Provider {
	case "paypal":
		gateway, err = payment.NewPayPalAdapter(payment.NewPayPalConfig(cfg.Payment))
		if err != nil {
			log.Fatal("Failed to initialize PayPal gateway", zap.Error(err))
		}
		log.Info("PayPal payment gateway initialized", zap.Bool("sandbox", cfg.Payment.Sandbox))
	default:
		gateway = payment.NewNoopGateway()
		log.Warn("No payment provider configured, using noop gateway (accepts everything)")
	}

	// Initialize application services
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, log)
	productService := catalogapp.NewProductService(productRepo, log)
	reviewService := catalogapp.NewReviewService(productRepo, orderRepo, userRepo, log)
	imageService := catalogapp.NewImageService(objectStorage, log)
	imageService.SetConfig(catalogapp.ImageServiceConfig{
		MaxUploadSize:     cfg.Storage.MaxUploadSize,
		KeyPrefix:         "products",
		DownloadURLExpiry: cfg.Storage.PresignExpiration,
	})
	cartService := cartapp.NewService(cartRepo, productRepo)
	checkoutService := orderapp.NewCheckoutService(checkoutRepo, orderRepo, cartRepo, gateway, log)
	orderService := orderapp.NewOrderService(orderRepo, log)
	if businessMetrics != nil {
		cartService = cartService.WithMetrics(businessMetrics)
		checkoutService = checkoutService.WithMetrics(businessMetrics)
	}

	// Replay protection for checkout submissions
	var idempotencyStore cache.IdempotencyStore
	if redisIdem, err := cache.NewRedisIdempotencyStore(cfg.Redis); err != nil {
		log.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	} else {
		idempotencyStore = redisIdem
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Abandoned guest cart cleanup
	cartJanitor := scheduler.NewCartJanitor(db.DB, scheduler.DefaultCartJanitorConfig(), log)
	if err := cartJanitor.Start(context.Background()); err != nil {
		log.Fatal("Failed to start cart janitor", zap.Error(err))
	}
	defer func() {
		if err := cartJanitor.Stop(context.Background()); err != nil {
			log.Error("Error stopping cart janitor", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService, reviewService)
	cartHandler := handler.NewCartHandler(cartService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	orderHandler := handler.NewOrderHandler(orderService)
	uploadHandler := handler.NewUploadHandler(imageService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Tracing/Metrics - Telemetry (if enabled)
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter(cfg.Telemetry.ServiceName), true))
		engine.Use(middleware.Profiling())
	}

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		swaggerGuard := middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, middleware.JWTAuthMiddleware(jwtService))
		engine.GET("/swagger/*any", swaggerGuard, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// The guest token header is read everywhere a cart can be touched;
	// span attributes depend on it, so it runs API-wide
	r.Use(middleware.GuestToken())
	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingAttributeInjector())
		r.Use(middleware.ProfilingAttributeInjector())
	}

	// requireAuth rejects requests without a valid, unrevoked token.
	// Public routes never see it; protected routes chain it per group
	// or per route.
	requireAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	// optionalAuth extracts identity when present; cart routes serve
	// both guests and authenticated shoppers
	optionalAuth := middleware.OptionalJWTAuthMiddleware(jwtService)

	// Identity: registration and token lifecycle. Credential endpoints
	// get their own, much tighter limiter keyed by IP.
	authLimiter := middleware.AuthRateLimit(middleware.NewRateLimiter(10, time.Minute))
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", authLimiter, authHandler.Register)
	authRoutes.POST("/login", authLimiter, authHandler.Login)
	authRoutes.POST("/refresh", authLimiter, authHandler.RefreshToken)
	authRoutes.POST("/logout", requireAuth, authHandler.Logout)
	authRoutes.GET("/me", requireAuth, authHandler.Me)
	authRoutes.PUT("/password", requireAuth, authHandler.ChangePassword)

	// Account self-service
	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.PUT("/profile", requireAuth, userHandler.UpdateProfile)

	// Catalog: public storefront queries
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/best-seller", productHandler.BestSeller)
	catalogRoutes.GET("/products/new-arrivals", productHandler.NewArrivals)
	catalogRoutes.GET("/products/:id", optionalAuth, productHandler.GetByID)
	catalogRoutes.GET("/products/:id/similar", productHandler.Similar)
	catalogRoutes.POST("/products/:id/reviews", requireAuth, productHandler.AddReview)

	// Cart: shared by guests and authenticated shoppers
	cartRoutes := router.NewDomainGroup("cart", "/cart")
	cartRoutes.Use(optionalAuth)
	cartRoutes.GET("", cartHandler.Get)
	cartRoutes.DELETE("", cartHandler.Clear)
	cartRoutes.POST("/items", cartHandler.AddItem)
	cartRoutes.PUT("/items", cartHandler.UpdateItem)
	cartRoutes.DELETE("/items", cartHandler.RemoveItem)
	cartRoutes.POST("/merge", requireAuth, cartHandler.Merge)

	// Checkout: authenticated shoppers only
	checkoutRoutes := router.NewDomainGroup("checkout", "/checkout")
	checkoutRoutes.Use(requireAuth)
	checkoutRoutes.POST("", middleware.Idempotency(idempotencyStore), checkoutHandler.Create)
	checkoutRoutes.GET("/:id", checkoutHandler.GetByID)
	checkoutRoutes.PUT("/:id/pay", checkoutHandler.Pay)
	checkoutRoutes.POST("/:id/finalize", checkoutHandler.Finalize)

	// Orders: own order history
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.Use(requireAuth)
	orderRoutes.GET("/my-orders", orderHandler.MyOrders)
	orderRoutes.GET("/:id", orderHandler.GetByID)

	// Admin: catalog management, user management, order management
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(requireAuth, middleware.RequireAdmin())
	adminRoutes.GET("/users", userHandler.List)
	adminRoutes.GET("/users/:id", userHandler.GetByID)
	adminRoutes.PUT("/users/:id/role", userHandler.SetRole)
	adminRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	adminRoutes.DELETE("/users/:id", userHandler.Delete)
	adminRoutes.GET("/products", productHandler.AdminList)
	adminRoutes.POST("/products", productHandler.Create)
	adminRoutes.PUT("/products/:id", productHandler.Update)
	adminRoutes.DELETE("/products/:id", productHandler.Delete)
	adminRoutes.GET("/orders", orderHandler.List)
	adminRoutes.GET("/orders/:id", orderHandler.GetByID)
	adminRoutes.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	adminRoutes.DELETE("/orders/:id", orderHandler.Delete)
	adminRoutes.POST("/uploads", uploadHandler.Upload)
	adminRoutes.DELETE("/uploads", uploadHandler.Delete)
	adminRoutes.GET("/uploads/url", uploadHandler.DownloadURL)

	// System
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(authRoutes).
		Register(userRoutes).
		Register(catalogRoutes).
		Register(cartRoutes).
		Register(checkoutRoutes).
		Register(orderRoutes).
		Register(adminRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
