package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/zndr1991-lab/GanteParts/internal/application/identity"
	inventoryapp "github.com/zndr1991-lab/GanteParts/internal/application/inventory"
	notificationapp "github.com/zndr1991-lab/GanteParts/internal/application/notification"
	syncapp "github.com/zndr1991-lab/GanteParts/internal/application/sync"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/auth"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/cache"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/config"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/logger"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/mercadolibre"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/persistence"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/telemetry"
	"github.com/zndr1991-lab/GanteParts/internal/interfaces/http/handler"
	"github.com/zndr1991-lab/GanteParts/internal/interfaces/http/middleware"
	"github.com/zndr1991-lab/GanteParts/internal/interfaces/http/router"
)

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

	log.Info("Starting GanteParts backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing, a no-op provider unless telemetry.enabled is set
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database, with GORM logging bridged into zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThreshold,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Inventory snapshot cache
	cacheFactory := cache.NewInventoryCacheFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log))
	inventoryCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize inventory cache", zap.Error(err))
	}
	defer func() {
		if err := inventoryCache.Close(); err != nil {
			log.Error("Error closing inventory cache", zap.Error(err))
		}
	}()

	// MercadoLibre client
	mlConfig := mercadolibre.NewConfig(cfg.Mercadolibre.AppID, cfg.Mercadolibre.AppSecret, cfg.Mercadolibre.RedirectURI)
	if cfg.Mercadolibre.APIBaseURL != "" {
		mlConfig.APIBaseURL = cfg.Mercadolibre.APIBaseURL
	}
	if cfg.Mercadolibre.AuthURL != "" {
		mlConfig.AuthURL = cfg.Mercadolibre.AuthURL
	}
	if cfg.Mercadolibre.Timeout > 0 {
		mlConfig.Timeout = cfg.Mercadolibre.Timeout
	}
	mlClient, err := mercadolibre.NewClient(mlConfig)
	if err != nil {
		log.Fatal("Failed to initialize MercadoLibre client", zap.Error(err))
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenService := syncapp.NewTokenService(credentialRepo, mlClient)
	webhookService := syncapp.NewWebhookService(syncapp.WebhookServiceConfig{
		Credentials:    credentialRepo,
		Items:          itemRepo,
		API:            mlClient,
		Tokens:         tokenService,
		Recorder:       auditRepo,
		InventoryCache: inventoryCache,
		WebhookSecret:  cfg.Mercadolibre.WebhookSecret,
		Logger:         log,
	})
	batchService := syncapp.NewBatchActionService(syncapp.BatchActionServiceConfig{
		Items:          itemRepo,
		API:            mlClient,
		Tokens:         tokenService,
		Recorder:       auditRepo,
		InventoryCache: inventoryCache,
		Logger:         log,
	})
	oauthService := syncapp.NewOAuthService(syncapp.OAuthServiceConfig{
		Credentials: credentialRepo,
		API:         mlClient,
		Recorder:    auditRepo,
		Logger:      log,
	})
	itemService := inventoryapp.NewItemService(inventoryapp.ItemServiceConfig{
		Items:          itemRepo,
		Recorder:       auditRepo,
		InventoryCache: inventoryCache,
		DeletePassword: cfg.Inventory.DeletePassword,
		FullLoadLimit:  cfg.Inventory.FullLoadLimit,
		CacheTTL:       cfg.Cache.TTL,
		Logger:         log,
	})
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	notificationService := notificationapp.NewService(auditRepo)

	// HTTP engine and middleware stack
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	engine.Use(middleware.RateLimit(middleware.NewRateLimiter(100, time.Minute)))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	engine.Use(middleware.TracingAttributes())

	// Routes
	healthHandler := handler.NewHealthHandler(db)
	engine.GET("/health", healthHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(healthHandler)
	r.Register(handler.NewAuthHandler(authService, log))
	r.Register(handler.NewInventoryHandler(itemService, log))
	r.Register(handler.NewMarketplaceHandler(oauthService, batchService, jwtService, log))
	r.Register(handler.NewWebhookHandler(webhookService, log))
	r.Register(handler.NewNotificationHandler(notificationService, log))
	r.Setup()

	// HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
