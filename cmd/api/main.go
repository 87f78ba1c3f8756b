package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/voicelane/voicelane/config"
	"github.com/voicelane/voicelane/pkg/ai/llm"
	"github.com/voicelane/voicelane/pkg/analysis"
	"github.com/voicelane/voicelane/pkg/api/handlers"
	"github.com/voicelane/voicelane/pkg/cache"
	"github.com/voicelane/voicelane/pkg/calls"
	"github.com/voicelane/voicelane/pkg/credentials"
	"github.com/voicelane/voicelane/pkg/database"
	"github.com/voicelane/voicelane/pkg/export"
	"github.com/voicelane/voicelane/pkg/jobs"
	"github.com/voicelane/voicelane/pkg/leads"
	"github.com/voicelane/voicelane/pkg/logger"
	"github.com/voicelane/voicelane/pkg/metrics"
	custommiddleware "github.com/voicelane/voicelane/pkg/middleware"
	"github.com/voicelane/voicelane/pkg/store"
	"github.com/voicelane/voicelane/pkg/voice"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	log.Info("configuration loaded", "environment", cfg.APIEnvironment)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Warn("failed to initialize sentry", "error", err)
		} else {
			log.Info("sentry initialized", "environment", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Info("sentry disabled (no dsn configured)")
	}

	// Database
	db, err := database.NewClient(cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		cancelMigrate()
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	cancelMigrate()

	// Redis credential cache. Optional: the credentials service falls back
	// to the database when no cache is available.
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, credential caching disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Stores and services
	callStore := store.NewCallStore(db.DB)
	leadStore := store.NewLeadStore(db.DB)
	settingsStore := store.NewSettingsStore(db.DB)

	prometheusMetrics := metrics.New()

	credentialService := credentials.NewService(settingsStore, redisClient, prometheusMetrics, log)

	openaiClient := llm.NewOpenAIClient(llm.Config{
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.OpenAIModel,
		Temperature:    float32(cfg.OpenAITemperature),
		MaxTokens:      cfg.OpenAIMaxTokens,
		RequestTimeout: cfg.OpenAIRequestTimeout,
	}, log)

	analysisService := analysis.NewService(callStore, leadStore, credentialService, openaiClient, prometheusMetrics, log)

	providers := map[string]voice.Provider{
		voice.ProviderVapi:   voice.NewVapiProvider(cfg.VapiBaseURL, cfg.VapiAPIKey),
		voice.ProviderRetell: voice.NewRetellProvider(cfg.RetellBaseURL, cfg.RetellAPIKey),
	}

	callService := calls.NewService(callStore, providers, analysisService, log)
	leadService := leads.NewService(leadStore)
	exportService := export.NewService(callStore, cfg.ExportStoragePath)

	// Background jobs
	cronManager := jobs.NewCronManager(callStore, analysisService, callService, log)
	if err := cronManager.SetupJobs(); err != nil {
		log.Error("failed to set up cron jobs", "error", err)
		os.Exit(1)
	}
	cronManager.Start()
	defer cronManager.Stop()

	// Echo
	e := echo.New()
	e.HideBanner = true

	rateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	e.Use(middleware.Recover())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true, // let the Recover middleware handle the panic
		}))
	}
	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(rateLimiter.Middleware())

	// Health and metrics (public)
	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.DB.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(analysisService)
	callHandler := handlers.NewCallHandler(callService, prometheusMetrics)
	leadHandler := handlers.NewLeadHandler(leadService)
	settingsHandler := handlers.NewSettingsHandler(credentialService)
	exportHandler := handlers.NewExportHandler(exportService, prometheusMetrics)

	v1 := e.Group("/api/v1")

	v1.POST("/calls", callHandler.Initiate)
	v1.GET("/calls", callHandler.List)
	v1.GET("/calls/stats", callHandler.Stats)
	v1.POST("/calls/analyze", analyzeHandler.Analyze)
	v1.GET("/calls/:id", callHandler.Get)
	v1.POST("/calls/:id/reanalyze", analyzeHandler.Reanalyze)
	v1.POST("/calls/webhook/:provider", callHandler.Webhook)

	v1.POST("/leads", leadHandler.Create)
	v1.GET("/leads", leadHandler.List)
	v1.GET("/leads/:id", leadHandler.Get)
	v1.PATCH("/leads/:id/status", leadHandler.UpdateStatus)
	v1.GET("/leads/:id/calls", callHandler.ListByLead)

	v1.PUT("/settings/:userId/openai-key", settingsHandler.SaveOpenAIKey)
	v1.GET("/settings/:userId/openai-key", settingsHandler.GetOpenAIKey)

	v1.POST("/exports", exportHandler.Create)
	v1.GET("/exports/:filename", exportHandler.Download)

	// Start server with graceful shutdown
	go func() {
		addr := cfg.APIHost + ":" + cfg.APIPort
		log.Info("starting api server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
