package app

import (
	"context"
	"fxconvert/internal/adapters"
	"fxconvert/internal/adapters/cache"
	"fxconvert/internal/adapters/httpclient"
	"fxconvert/internal/adapters/postgres"
	"fxconvert/internal/api"
	"fxconvert/internal/config"
	"fxconvert/internal/metrics"
	"fxconvert/internal/platform/db"
	httpserver "fxconvert/internal/platform/http"
	"fxconvert/internal/rate"
	"fxconvert/internal/rate/handler"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and scheduler
func Run() error {
	appCfg, err := config.Init(config.DefaultConfigFile)
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	cfgLevel := appCfg.Logging.Level
	if parsedLvl, parseErr := logrus.ParseLevel(cfgLevel); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, seeding the cache)
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	// Conversion journal (optional)
	var journal adapters.ConversionJournal
	if appCfg.DbServer.Enabled() {
		pool, poolErr := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
		if poolErr != nil {
			logrus.WithError(poolErr).Error("Error connecting to db")
			return poolErr
		}
		defer pool.Close()
		logrus.Info("✅ Postgres connection successful")

		if migrateErr := db.Migrate(startupCtx, pool); migrateErr != nil {
			logrus.WithError(migrateErr).Error("Failed to apply migrations")
			return migrateErr
		}
		journal = postgres.NewConversionRepository(pool)
		logrus.Info("✅ Conversion journal enabled")
	}

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 3 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	// External clients
	rateClient := httpclient.NewCurrencyAPIClient(
		baseHTTPClient,
		strings.TrimSuffix(appCfg.RatesAPI.BaseURL, "/"),
		appCfg.RatesAPI.APIVersion,
	)

	// Snapshot cache, seeded with the latest rates
	limiter := rate.NewLimiter(
		time.Duration(appCfg.RateLimit.MinIntervalSeconds*float64(time.Second)),
		rate.LimitMode(appCfg.RateLimit.Mode),
	)
	snapshots := rate.NewSnapshotCache(rateClient, limiter, appMetrics, appCfg.Cache.MaxSize)
	if seedErr := snapshots.Seed(startupCtx); seedErr != nil {
		logrus.WithError(seedErr).Error("Failed to load latest rates")
		return seedErr
	}
	logrus.WithFields(logrus.Fields{"dates": snapshots.Dates(), "limit_mode": limiter.Mode()}).Info("✅ Latest rates loaded")

	codesCache, err := cache.NewCodesCache(appCfg.Cache.CodesMaxItems)
	if err != nil {
		return err
	}
	defer codesCache.Close()

	// Services
	rateService := rate.NewService(snapshots, codesCache, journal, appMetrics)
	scheduler := rate.NewScheduler(snapshots, time.Duration(appCfg.Scheduler.RefreshIntervalSec)*time.Second)
	// Ensure scheduler stops before DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	// Start scheduler tied to root context
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Handlers and router
	rateHandler := handler.NewRateHandler(rateService)
	router := api.NewRouter(rateHandler, appMetrics, registry, appCfg.HTTPServer.AllowedOrigins)

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}
