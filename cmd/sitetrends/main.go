package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitetrends/internal/config"
	dbValkey "github.com/kailas-cloud/sitetrends/internal/db/valkey"
	"github.com/kailas-cloud/sitetrends/internal/domain"
	logpkg "github.com/kailas-cloud/sitetrends/internal/logger"
	"github.com/kailas-cloud/sitetrends/internal/metrics"
	"github.com/kailas-cloud/sitetrends/internal/repository/actorcache"
	"github.com/kailas-cloud/sitetrends/internal/tracing"
	chiTransport "github.com/kailas-cloud/sitetrends/internal/transport/chi"
	"github.com/kailas-cloud/sitetrends/internal/transport/sharepoint"
	actoruc "github.com/kailas-cloud/sitetrends/internal/usecase/actor"
	healthuc "github.com/kailas-cloud/sitetrends/internal/usecase/health"
	"github.com/kailas-cloud/sitetrends/internal/usecase/trending"
	"github.com/kailas-cloud/sitetrends/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sitetrends API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("actor_cache", cfg.Cache.Enabled),
		zap.String("display_timezone", cfg.Display.Timezone),
		zap.Strings("allowed_hosts", cfg.SharePoint.AllowedHosts),
	)

	ctx := context.Background()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    logpkg.ServiceName,
		ServiceVersion: version.Version,
		Environment:    env,
		Enabled:        cfg.Tracing.Enabled,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
		Insecure:       cfg.Tracing.Insecure,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}

	// Register domain metrics explicitly (no init())
	metrics.RegisterDomainMetrics()

	backend := sharepoint.New(sharepoint.Config{
		AppToken:     cfg.SharePoint.AppToken,
		AllowedHosts: cfg.SharePoint.AllowedHosts,
		Timeout:      time.Duration(cfg.SharePoint.TimeoutSec) * time.Second,
		Breaker: sharepoint.BreakerConfig{
			MaxRequests: cfg.SharePoint.CircuitBreaker.MaxRequests,
			Interval:    time.Duration(cfg.SharePoint.CircuitBreaker.IntervalSec) * time.Second,
			Timeout:     time.Duration(cfg.SharePoint.CircuitBreaker.TimeoutSec) * time.Second,
			TripRatio:   cfg.SharePoint.CircuitBreaker.TripRatio,
		},
		RateLimit: cfg.SharePoint.RateLimitRPS,
		Burst:     cfg.SharePoint.RateLimitBurst,
		Logger:    logger,
	})

	// Actor resolver chain, optionally cache-decorated
	var resolver trending.ActorResolver = actoruc.New(backend)

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled {
		store, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to actor cache", zap.Strings("addrs", cfg.Cache.Addrs))

		resolver = actorcache.New(resolver, store,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.ActorCacheTotal, logger)
		cachePinger = store
	}

	trendingSvc := trending.New(backend, resolver, backend).
		WithSkippedRowsCounter(metrics.TrendingSkippedRowsTotal)
	healthSvc := healthuc.New(backend, cachePinger)

	sites := domain.NewSitePolicy(cfg.SharePoint.AllowedHosts)
	server := chiTransport.NewServer(trendingSvc, healthSvc, sites, cfg.Location(), logger).
		WithRequestTimeout(time.Duration(cfg.HTTP.RequestTimeoutSec) * time.Second)

	r := chi.NewRouter()
	r.Use(chiTransport.Recoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.Tracing(logpkg.ServiceName))
	r.Use(chiTransport.WideEvent(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys, logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
