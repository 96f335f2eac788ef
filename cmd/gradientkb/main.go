package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gradientkb"
	"github.com/kailas-cloud/gradientkb/internal/cache"
	"github.com/kailas-cloud/gradientkb/internal/config"
	logpkg "github.com/kailas-cloud/gradientkb/internal/logger"
	"github.com/kailas-cloud/gradientkb/internal/metrics"
	chiTransport "github.com/kailas-cloud/gradientkb/internal/transport/chi"
	healthuc "github.com/kailas-cloud/gradientkb/internal/usecase/health"
	"github.com/kailas-cloud/gradientkb/internal/version"
	"github.com/kailas-cloud/gradientkb/schema"
)

// retriever is the blocking and non-blocking retrieval pair served over HTTP.
type retriever interface {
	schema.Retriever
	schema.AsyncRetriever
}

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

	logger.Info("Starting gradientkb retrieval sidecar",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("knowledge_base_id", cfg.Gradient.KnowledgeBaseID),
		zap.Int("num_results", cfg.Gradient.NumResults),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	base, err := gradientkb.New(
		cfg.Gradient.KnowledgeBaseID,
		cfg.Gradient.APIToken,
		retrieverOptions(cfg.Gradient, logger)...,
	)
	if err != nil {
		logger.Fatal("Failed to create retriever", zap.Error(err))
	}

	var r retriever = base

	// Pass nil interface (not typed nil pointer!) when cache is disabled.
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled {
		store, err := cache.NewStore(cache.StoreConfig{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(context.Background(), readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))

		metrics.RegisterCacheMetrics()
		r = cache.NewRetriever(base, store, cache.Config{
			Namespace: cacheNamespace(cfg.Gradient),
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, metrics.CacheTotal, logger)
		cachePinger = store
	}

	server := chiTransport.NewServer(r, healthuc.New(cachePinger), logger)

	router := chi.NewRouter()
	router.Use(chiTransport.JSONRecoverer(logger))
	router.Use(chiMiddleware.RequestID)
	router.Use(chiTransport.WideEventMiddleware(logger))
	router.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	router.Use(metrics.Middleware())
	server.Mount(router)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	logger.Info("Server stopped gracefully")
}

// retrieverOptions maps the gradient config section to adapter options.
func retrieverOptions(g config.GradientConfig, logger *zap.Logger) []gradientkb.Option {
	opts := []gradientkb.Option{
		gradientkb.WithNumResults(g.NumResults),
		gradientkb.WithTimeout(time.Duration(g.TimeoutSec) * time.Second),
		gradientkb.WithLogger(logger),
		gradientkb.WithPrometheus(prometheus.DefaultRegisterer),
	}
	if g.BaseURL != "" {
		opts = append(opts, gradientkb.WithBaseURL(g.BaseURL))
	}
	if g.Alpha != nil {
		opts = append(opts, gradientkb.WithAlpha(*g.Alpha))
	}
	if f := filterFromConfig(g.Filters); !f.IsEmpty() {
		opts = append(opts, gradientkb.WithFilters(f))
	}
	return opts
}

func filterFromConfig(fc config.FilterConfig) gradientkb.Filter {
	return gradientkb.Filter{
		Must:    conditionsFromConfig(fc.Must),
		MustNot: conditionsFromConfig(fc.MustNot),
	}
}

func conditionsFromConfig(cs []config.ConditionConfig) []gradientkb.Condition {
	if len(cs) == 0 {
		return nil
	}
	out := make([]gradientkb.Condition, len(cs))
	for i, c := range cs {
		out[i] = gradientkb.Condition{
			Key:      c.Key,
			Operator: gradientkb.Operator(c.Operator),
			Value:    c.Value,
		}
	}
	return out
}

// cacheNamespace separates cache entries of differently configured retrievers.
func cacheNamespace(g config.GradientConfig) string {
	return cache.Namespace(g.KnowledgeBaseID, g.NumResults, g.Alpha, g.Filters)
}
