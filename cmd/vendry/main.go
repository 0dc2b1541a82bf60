package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vendry-cloud/vendry/internal/cache"
	"github.com/vendry-cloud/vendry/internal/config"
	logpkg "github.com/vendry-cloud/vendry/internal/logger"
	"github.com/vendry-cloud/vendry/internal/metrics"
	"github.com/vendry-cloud/vendry/internal/store"
	storeMemory "github.com/vendry-cloud/vendry/internal/store/memory"
	storeRedis "github.com/vendry-cloud/vendry/internal/store/redis"
	chiTransport "github.com/vendry-cloud/vendry/internal/transport/chi"
	healthuc "github.com/vendry-cloud/vendry/internal/usecase/health"
	searchuc "github.com/vendry-cloud/vendry/internal/usecase/search"
	vendoruc "github.com/vendry-cloud/vendry/internal/usecase/vendor"
	"github.com/vendry-cloud/vendry/internal/version"
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

	logger.Info("Starting vendry API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Strings("store_addrs", cfg.Store.Addrs),
	)

	// Create vendor store based on driver
	var st store.Store
	switch cfg.Store.Driver {
	case "memory":
		st = storeMemory.NewStore()
	case "redis":
		st, err = storeRedis.NewStore(storeRedis.Config{
			Addrs:     cfg.Store.Addrs,
			Username:  cfg.Store.Username,
			Password:  cfg.Store.Password,
			DB:        cfg.Store.DB,
			KeyPrefix: cfg.Store.KeyPrefix,
		})
	default:
		logger.Fatal("Unknown store driver", zap.String("driver", cfg.Store.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create vendor store", zap.Error(err))
	}
	defer st.Close()

	// Wait for the store to be ready
	ctx := context.Background()
	if err := st.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Store not ready", zap.Error(err))
	}
	logger.Info("Connected to vendor store")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Query cache: the composition root decides whether searches are cached
	var qc *cache.QueryCache
	searchOpts := []searchuc.Option{
		searchuc.WithFetchTimeout(time.Duration(cfg.Search.FetchTimeoutSec) * time.Second),
		searchuc.WithCoordPrecision(cfg.Cache.CoordPrecision),
	}
	if cfg.Cache.Enabled {
		qc = cache.New(
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			cfg.Cache.Capacity,
			metrics.QueryCacheTotal,
		)
		searchOpts = append(searchOpts, searchuc.WithCache(qc))
		logger.Info("Query cache enabled",
			zap.Int("ttl_sec", cfg.Cache.TTLSec),
			zap.Int("capacity", cfg.Cache.Capacity),
		)
	}

	// Create use case services
	searchSvc := searchuc.New(st, searchOpts...)

	// Pass nil interface (not typed nil pointer!) if the cache is disabled.
	// Go gotcha: (*cache.QueryCache)(nil) wrapped in CacheInvalidator != nil.
	var inval vendoruc.CacheInvalidator
	if qc != nil {
		inval = qc
	}
	vendorSvc := vendoruc.New(st, inval)

	// Health service
	healthSvc := healthuc.New(st)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, vendorSvc, healthSvc, logger, cfg.Search.MaxRadiusKm)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

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

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
