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

	"github.com/newsdex/newsdex/internal/config"
	dbRedis "github.com/newsdex/newsdex/internal/db/redis"
	"github.com/newsdex/newsdex/internal/domain"
	logpkg "github.com/newsdex/newsdex/internal/logger"
	"github.com/newsdex/newsdex/internal/metrics"
	"github.com/newsdex/newsdex/internal/rank"
	"github.com/newsdex/newsdex/internal/repository/enccache"
	"github.com/newsdex/newsdex/internal/scraper"
	"github.com/newsdex/newsdex/internal/store/sqlite"
	chiTransport "github.com/newsdex/newsdex/internal/transport/chi"
	openaiEnc "github.com/newsdex/newsdex/internal/transport/openai"
	healthuc "github.com/newsdex/newsdex/internal/usecase/health"
	ingestuc "github.com/newsdex/newsdex/internal/usecase/ingest"
	quotauc "github.com/newsdex/newsdex/internal/usecase/quota"
	searchuc "github.com/newsdex/newsdex/internal/usecase/search"
	useruc "github.com/newsdex/newsdex/internal/usecase/user"
	"github.com/newsdex/newsdex/internal/version"
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

	logger.Info("Starting newsdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	// Document store (sqlite, owns corpus and users)
	docStore, err := sqlite.NewStore(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer docStore.Close()
	logger.Info("Document store ready", zap.String("path", docStore.Path()))

	// Cache store (redis: result cache, encoder cache, quota counters)
	cacheStore, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Username: cfg.Cache.Username,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer cacheStore.Close()

	ctx := context.Background()
	if err := cacheStore.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache store not ready", zap.Error(err))
	}
	logger.Info("Connected to cache store")

	// Register encoder metrics explicitly (no init())
	metrics.RegisterEncoderMetrics()

	// Encoder chain — composition root: OpenAI -> Cached
	base := openaiEnc.NewEncoder(&openaiEnc.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	var encoder domain.Encoder = enccache.New(base, cacheStore, metrics.EncoderCacheTotal, logger)
	logger.Info("Encoder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Use case services
	cacheTTL := time.Duration(cfg.Cache.TTLSec) * time.Second
	searchSvc := searchuc.New(encoder, docStore, docStore, rank.NewBruteForce(logger), logger).
		WithCache(cacheStore, cacheTTL)
	quotaSvc := quotauc.New(
		cacheStore, docStore,
		cfg.Quota.Limit, time.Duration(cfg.Quota.WindowSec)*time.Second, logger,
	)
	userSvc := useruc.New(docStore, logger)
	ingestSvc := ingestuc.New(encoder, docStore, docStore, logger)
	healthSvc := healthuc.New(docStore, cacheStore, base)

	server := chiTransport.NewServer(searchSvc, quotaSvc, userSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger, docStore))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Background scraper feeds ingestion until shutdown
	scraperCtx, stopScraper := context.WithCancel(ctx)
	defer stopScraper()
	if cfg.Scraper.Enabled {
		sc := scraper.New(ingestSvc, scraper.Config{
			SourceURL: cfg.Scraper.SourceURL,
			Interval:  time.Duration(cfg.Scraper.IntervalSec) * time.Second,
		}, logger)
		go sc.Run(scraperCtx)
		logger.Info("Scraper started",
			zap.String("source", cfg.Scraper.SourceURL),
			zap.Int("interval_sec", cfg.Scraper.IntervalSec),
		)
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
	stopScraper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// requestLogSink persists one row per handled request.
type requestLogSink interface {
	InsertRequestLog(ctx context.Context, l sqlite.RequestLog) error
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

// wideEventMiddleware emits a canonical log line per request, propagates
// X-Request-ID and persists an audit row to the request log.
func wideEventMiddleware(logger *zap.Logger, sink requestLogSink) func(next http.Handler) http.Handler {
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

			userID := r.URL.Query().Get("user_id")
			latency := time.Since(start)

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("user_id", userID),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", latency),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)

			if sink != nil {
				if err := sink.InsertRequestLog(r.Context(), sqlite.RequestLog{
					UserID:     userID,
					Endpoint:   r.URL.Path,
					StatusCode: ww.Status(),
					DurationMS: float64(latency.Microseconds()) / 1000,
					CreatedAt:  start.UTC(),
				}); err != nil {
					reqLogger.Warn("failed to persist request log", zap.Error(err))
				}
			}
		})
	}
}
