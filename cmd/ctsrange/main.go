package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ctsrange/internal/config"
	dbRedis "github.com/kailas-cloud/ctsrange/internal/db/redis"
	"github.com/kailas-cloud/ctsrange/internal/domain/citation"
	domcorpus "github.com/kailas-cloud/ctsrange/internal/domain/corpus"
	logpkg "github.com/kailas-cloud/ctsrange/internal/logger"
	"github.com/kailas-cloud/ctsrange/internal/metrics"
	corpusrepo "github.com/kailas-cloud/ctsrange/internal/repository/corpus"
	"github.com/kailas-cloud/ctsrange/internal/repository/reffcache"
	chiTransport "github.com/kailas-cloud/ctsrange/internal/transport/chi"
	"github.com/kailas-cloud/ctsrange/internal/transport/cts"
	healthuc "github.com/kailas-cloud/ctsrange/internal/usecase/health"
	"github.com/kailas-cloud/ctsrange/internal/usecase/rangecheck"
	"github.com/kailas-cloud/ctsrange/internal/usecase/resolver"
	"github.com/kailas-cloud/ctsrange/internal/version"
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

	logger.Info("Starting ctsrange API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cts_endpoint", cfg.CTS.Endpoint),
		zap.Int("corpora", len(cfg.Corpora)),
		zap.Bool("shared_cache", cfg.Database.Enabled()),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterCitationMetrics()

	corpora, err := buildCorpora(cfg.Corpora)
	if err != nil {
		logger.Fatal("Invalid corpus configuration", zap.Error(err))
	}
	registry, err := corpusrepo.New(corpora...)
	if err != nil {
		logger.Fatal("Failed to build corpus registry", zap.Error(err))
	}

	ctsClient, err := cts.NewClient(&cts.Config{
		Endpoint: cfg.CTS.Endpoint,
		Timeout:  time.Duration(cfg.CTS.TimeoutSec) * time.Second,
		Breaker: cts.BreakerConfig{
			MaxRequests:      cfg.CTS.Breaker.MaxRequests,
			Interval:         time.Duration(cfg.CTS.Breaker.IntervalSec) * time.Second,
			Timeout:          time.Duration(cfg.CTS.Breaker.OpenTimeoutSec) * time.Second,
			FailureThreshold: cfg.CTS.Breaker.FailureThreshold,
			MinRequests:      cfg.CTS.Breaker.MinRequests,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("Failed to create reference service client", zap.Error(err))
	}

	// Shared reference cache is optional: without a store every process keeps only its own tree.
	ctx := context.Background()
	var fetcher resolver.Fetcher = ctsClient
	var dbPinger healthuc.DBPinger
	if cfg.Database.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database",
			zap.String("db_driver", cfg.Database.Driver),
			zap.Strings("db_addrs", cfg.Database.Addrs),
		)

		fetcher = reffcache.New(
			ctsClient, store, time.Duration(cfg.Database.TTLSec)*time.Second, metrics.ReffCacheTotal, logger,
		).WithKeyPrefix(cfg.Database.KeyPrefix)
		dbPinger = store
	}

	// Use case services
	resolverSvc := resolver.New(fetcher, citation.NewCaches(), logger)
	validatorSvc := rangecheck.New(resolverSvc, logger)
	healthSvc := healthuc.New(dbPinger, ctsClient)

	go preloadCorpora(ctx, resolverSvc, corpora, logger)

	server := chiTransport.NewServer(registry, resolverSvc, validatorSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
				Code:    chiTransport.ErrorResponseCodeBadRequest,
				Message: err.Error(),
			})
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
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

// buildCorpora converts configured corpora into validated domain values.
func buildCorpora(list []config.CorpusConfig) ([]domcorpus.Corpus, error) {
	out := make([]domcorpus.Corpus, 0, len(list))
	for _, cc := range list {
		c, err := domcorpus.New(cc.ID, cc.URN, cc.Title, cc.Author, cc.CitationLevels...)
		if err != nil {
			return nil, fmt.Errorf("build corpus: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// preloadCorpora loads the outermost citation level of every corpus.
// Failures are retried lazily on the first request for the corpus.
func preloadCorpora(ctx context.Context, res *resolver.Service, corpora []domcorpus.Corpus, logger *zap.Logger) {
	for _, c := range corpora {
		if err := res.OpenCorpus(ctx, c); err != nil {
			logger.Warn("Corpus preload failed", zap.String("corpus", c.ID()), zap.Error(err))
			continue
		}
		logger.Debug("Corpus preloaded", zap.String("corpus", c.ID()))
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
						Message: "internal error",
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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if corpus := chi.URLParam(r, "corpus"); corpus != "" {
				fields = append(fields, zap.String("corpus", corpus))
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}
