package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/5w1tchy/books-crud/internal/api/handlers"
	mw "github.com/5w1tchy/books-crud/internal/api/middlewares"
	"github.com/5w1tchy/books-crud/internal/api/router"
	"github.com/5w1tchy/books-crud/internal/config"
	"github.com/5w1tchy/books-crud/internal/logger"
	"github.com/5w1tchy/books-crud/internal/maintenance"
	"github.com/5w1tchy/books-crud/internal/metrics"
	"github.com/5w1tchy/books-crud/internal/repository/sqlconnect"
	"github.com/5w1tchy/books-crud/internal/snapshot"
	"github.com/5w1tchy/books-crud/internal/storage/s3"
	storebooks "github.com/5w1tchy/books-crud/internal/store/books"
	"github.com/5w1tchy/books-crud/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log, os.Stdout)
	for _, w := range cfg.HardeningWarnings() {
		log.Warn("config", "warning", w)
	}

	pools, err := sqlconnect.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pools.Close()
	log.Info("connected to database", "replica", pools.Read != pools.Write)

	store := storebooks.New(pools.Read, pools.Write)
	ready := map[string]handlers.Pinger{"database": store}

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		if rdb, err = newRedis(ctx, cfg.Redis.URL); err != nil {
			return err
		}
		defer rdb.Close()
		ready["redis"] = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		log.Info("connected to redis")
	}

	if err := scheduleSnapshots(ctx, cfg, store, log); err != nil {
		return err
	}

	m := metrics.New()
	handler := utils.ApplyMiddleware(
		router.Router(router.Deps{Books: store, Log: log, Metrics: m, Ready: ready}),
		mw.Recovery(log),
		mw.RequestID,
		mw.AccessLog(log),
		mw.Metrics(m),
		mw.ResponseTime,
		mw.SecurityHeaders(cfg.Production()),
		mw.Cors(cfg.CORS.AllowedOrigins, log),
		rateLimiter(cfg.RateLimit, rdb, log, m),
		mw.BodySizeLimit(cfg.Server.MaxBodyBytes),
		mw.Compression,
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr, "tls", cfg.Server.TLS(), "env", cfg.Env)
		if cfg.Server.TLS() {
			errc <- server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
			return
		}
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newRedis dials url and fails fast when Redis is unreachable. rediss://
// URLs get TLS 1.2 or newer.
func newRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKS_REDIS_URL: %w", err)
	}
	if opt.TLSConfig != nil && opt.TLSConfig.MinVersion < tls.VersionTLS12 {
		opt.TLSConfig.MinVersion = tls.VersionTLS12
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = time.Second
	opt.WriteTimeout = time.Second

	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return rdb, nil
}

// rateLimiter shares buckets across replicas through Redis when available
// and falls back to per-process buckets otherwise.
func rateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log *slog.Logger, m *metrics.Metrics) utils.Middleware {
	if !cfg.Enabled {
		return nil
	}
	key := mw.PerIPKey(cfg.Prefix)
	if rdb != nil {
		return mw.NewRedisTokenBucket(rdb, cfg.RPS, cfg.Burst, key, log, m.RateLimited).Middleware
	}
	return mw.NewLocalTokenBucket(cfg.RPS, cfg.Burst, key, log, m.RateLimited).Middleware
}

func scheduleSnapshots(ctx context.Context, cfg *config.Config, store *storebooks.Store, log *slog.Logger) error {
	if cfg.S3.Schedule == "" {
		return nil
	}
	if err := cfg.S3.Ready(); err != nil {
		return fmt.Errorf("BOOKS_S3_SCHEDULE is set: %w", err)
	}
	bucket, err := s3.New(ctx, cfg.S3)
	if err != nil {
		return err
	}
	exp := &snapshot.Exporter{
		Books:  store,
		Bucket: bucket,
		Prefix: cfg.S3.Prefix,
		Keep:   cfg.S3.Keep,
		Log:    log,
	}
	job := func(ctx context.Context) error {
		_, err := exp.Run(ctx)
		return err
	}
	return maintenance.Daily(ctx, "snapshot", cfg.S3.Schedule, cfg.S3.Timezone, job, log)
}
