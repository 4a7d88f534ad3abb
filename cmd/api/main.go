package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"business_reviews/internal/adapters/classifier"
	server "business_reviews/internal/adapters/http_server"
	"business_reviews/internal/adapters/localcache"
	"business_reviews/internal/adapters/observability"
	redisad "business_reviews/internal/adapters/redis"
	"business_reviews/internal/app"
	"business_reviews/internal/domain"
	"business_reviews/internal/shared"
	mysqlrepo "business_reviews/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.AppEnv)
	if err != nil {
		log.Error().Err(err).Msg("sentry init failed; continuing without error reporting")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("api exited")
		observability.CaptureError(err, map[string]string{"component": "api"})
		flush()
		os.Exit(1)
	}
	flush()
}

func run(ctx context.Context, cfg shared.Config) error {
	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cls, err := classifier.New(classifier.Config{
		BaseURL: cfg.ClassifierBase,
		APIKey:  cfg.ClassifierKey,
		Model:   cfg.ClassifierModel,
		Timeout: cfg.ClassifierTimeout,
		RPS:     cfg.ClassifierRPS,
	})
	if err != nil {
		return fmt.Errorf("classifier client: %w", err)
	}
	cache := newCache(cfg)
	if c, ok := cache.(io.Closer); ok {
		defer c.Close()
	}

	intake := app.NewIntakeService(cls, repo, cache, cfg.WebhookSecret)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New(server.Options{RequestTimeout: cfg.RequestTimeout, AllowedOrigins: cfg.AllowedOrigins})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Intake: intake,
		Q:      q,
		Health: func(ctx context.Context) error { return repo.Ping(ctx) },
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}
	return serve(ctx, httpSrv, shutdownGrace)
}

const shutdownGrace = 10 * time.Second

// serve runs hs until it fails or ctx is done, then drains in-flight requests
// for at most grace.
func serve(ctx context.Context, hs *http.Server, grace time.Duration) error {
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// newCache prefers Redis and falls back to an in-process cache.
func newCache(cfg shared.Config) domain.Cache {
	if cfg.RedisAddr != "" {
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
		return redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}
	log.Info().Msg("REDIS_ADDR empty; using in-process cache")
	return localcache.New(cfg.CacheTTL)
}
