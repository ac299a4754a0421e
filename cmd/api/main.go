// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the mediagate HTTP server.
//
// # Startup Sequence
//
//  1. Load .env (if present) and configuration from environment variables.
//  2. Initialize structured logger.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Build the size registry, Imgix builder and materialization sink.
//  6. Wire the translator and the editor.
//  7. Run the HTTP server and the registry watcher until a signal arrives.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/mediagate/internal/api"
	"github.com/taibuivan/mediagate/internal/core/attachment"
	"github.com/taibuivan/mediagate/internal/core/editor"
	"github.com/taibuivan/mediagate/internal/core/imgix"
	"github.com/taibuivan/mediagate/internal/core/storage"
	"github.com/taibuivan/mediagate/internal/core/translate"
	"github.com/taibuivan/mediagate/internal/platform/config"
	"github.com/taibuivan/mediagate/internal/platform/constants"
	"github.com/taibuivan/mediagate/internal/platform/logging"
	"github.com/taibuivan/mediagate/internal/platform/migration"
	pgstore "github.com/taibuivan/mediagate/internal/platform/postgres"
	redisstore "github.com/taibuivan/mediagate/internal/platform/redis"
	"github.com/taibuivan/mediagate/internal/platform/s3client"
)

func main() {
	// ── 1. Configuration ──────────────────────────────────────────────────
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	bootLog := logging.New(os.Stdout, "info")

	cfg, err := config.Load()
	must(bootLog, err, "load configuration")

	// ── 2. Logger ─────────────────────────────────────────────────────────
	log := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("imgix_domain", cfg.Imgix.Domain),
		slog.Bool("strict", cfg.Imgix.Strict),
		slog.String("performance", cfg.Imgix.Performance),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(ctx, constants.StartupTimeout)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Sizes, URLs and Files ──────────────────────────────────────────
	var (
		custom   attachment.Registry = attachment.StaticRegistry{}
		registry *attachment.FileRegistry
	)
	if cfg.ImageSizesFile != "" {
		registry, err = attachment.LoadFileRegistry(cfg.ImageSizesFile, log)
		must(log, err, "load image sizes")
		custom = registry
	}
	sizes := attachment.NewSizeResolver(custom, attachment.BuiltinSizes(cfg.Sizes))

	builder := imgix.NewBuilder(cfg.Imgix)
	originals := storage.NewLocalFiles(cfg.WPRoot)

	sink, err := newSink(startupCtx, cfg, log)
	must(log, err, "initialize materialization sink")

	// ── 7. Health ─────────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers([]api.HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	translator := translate.NewService(
		attachment.NewPostgresRepository(pool),
		originals,
		sizes,
		builder,
		translate.Options{UploadsDir: cfg.UploadsDir, Strict: cfg.Imgix.Strict},
		log,
	)
	content := translate.NewContentRewriter(translator, cfg.SiteURL, cfg.UploadsDir)
	translateHandler := translate.NewHandler(translator, content, builder, cfg.Imgix.Performance)

	editorService := editor.NewService(
		editor.NewRedisSessionStore(rdb),
		originals,
		builder,
		editor.NewHTTPFetcher(&http.Client{Timeout: constants.DefaultWriteTimeout}),
		sink,
		editor.Options{
			UploadsDir:       cfg.UploadsDir,
			LocalMultiResize: cfg.LocalMultiResize,
			LocalQuality:     cfg.LocalQuality,
			SessionTTL:       cfg.SessionTTL,
		},
		log,
	)
	editorHandler := editor.NewHandler(editorService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(ctx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Translate: translateHandler,
		Editor:    editorHandler,
	})

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if registry != nil {
		group.Go(func() error {
			return registry.Watch(groupCtx)
		})
	}

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
		return server.Shutdown(constants.ShutdownTimeout)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server_stopped_with_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newSink selects where editor output is written.
func newSink(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Sink, error) {
	if cfg.MaterializeBackend != "s3" {
		return storage.NewFileSink(cfg.WPRoot), nil
	}

	client, err := s3client.New(ctx, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey,
		s3client.Region(cfg.S3Region),
		s3client.Bucket(cfg.S3Bucket),
		s3client.Logger(log),
	)
	if err != nil {
		return nil, err
	}
	return storage.NewS3Sink(client.S3, cfg.S3Bucket, ""), nil
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
