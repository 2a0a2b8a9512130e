// Command underseerrd runs the media cache and offline-sync daemon: a local
// HTTP API backed by SQLite that fronts a remote media-request server,
// caching catalog details and queueing request submissions while the server
// is unreachable.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lusk/underseerr-data/internal/config"
	httpapi "github.com/lusk/underseerr-data/internal/http"
	"github.com/lusk/underseerr-data/internal/observability"
	"github.com/lusk/underseerr-data/internal/repo"
	"github.com/lusk/underseerr-data/internal/services"
	"github.com/lusk/underseerr-data/internal/sysutil"
	"github.com/lusk/underseerr-data/internal/upstream"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	// Dependency injection: transport ← config, services ← db/transport.
	transport := upstream.NewClient(cfg.Upstream)
	policy := services.EvictionPolicy{
		MaxTotalBytes:    cfg.Cache.MaxTotalBytes,
		MovieEntryBytes:  cfg.Cache.MovieEntryBytes,
		TvShowEntryBytes: cfg.Cache.TvEntryBytes,
	}
	cacheSvc := services.NewCacheService(db, policy)
	queue := services.NewOfflineQueue(db)
	scheduler := services.NewChannelScheduler()
	coordinator := services.NewSyncCoordinator(queue, transport, cfg.Sync.RPS, cfg.Sync.Burst)
	requestSvc := services.NewRequestService(db, transport, queue, scheduler)
	discoverySvc := services.NewDiscoveryService(db, transport, cacheSvc)

	// Background workers: queue drain loop and periodic stale purge.
	go scheduler.Run(ctx, coordinator)
	go purgeLoop(ctx, cacheSvc, cfg.Cache.MaxAge)

	// Drain anything left over from the previous run.
	scheduler.ScheduleSync()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, httpapi.Services{
		Discovery: discoverySvc,
		Requests:  requestSvc,
		Cache:     cacheSvc,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

// purgeLoop removes cache entries older than maxAge once at startup and then
// every six hours.
func purgeLoop(ctx context.Context, cache *services.CacheService, maxAge time.Duration) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		cutoff := time.Now().Add(-maxAge).UnixMilli()
		if n, err := cache.DeleteOlderThan(ctx, cutoff); err != nil {
			log.Warn().Err(err).Msg("stale cache purge failed")
		} else if n > 0 {
			log.Info().Int64("deleted", n).Msg("stale cache entries purged")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
