// cmd/storefront/main.go
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

	"go.uber.org/zap"

	"storefront-stylist/internal/catalog"
	"storefront-stylist/internal/common/config"
	"storefront-stylist/internal/common/database"
	"storefront-stylist/internal/common/events"
	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/common/observability"
	"storefront-stylist/internal/personalization"
	"storefront-stylist/internal/profile"
	"storefront-stylist/internal/storefront"
	"storefront-stylist/internal/storefront/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting storefront...",
		zap.String("environment", cfg.App.Environment),
		zap.String("addr", cfg.Storefront.HTTPAddr),
	)

	obs := observability.New("storefront")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Profile store ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres open failed", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}

	pgStore := profile.NewPostgresStore(pg.GetDB())
	if err := pgStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("profile schema setup failed", zap.Error(err))
	}

	redis := database.NewRedis(cfg.Database.Redis)
	defer redis.Close()
	if err := redis.Ping(ctx); err != nil {
		// the cache is optional; CachedStore falls through to postgres
		zapLog.Warn("redis unreachable, profile cache degraded", zap.Error(err))
	}

	store := profile.NewCachedStore(
		pgStore,
		profile.NewRedisStore(redis.GetClient(), config.GetDuration(cfg.Storefront.ProfileCacheTTL)),
		log,
	)

	// --- Personalization service ---
	stylist := personalization.NewClient(&personalization.Config{
		BaseURL: cfg.APIs.Personalization.BaseURL,
		Timeout: config.GetDuration(cfg.APIs.Personalization.Timeout),
	}, log)

	// --- Events ---
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic)
	}
	defer publisher.Close()

	sessions := storefront.NewSessions(storefront.Deps{
		Store:        store,
		Personalizer: stylist,
		Catalog:      catalog.Default(),
		Publisher:    publisher,
		Logger:       log,
	})

	server := web.NewServer(web.Config{
		DefaultUserID: cfg.Storefront.DefaultUserID,
	}, sessions, map[string]web.HealthCheck{
		"postgres": pg.Ping,
		"redis":    redis.Ping,
		"personalization": func(ctx context.Context) error {
			_, err := stylist.Health(ctx)
			return err
		},
	}, log)

	httpServer := &http.Server{
		Addr:              cfg.Storefront.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("Storefront listening", zap.String("addr", cfg.Storefront.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("storefront server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping storefront...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping storefront server", zap.Error(err))
	}

	zapLog.Info("Storefront stopped gracefully")
}
