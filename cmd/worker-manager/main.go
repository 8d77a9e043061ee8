// cmd/worker-manager/main.go
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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"storefront-stylist/internal/catalog"
	"storefront-stylist/internal/common/camunda"
	"storefront-stylist/internal/common/config"
	"storefront-stylist/internal/common/database"
	"storefront-stylist/internal/common/events"
	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/common/observability"
	"storefront-stylist/internal/personalization"
	"storefront-stylist/internal/profile"
	"storefront-stylist/pkg/registry"

	lsp "storefront-stylist/internal/workers/profile/load-style-profile"
	ssp "storefront-stylist/internal/workers/profile/save-style-profile"
	rap "storefront-stylist/internal/workers/storefront/rank-annotated-products"
	pc "storefront-stylist/internal/workers/storefront/personalize-catalog"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func workerTimeout(cfg *config.Config, taskType string) time.Duration {
	return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
}

// traced wraps a job handler in a span and records the otel job metrics.
func traced(obs *observability.Observability, taskType string, handler camunda.JobHandler) camunda.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		ctx, span := obs.StartSpan(context.Background(), "job."+taskType,
			attribute.String("task.type", taskType),
			attribute.Int64("job.key", job.Key),
		)
		defer span.End()

		start := time.Now()
		handler(client, job)
		obs.RecordJobProcessed(ctx, taskType, "handled")
		obs.RecordJobDuration(ctx, taskType, time.Since(start), "handled")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.RequireCamunda(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	pgStore := profile.NewPostgresStore(pg.GetDB())
	if err := pgStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("profile schema setup failed", zap.Error(err))
	}

	// --- Init Redis with retry ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	store := profile.NewCachedStore(
		pgStore,
		profile.NewRedisStore(redis.GetClient(), config.GetDuration(cfg.Storefront.ProfileCacheTTL)),
		log,
	)

	// --- Init External Service Clients ---
	stylist := personalization.NewClient(&personalization.Config{
		BaseURL: cfg.APIs.Personalization.BaseURL,
		Timeout: config.GetDuration(cfg.APIs.Personalization.Timeout),
	}, log)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic)
		zapLog.Info("Kafka event publisher enabled",
			zap.Strings("brokers", cfg.Events.Kafka.Brokers),
			zap.String("topic", cfg.Events.Kafka.Topic),
		)
	}
	defer publisher.Close()

	// --- Activity registry ---
	registryPath := os.Getenv("ACTIVITY_REGISTRY_PATH")
	if registryPath == "" {
		registryPath = "configs/activity-registry.json"
	}
	activities, err := registry.LoadRegistry(registryPath)
	if err != nil {
		zapLog.Warn("activity registry unavailable", zap.String("path", registryPath), zap.Error(err))
	} else {
		zapLog.Info("activity registry loaded",
			zap.String("version", activities.Version),
			zap.Int("activities", len(activities.Activities)),
		)
	}

	// --- Register Workers ---
	var jobWorkers []worker.JobWorker
	start := func(taskType string, handler camunda.JobHandler) {
		if activities != nil {
			if a, ok := activities.Find(taskType); ok {
				zapLog.Debug("registered activity",
					zap.String("taskType", taskType),
					zap.String("description", a.Description),
					zap.Strings("errorCodes", a.ErrorCodes),
				)
			} else {
				zapLog.Warn("starting unregistered worker", zap.String("taskType", taskType), zap.Error(activities.Check(taskType)))
			}
		}
		w := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), traced(obs, taskType, handler), zapLog)
		if w != nil {
			jobWorkers = append(jobWorkers, w)
		}
	}

	if config.IsWorkerEnabled(cfg, rap.TaskType) {
		handler := rap.NewHandler(
			&rap.Config{Timeout: workerTimeout(cfg, rap.TaskType)},
			log,
		)
		start(rap.TaskType, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, pc.TaskType) {
		handler := pc.NewHandler(
			&pc.Config{
				Timeout:     workerTimeout(cfg, pc.TaskType),
				MaxProducts: pc.LoadConfig().MaxProducts,
			},
			stylist, catalog.Default(), publisher, log,
		)
		start(pc.TaskType, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, lsp.TaskType) {
		handler := lsp.NewHandler(
			&lsp.Config{Timeout: workerTimeout(cfg, lsp.TaskType)},
			store, log,
		)
		start(lsp.TaskType, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, ssp.TaskType) {
		handler := ssp.NewHandler(
			&ssp.Config{Timeout: workerTimeout(cfg, ssp.TaskType)},
			store, publisher, log,
		)
		start(ssp.TaskType, handler.Handle)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(jobWorkers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status, code := "ready", http.StatusOK
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			status, code = "not_ready", http.StatusServiceUnavailable
		} else if err := pg.Ping(checkCtx); err != nil {
			status, code = "not_ready", http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range jobWorkers {
		w.Close()
		w.AwaitClose()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
