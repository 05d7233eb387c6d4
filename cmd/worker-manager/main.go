// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"ac-dispatch-workers/internal/common/aws"
	"ac-dispatch-workers/internal/common/camunda"
	"ac-dispatch-workers/internal/common/config"
	"ac-dispatch-workers/internal/common/database"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/common/observability"
	"ac-dispatch-workers/internal/roster"
	"ac-dispatch-workers/pkg/registry"

	at "ac-dispatch-workers/internal/workers/dispatch/assign-technician"
	cms "ac-dispatch-workers/internal/workers/dispatch/calculate-match-score"
	fc "ac-dispatch-workers/internal/workers/dispatch/filter-candidates"
	rt "ac-dispatch-workers/internal/workers/dispatch/rank-technicians"
	st "ac-dispatch-workers/internal/workers/dispatch/search-technicians"
	san "ac-dispatch-workers/internal/workers/dispatch/send-assignment-notification"
)

type jobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

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

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability.ServiceName)
	defer obs.Shutdown()
	if cfg.Observability.TracingEnabled {
		if err := obs.EnableTracing(cfg.Observability.JaegerEndpoint); err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		}
	}

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
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

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	checks := map[string]readinessCheck{
		"zeebe":    zeebe.HealthCheck,
		"postgres": pg.Ping,
		"redis":    redis.Ping,
	}

	// --- Elasticsearch, only needed by search-technicians ---
	var esClient *database.ElasticsearchClient
	if config.IsWorkerEnabled(cfg, st.TaskType) {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		checks["elasticsearch"] = func(context.Context) error { return esClient.Ping() }
		zapLog.Info("Elasticsearch connected successfully")
	}

	store := roster.NewStore(pg.GetDB(), redis.GetClient(), roster.Options{
		CacheTTL:             time.Duration(cfg.Matching.CacheTTL) * time.Second,
		DefaultMaxJobsPerDay: cfg.Matching.DefaultMaxJobsPerDay,
	}, log)

	// --- Notification senders ---
	var (
		emailSender san.EmailSender
		smsSender   san.SMSSender
	)
	if config.IsWorkerEnabled(cfg, san.TaskType) && (cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled) {
		awsCfg, err := aws.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if cfg.Notifications.Email.Enabled {
			emailSender = aws.NewSESClient(awsCfg, cfg.Notifications.Email.FromEmail)
		}
		if cfg.Notifications.SMS.Enabled {
			smsSender = aws.NewSNSClient(awsCfg, cfg.Notifications.SMS.SenderID)
		}
	}

	// --- Workers ---
	client := zeebe.GetClient()
	var workers []*camunda.CamundaWorker
	served := make(map[string]string)
	register := func(taskType, inputSchema string, h jobHandler) {
		if w := camunda.StartWorker(client, taskType, config.GetWorkerConfig(cfg, taskType), h.Handle, zapLog); w != nil {
			workers = append(workers, w)
			served[taskType] = inputSchema
		}
	}

	register(fc.TaskType, fc.InputSchema, fc.NewHandler(fc.NewConfig(cfg), obs, log))
	register(cms.TaskType, cms.InputSchema, cms.NewHandler(cms.NewConfig(cfg), store, obs, log))
	register(rt.TaskType, rt.InputSchema, rt.NewHandler(rt.NewConfig(cfg), store, obs, log))
	if esClient != nil {
		register(st.TaskType, st.InputSchema, st.NewHandler(st.NewConfig(cfg), esClient, obs, log))
	}
	register(at.TaskType, at.InputSchema, at.NewHandler(at.NewConfig(cfg), pg.GetDB(), store, obs, log))
	register(san.TaskType, san.InputSchema, san.NewHandler(san.NewConfig(cfg), store, emailSender, smsSender, obs, log))

	zapLog.Info("workers registered", zap.Int("count", len(workers)))
	checkRegistry(cfg.Registry.Path, served, zapLog)

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           newOpsHandler(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry warns when the activity registry drifts from the workers
// actually started. It never blocks startup.
func checkRegistry(path string, served map[string]string, log *zap.Logger) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	for _, p := range reg.Validate(served) {
		log.Warn("activity registry problem", zap.Error(p))
	}
}
