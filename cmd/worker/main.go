package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/classify"
	"github.com/selvester69/notifications/internal/config"
	"github.com/selvester69/notifications/internal/consumer"
	"github.com/selvester69/notifications/internal/dispatch"
	"github.com/selvester69/notifications/internal/domain"
	"github.com/selvester69/notifications/internal/logger"
	"github.com/selvester69/notifications/internal/orchestrator"
	"github.com/selvester69/notifications/internal/queue/sqs"
	"github.com/selvester69/notifications/internal/store/clickhouse"
	"github.com/selvester69/notifications/internal/store/sqlite"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting worker service",
		zap.String("environment", cfg.Service.Environment))

	ctx := context.Background()

	// Initialize ClickHouse client
	chClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}

	// Initialize tracking store
	tracking := clickhouse.NewTrackingStore(chClient, log)
	defer func() {
		if err := tracking.Close(); err != nil {
			log.Error("Failed to close tracking store", zap.Error(err))
		}
	}()

	// Initialize schema (create tables if not exist)
	if err := tracking.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}
	log.Info("Tracking schema initialized")

	// Initialize template and preference stores
	db, err := sqlite.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	templates := sqlite.NewTemplateStore(db, log)
	preferences := sqlite.NewPreferenceStore(db, log)

	// Initialize dispatch registry with all supported channel senders
	registry, err := dispatch.NewRegistry(cfg.Orchestrator.DispatchTimeout, log,
		dispatch.NewEmailSender(cfg.Senders, log),
		dispatch.NewSMSSender(cfg.Senders, log),
		dispatch.NewPushSender(cfg.Senders, log),
		dispatch.NewSlackSender(cfg.Senders, log),
	)
	if err != nil {
		log.Fatal("Failed to create dispatch registry", zap.Error(err))
	}

	// Initialize orchestrator
	classifier := classify.New(classify.DefaultRules(), domain.CategoryMarketing)
	o := orchestrator.New(classifier, templates, preferences, tracking, registry, orchestrator.Config{
		DefaultLanguage:    cfg.Orchestrator.DefaultLanguage,
		DefaultChannel:     domain.Channel(cfg.Orchestrator.DefaultChannel),
		PreferenceFailOpen: cfg.Orchestrator.PreferenceFailOpen,
	}, log)

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize consumer
	c := consumer.NewConsumer(cfg, sqsClient, o, log)

	// Start health check endpoint
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if err := tracking.Ping(r.Context()); err != nil {
				log.Warn("Health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		})

		addr := ":" + cfg.Worker.HealthCheckPort
		log.Info("Health check server starting", zap.String("address", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error("Health check server error", zap.Error(err))
		}
	}()

	// Start consumer
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info("Worker starting")

	go func() {
		if err := c.Start(workerCtx); err != nil {
			log.Fatal("Worker error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker gracefully")
	cancel()
}
