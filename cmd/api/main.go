package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/config"
	"github.com/selvester69/notifications/internal/handler"
	"github.com/selvester69/notifications/internal/logger"
	"github.com/selvester69/notifications/internal/queue/sqs"
	"github.com/selvester69/notifications/internal/service"
	"github.com/selvester69/notifications/internal/store/clickhouse"
	"github.com/selvester69/notifications/internal/store/sqlite"
)

func main() {
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

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	ctx := context.Background()

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize ClickHouse client
	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}

	// Initialize tracking store
	tracking := clickhouse.NewTrackingStore(clickhouseClient, log)
	defer func() {
		if err := tracking.Close(); err != nil {
			log.Error("Failed to close tracking store", zap.Error(err))
		}
	}()

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

	// Initialize notification service
	notificationService := service.NewNotificationService(sqsClient, tracking, log)

	// Initialize handler
	h := handler.NewHandler(notificationService, templates, preferences, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
