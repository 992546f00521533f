package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/sailor-swift/internal/config"
	"github.com/benvon/sailor-swift/internal/database"
	"github.com/benvon/sailor-swift/internal/logger"
	"github.com/benvon/sailor-swift/internal/queue"
	"github.com/benvon/sailor-swift/internal/workers"
	"go.uber.org/zap"
)

const (
	dlqGCInterval  = time.Hour
	dlqGCRetention = 24 * time.Hour
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	envFile := flag.String("env-file", ".env", "Environment file loaded before configuration")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("Failed to load environment file: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag
	zapLogger, err := logger.New(cfg.Environment, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	if cfg.RabbitMQURL == "" {
		zapLogger.Fatal("rabbitmq_url_required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	db, err := database.New(ctx, cfg.DatabaseURL, database.DefaultOptions())
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	// The API normally creates the schema, but the worker may start first.
	if err := db.CreateTables(ctx); err != nil {
		zapLogger.Fatal("failed_to_create_tables", zap.Error(err))
	}

	eventQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := eventQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	recorder := workers.NewEventRecorder(database.NewAuthEventRepository(db), zapLogger)

	gc := queue.NewGarbageCollector(eventQueue, dlqGCInterval, dlqGCRetention, zapLogger)
	go func() {
		if err := gc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()

	msgChan, errChan, err := eventQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}
	zapLogger.Info("worker_started")

	for {
		select {
		case <-ctx.Done():
			zapLogger.Info("worker_stopped")
			return
		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			zapLogger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgChan:
			if !ok {
				zapLogger.Info("message_channel_closed")
				return
			}
			if err := recorder.Process(ctx, msg); err != nil {
				zapLogger.Error("failed_to_record_event",
					zap.Error(err),
					zap.String("event_id", msg.Event.ID.String()),
					zap.String("event_type", string(msg.Event.Type)),
				)
			}
		}
	}
}
