package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parcel-tracker/app/bootstrap"
	"github.com/parcel-tracker/app/config"
	"github.com/parcel-tracker/app/services"
	"github.com/parcel-tracker/internal/events"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Worker chạy reset theo lịch và đồng bộ search index từ scan event
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := bootstrap.InitLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Parcel Tracker Worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	parcelService := services.NewParcelService(components.Directory, components.Cache, components.DirectoryIndex(), logger)

	// Reset hằng ngày
	scheduler := cron.New()
	if cfg.Worker.ResetSchedule != "" {
		_, err := scheduler.AddFunc(cfg.Worker.ResetSchedule, func() {
			runCtx, runCancel := context.WithTimeout(ctx, time.Minute)
			defer runCancel()

			count, err := parcelService.Reset(runCtx)
			if err != nil {
				logger.Error("Scheduled reset failed", zap.Error(err))
				return
			}
			logger.Info("Scheduled reset completed", zap.Int64("records", count))
		})
		if err != nil {
			logger.Fatal("Invalid reset schedule", zap.String("schedule", cfg.Worker.ResetSchedule), zap.Error(err))
		}
		scheduler.Start()
		logger.Info("Reset scheduled", zap.String("schedule", cfg.Worker.ResetSchedule))
	}

	// Đồng bộ Meilisearch theo scan event
	var consumer *events.Consumer
	if cfg.Worker.ConsumeEvents && len(cfg.Kafka.Brokers) > 0 && components.Index != nil {
		handler := events.NewScanEventHandler(func(ctx context.Context, event *events.ScanEvent) error {
			return parcelService.SyncIndex(ctx, event.RecordID)
		}, logger)

		consumer, err = events.NewConsumer(bootstrap.KafkaConfig(cfg), handler, logger)
		if err != nil {
			logger.Fatal("Failed to create Kafka consumer", zap.Error(err))
		}
		if err := consumer.Start(ctx); err != nil {
			logger.Fatal("Failed to start Kafka consumer", zap.Error(err))
		}
		logger.Info("Consuming scan events", zap.String("topic", cfg.Kafka.Topic))
	}

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")

	cronCtx := scheduler.Stop()
	cancel()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("Failed to close consumer", zap.Error(err))
		}
	}

	// Chờ job reset đang chạy (nếu có)
	select {
	case <-cronCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("Timed out waiting for running jobs")
	}

	logger.Info("Worker exited")
}
