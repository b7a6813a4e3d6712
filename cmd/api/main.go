package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parcel-tracker/app/bootstrap"
	"github.com/parcel-tracker/app/config"
	"github.com/parcel-tracker/app/controllers"
	"github.com/parcel-tracker/app/services"
	"github.com/parcel-tracker/internal/scanner"
	"github.com/parcel-tracker/routes"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := bootstrap.InitLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Parcel Tracker Service...", zap.String("env", cfg.App.Env))

	ctx := context.Background()

	components, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// Initialize engine
	engine, err := scanner.NewScanner()
	if err != nil {
		logger.Fatal("Failed to create scanner", zap.Error(err))
	}

	// Initialize services
	index := components.DirectoryIndex()
	scanService := services.NewScanService(engine, components.Directory, logger, components.ScanOptions()...)
	parcelService := services.NewParcelService(components.Directory, components.Cache, index, logger)
	adminService := services.NewAdminService(components.Directory, components.Cache, index, components.ScanLogs, logger)

	// Initialize controllers
	ctrl := routes.Controllers{
		Parcel: controllers.NewParcelController(parcelService, logger),
		Scan:   controllers.NewScanController(scanService, cfg.App.MaxImageBytes, logger),
		Admin:  controllers.NewAdminController(adminService, components.Status, logger),
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, ctrl)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.App.RequestTimeout,
		WriteTimeout: cfg.App.RequestTimeout + cfg.OCR.Timeout,
	}

	// Start server
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.App.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
