package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danisworo/stockpile/config"
	"github.com/danisworo/stockpile/internal/inventory"
	"github.com/danisworo/stockpile/internal/inventory/handler"
	"github.com/danisworo/stockpile/internal/inventory/usecase"
	"github.com/danisworo/stockpile/internal/pkg/logger"
	"github.com/danisworo/stockpile/internal/pkg/metrics"
	"github.com/danisworo/stockpile/internal/storage/local"
	"github.com/danisworo/stockpile/internal/storage/supabase"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.Config{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Open the persistence backend
	var store inventory.Store
	switch cfg.Storage.Backend {
	case "supabase":
		if cfg.Supabase.URL == "" || cfg.Supabase.APIKey == "" {
			appLogger.Fatal("SUPABASE_URL and SUPABASE_ANON_KEY are required for the supabase backend")
		}
		store = supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.APIKey,
			time.Duration(cfg.Supabase.TimeoutSeconds)*time.Second, appLogger)
		appLogger.Info("Using supabase backend", zap.String("url", cfg.Supabase.URL))
	case "local":
		db, err := local.Open(cfg.SQLite.Path, appLogger)
		if err != nil {
			appLogger.Fatal("Could not open local store", zap.Error(err))
		}
		defer db.Close()
		store = db
		appLogger.Info("Using local backend", zap.String("path", cfg.SQLite.Path))
	default:
		appLogger.Fatal("Unknown storage backend", zap.String("backend", cfg.Storage.Backend))
	}

	// 4. Initialize the accounting usecase and load state
	uc := usecase.NewInventoryUseCase(store, appLogger, metrics.New())

	syncCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := uc.Sync(syncCtx); err != nil {
		cancel()
		appLogger.Fatal("Initial sync failed", zap.Error(err))
	}
	cancel()

	// 5. Build the HTTP server
	if cfg.Server.AppEnv != "dev" && cfg.Server.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestID(), handler.Logger(appLogger), handler.CORS())
	handler.New(uc, appLogger).Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPPort,
		Handler: router,
	}

	// 6. Run until interrupted, then drain
	go func() {
		appLogger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
