package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aurora-bot/internal/bot"
	"aurora-bot/internal/config"
	"aurora-bot/internal/metrics"
	"aurora-bot/internal/storage"
	"aurora-bot/internal/usage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}

	usageLog, err := usage.NewLogger(cfg.UsageLogPath, logger)
	if err != nil {
		logger.Fatal("usage log init failed", zap.Error(err))
	}

	metricsSet := metrics.New()

	botSvc, err := bot.New(cfg, logger, store, usageLog, metricsSet)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	var server *http.Server
	if cfg.Server.Enabled {
		server = &http.Server{Addr: cfg.Server.Addr, Handler: metricsSet.Router()}
		go func() {
			logger.Info("http endpoints enabled", zap.String("addr", cfg.Server.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server error", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		_ = server.Shutdown(ctx)
	}
	botSvc.Close(ctx)
}
