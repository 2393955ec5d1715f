// Package main starts the rowcache HTTP service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/adeilh/rowcache/config"
	"github.com/adeilh/rowcache/internal/app"
	"github.com/adeilh/rowcache/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("init app", zap.Error(err))
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", zap.Error(err))
		}
	}()

	logger.Info("starting rowcache",
		zap.String("listen", cfg.Listen),
		zap.String("store", cfg.Store.Driver),
		zap.String("remote", cfg.Remote.BaseURL),
	)
	if err := a.Run(ctx); err != nil {
		logger.Error("serve", zap.Error(err))
		return err
	}
	logger.Info("rowcache stopped")
	return nil
}
