package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrimint/ussd-service/internal/app"
	"github.com/agrimint/ussd-service/internal/config"
	"github.com/agrimint/ussd-service/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := application.Run(); err != nil {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	log.Info("ussd-service started", "port", cfg.AppPort)

	<-ctx.Done()

	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("ussd-service stopped cleanly")
}
