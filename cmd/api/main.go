package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Glenferdinza/sporton/internal/app"
	"github.com/Glenferdinza/sporton/internal/config"
	"github.com/Glenferdinza/sporton/internal/logging"
)

func main() {
	_ = godotenv.Load()

	log, err := logging.NewFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logging.SetGlobal(log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	if err := a.Run(ctx); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
