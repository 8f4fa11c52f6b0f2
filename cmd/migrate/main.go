package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Glenferdinza/sporton/internal/config"
	"github.com/Glenferdinza/sporton/internal/db"
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

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		log.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	applied, err := db.Migrate(ctx, pool)
	if err != nil {
		log.Fatal("migrate", zap.Strings("applied", applied), zap.Error(err))
	}
	if len(applied) == 0 {
		log.Info("schema up to date")
		return
	}
	log.Info("migrations applied", zap.Strings("applied", applied))
}
