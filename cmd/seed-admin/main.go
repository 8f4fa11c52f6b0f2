package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Glenferdinza/sporton/internal/config"
	"github.com/Glenferdinza/sporton/internal/db"
	"github.com/Glenferdinza/sporton/internal/repository/postgres"
	authuc "github.com/Glenferdinza/sporton/internal/usecase/auth"
)

func main() {
	_ = godotenv.Load()

	v := viper.New()
	cmd := &cobra.Command{
		Use:          "seed-admin",
		Short:        "Create or reactivate an admin account",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, password := v.GetString("email"), v.GetString("password")
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			return run(cmd.Context(), email, password)
		},
	}
	cmd.Flags().String("email", "", "admin email (env ADMIN_EMAIL)")
	cmd.Flags().String("password", "", "admin password, min 8 chars (env ADMIN_PASSWORD)")
	_ = v.BindPFlag("email", cmd.Flags().Lookup("email"))
	_ = v.BindPFlag("password", cmd.Flags().Lookup("password"))
	_ = v.BindEnv("email", "ADMIN_EMAIL")
	_ = v.BindEnv("password", "ADMIN_PASSWORD")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, email, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	hash, err := authuc.HashPassword(password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		return err
	}
	defer pool.Close()

	a, err := postgres.NewAdminRepo(pool).Upsert(ctx, email, hash)
	if err != nil {
		return err
	}
	fmt.Printf("admin %s ready (id %s)\n", a.Email, a.ID)
	return nil
}
