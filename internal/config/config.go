package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	DBMaxConns        int
	JWTSecret         string
	JWTExpiresMinutes int

	UploadDir   string
	UploadMaxMB int
	CORSOrigins string

	WebhookURL    string
	WebhookSecret string
}

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 10),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiresMinutes: getEnvInt("JWT_EXPIRES_MINUTES", 60),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		UploadMaxMB:       getEnvInt("UPLOAD_MAX_MB", 5),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		WebhookURL:        strings.TrimSpace(getEnv("WEBHOOK_URL", "")),
		WebhookSecret:     getEnv("WEBHOOK_SECRET", ""),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	if cfg.JWTExpiresMinutes <= 0 {
		cfg.JWTExpiresMinutes = 60
	}
	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 5
	}
	return cfg, nil
}

// UploadMaxBytes is the per-file limit applied to image uploads.
func (c Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
