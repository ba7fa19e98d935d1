package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const DefaultRestoreConcurrency = 3

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	GatewayURL  string `env:"GATEWAY_URL"`
	InstanceID  string `env:"INSTANCE_ID"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	AuthDir            string        `env:"AUTH_DIR" default:"auth"`
	RestoreConcurrency int           `env:"RESTORE_CONCURRENCY" default:"3"`
	RestorePacing      time.Duration `env:"RESTORE_PACING" default:"2s"`
	ReconnectDelay     time.Duration `env:"RECONNECT_DELAY" default:"1s"`
	RestoreErrorLog    string        `env:"RESTORE_ERROR_LOG" default:"restore-errors.log"`
	SessionLockTTL     time.Duration `env:"SESSION_LOCK_TTL" default:"2m"`

	CredentialEncryptionKey string `env:"CREDENTIAL_ENCRYPTION_KEY"`

	PairRateLimit float64 `env:"PAIR_RATE_LIMIT" default:"1"`
	PairRateBurst int     `env:"PAIR_RATE_BURST" default:"5"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := []struct{ name, value string }{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"GATEWAY_URL", cfg.GatewayURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	// The concurrency knob is read once at startup; nonsense values fall back to the default
	// instead of refusing to boot.
	if cfg.RestoreConcurrency < 1 {
		slog.Warn("RESTORE_CONCURRENCY must be positive, using default", "value", cfg.RestoreConcurrency, "default", DefaultRestoreConcurrency)
		cfg.RestoreConcurrency = DefaultRestoreConcurrency
	}
	if cfg.RestorePacing < 0 {
		return fmt.Errorf("RESTORE_PACING must not be negative")
	}
	if cfg.PairRateLimit <= 0 || cfg.PairRateBurst < 1 {
		return fmt.Errorf("PAIR_RATE_LIMIT and PAIR_RATE_BURST must be positive")
	}

	if cfg.CredentialEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(cfg.CredentialEncryptionKey)
		if err != nil {
			return fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY must be valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
		}
	}

	if cfg.AppEnv == "production" {
		if mode := sslMode(cfg.DatabaseURL); mode == "disable" || mode == "allow" {
			return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
		}
	}

	return nil
}

func sslMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Query().Get("sslmode"))
}
