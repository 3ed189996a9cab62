package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"chirp/pkg/logger"
)

// Config holds all process-wide configuration. It is loaded once at startup
// and read-only afterwards, so it can be shared across requests without locks.
type Config struct {
	AppPort      string
	DatabaseDSN  string
	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration
	RabbitMQURL  string
	Log          logger.Config
}

// Load reads configuration from environment variables via Viper, applying
// defaults for everything except JWT_SECRET, which must be provided.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DSN", "") // empty DSN selects the in-memory store
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("TOKEN_TTL", "15m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PATH", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 7)
	v.SetDefault("LOG_COMPRESS", false)
	v.AutomaticEnv()

	cfg := Config{
		AppPort:      v.GetString("APP_PORT"),
		DatabaseDSN:  v.GetString("DATABASE_DSN"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		JWTAlgorithm: v.GetString("JWT_ALGORITHM"),
		TokenTTL:     v.GetDuration("TOKEN_TTL"),
		RabbitMQURL:  v.GetString("RABBITMQ_URL"),
		Log: logger.Config{
			Level:      v.GetString("LOG_LEVEL"),
			Path:       v.GetString("LOG_PATH"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
			Compress:   v.GetBool("LOG_COMPRESS"),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set in the environment")
	}

	return cfg, nil
}
