package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/target/authgate/config"
)

// InitLogger initializes the structured logger.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
// Values adjusted by sanitisation are reported on logger.
func LoadConfig(logger *slog.Logger) (config.AppConfig, error) {
	if err := loadDotEnv(); err != nil {
		return config.AppConfig{}, err
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	for _, w := range cfg.Sanitize() {
		if logger != nil {
			logger.Warn("config adjusted", "detail", w)
		}
	}
	return cfg, nil
}

// LoadDBConfig loads only the DB_* settings. Admin commands use it so they
// run without the HTTP and token settings the server requires.
func LoadDBConfig() (config.DBConfig, error) {
	if err := loadDotEnv(); err != nil {
		return config.DBConfig{}, err
	}

	var cfg config.DBConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "DB_"}); err != nil {
		return cfg, fmt.Errorf("parse database config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads a .env file if it exists (development).
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load .env file: %w", err)
		}
	}
	return nil
}
