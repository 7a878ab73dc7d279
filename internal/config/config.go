package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sebuszqo/TickerUpdater/internal/tickers/marketdata"
)

const defaultSnapshotMaxAge = 6 * time.Hour

type Config struct {
	ScreenerURL    string
	OutputDir      string
	DBConnString   string
	UpdateSchedule string
	LogLevel       string
	SnapshotMaxAge time.Duration

	// EnvFileLoaded is false when no .env file was found; the environment is used as is.
	EnvFileLoaded bool
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	envErr := godotenv.Load()
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.EnvFileLoaded = envErr == nil
	return cfg, nil
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		ScreenerURL:    getEnv("SCREENER_URL", marketdata.DefaultScreenerURL),
		OutputDir:      getEnv("OUTPUT_DIR", "."),
		DBConnString:   os.Getenv("DB_CONNECTION_STRING"),
		UpdateSchedule: os.Getenv("UPDATE_SCHEDULE"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SnapshotMaxAge: defaultSnapshotMaxAge,
	}

	if raw := os.Getenv("SNAPSHOT_MAX_AGE"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SNAPSHOT_MAX_AGE %q: %w", raw, err)
		}
		cfg.SnapshotMaxAge = d
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
