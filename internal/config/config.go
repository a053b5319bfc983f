package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"task-manager/internal/repository"
	"task-manager/internal/weather"
)

// Config keeps runtime settings for the task manager.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	ReportInterval time.Duration
	ReportTime     string // HH:MM; overrides ReportInterval when set

	WeatherAPIKey  string
	WeatherURL     string
	WeatherQuery   string
	WeatherTimeout time.Duration
	WeatherSweep   time.Duration
}

// Load reads configuration from the environment, after merging an optional
// .env file, with sane defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[warn] read .env: %v", err)
	}

	cfg := Config{
		TelegramToken:  env("TELEGRAM_TOKEN"),
		DatabaseURL:    env("DATABASE_URL"),
		ReportInterval: parseHours(env("REPORT_INTERVAL_HOURS")),
		ReportTime:     env("REPORT_TIME"),
		WeatherAPIKey:  env("WEATHER_API_KEY"),
		WeatherURL:     env("WEATHER_API_URL"),
		WeatherQuery:   env("WEATHER_QUERY"),
		WeatherTimeout: parseDuration(env("WEATHER_TIMEOUT")),
		WeatherSweep:   parseMinutes(env("WEATHER_SWEEP_MINUTES")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = repository.DefaultDSN
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 5 * time.Hour
	}
	if cfg.WeatherAPIKey == "" {
		cfg.WeatherAPIKey = weather.DefaultAPIKey
	}
	if cfg.WeatherURL == "" {
		cfg.WeatherURL = weather.DefaultBaseURL
	}
	if cfg.WeatherQuery == "" {
		cfg.WeatherQuery = weather.DefaultQuery
	}
	if cfg.WeatherTimeout == 0 {
		cfg.WeatherTimeout = weather.DefaultTimeout
	}
	if cfg.WeatherSweep == 0 {
		cfg.WeatherSweep = 30 * time.Minute
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseHours(raw string) time.Duration {
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return 0
	}
	return time.Duration(hours) * time.Hour
}

func parseMinutes(raw string) time.Duration {
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}

func parseDuration(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
