package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/shivam060404/News-Aggregation-System/internal/models"
)

// StorageType selects the persistence backend for a run.
type StorageType string

const (
	StorageTypeDatabase StorageType = "database"
	StorageTypeCSV      StorageType = "csv"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	NewsAPIKey  string
	AIAPIKey    string
	AIProvider  string
	AIModel     string
	StorageType StorageType
	DatabaseURL string
	OutputPath  string
	WindowDays  int
	MetricsAddr string // empty disables the metrics endpoint
	EntitySet   models.EntitySet
	Logging     LoggingConfig
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

const (
	defaultProvider   = "openai"
	defaultOutputPath = "output/articles.csv"
	defaultWindowDays = 7
	defaultLogFormat  = "json"
)

// EntitySets are the predefined tracked-entity sets selectable via TEST_SET.
var EntitySets = []models.EntitySet{
	{Name: "Test Set 1: IT Services", Entities: []string{"TCS", "Wipro", "Infosys", "HCLTech"}},
	{Name: "Test Set 2: Telecom", Entities: []string{"Airtel", "Jio", "Vodafone Idea", "BSNL", "MTNL", "Tejas Networks"}},
	{Name: "Test Set 3: AI Companies", Entities: []string{"OpenAI", "Anthropic", "Google Deepmind", "Microsoft", "Meta"}},
	{Name: "Test Set 4: Tech Giants", Entities: []string{"Microsoft", "Google", "Apple", "Meta"}},
}

// Load reads configuration from environment variables, applying defaults when
// values are not provided. Missing credentials are fatal: the pipeline must
// not start without them.
func Load() (Config, error) {
	cfg := Config{
		NewsAPIKey:  os.Getenv("NEWS_API_KEY"),
		AIAPIKey:    os.Getenv("AI_API_KEY"),
		AIProvider:  getEnv("AI_PROVIDER", defaultProvider),
		AIModel:     os.Getenv("AI_MODEL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		OutputPath:  getEnv("OUTPUT_PATH", defaultOutputPath),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		WindowDays:  defaultWindowDays,
		EntitySet:   EntitySets[0],
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
	}

	if cfg.NewsAPIKey == "" {
		return Config{}, fmt.Errorf("missing required environment variable: NEWS_API_KEY")
	}
	if cfg.AIAPIKey == "" {
		return Config{}, fmt.Errorf("missing required environment variable: AI_API_KEY")
	}

	storageType := StorageType(getEnv("STORAGE_TYPE", string(StorageTypeCSV)))
	switch storageType {
	case StorageTypeDatabase, StorageTypeCSV:
		cfg.StorageType = storageType
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_TYPE: %s (must be 'database' or 'csv')", storageType)
	}

	if cfg.StorageType == StorageTypeDatabase && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_TYPE is 'database'")
	}

	if v := os.Getenv("NEWS_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return Config{}, fmt.Errorf("invalid NEWS_WINDOW_DAYS: must be a positive integer")
		}
		cfg.WindowDays = days
	}

	if v := os.Getenv("TEST_SET"); v != "" {
		idx, err := strconv.Atoi(v)
		if err != nil || idx < 1 || idx > len(EntitySets) {
			return Config{}, fmt.Errorf("invalid TEST_SET: must be between 1 and %d", len(EntitySets))
		}
		cfg.EntitySet = EntitySets[idx-1]
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
