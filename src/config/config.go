package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Events    EventsConfig
	Engine    EngineConfig
	Portfolio PortfolioConfig
	LogLevel  string
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Port string
}

// StorageConfig selects the loan repository.
type StorageConfig struct {
	Backend     string // memory, sqlite or postgres
	SQLitePath  string
	PostgresDSN string
}

// CacheConfig configures schedule caching. An empty RedisAddr selects the in-process cache.
type CacheConfig struct {
	RedisAddr   string
	TTL         time.Duration
	Size        int
	CleanupCron string
}

// EventsConfig configures loan event publishing. An empty AMQPURL disables it.
type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

// EngineConfig holds amortization engine limits.
type EngineConfig struct {
	Precision  int32
	MaxPeriods int
}

// PortfolioConfig holds portfolio computation options.
type PortfolioConfig struct {
	Workers int
}

// Load reads environment variables (optionally from the provided file) and
// materializes a validated Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when the environment is set directly
		_ = godotenv.Load()
	}

	var parseErrs []error

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Storage: StorageConfig{
			Backend:     getenvWithDefault("STORAGE_BACKEND", "sqlite"),
			SQLitePath:  getenvWithDefault("SQLITE_DB_PATH", "data/loans.db"),
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
		},
		Cache: CacheConfig{
			RedisAddr:   os.Getenv("REDIS_ADDR"),
			TTL:         getenvDuration("CACHE_TTL", time.Hour, &parseErrs),
			Size:        getenvInt("CACHE_SIZE", 512, &parseErrs),
			CleanupCron: getenvWithDefault("CACHE_CLEANUP_CRON", "*/10 * * * *"),
		},
		Events: EventsConfig{
			AMQPURL:  os.Getenv("AMQP_URL"),
			Exchange: getenvWithDefault("AMQP_EXCHANGE", "loans"),
		},
		Engine: EngineConfig{
			Precision:  int32(getenvInt("SCHEDULE_PRECISION", 10, &parseErrs)),
			MaxPeriods: getenvInt("MAX_PERIODS", 1200, &parseErrs),
		},
		Portfolio: PortfolioConfig{
			Workers: getenvInt("PORTFOLIO_WORKERS", 4, &parseErrs),
		},
		LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
	}

	if len(parseErrs) > 0 {
		return nil, errors.Join(parseErrs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("APP_PORT must be provided"))
	}

	switch c.Storage.Backend {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_DB_PATH must be provided for the sqlite backend"))
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN must be provided for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be memory, sqlite or postgres, got %q", c.Storage.Backend))
	}

	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL must not be negative"))
	}
	if c.Cache.Size <= 0 {
		errs = append(errs, errors.New("CACHE_SIZE must be positive"))
	}
	if _, err := cron.ParseStandard(c.Cache.CleanupCron); err != nil {
		errs = append(errs, fmt.Errorf("CACHE_CLEANUP_CRON is invalid: %w", err))
	}

	if c.Events.AMQPURL != "" && c.Events.Exchange == "" {
		errs = append(errs, errors.New("AMQP_EXCHANGE must be provided when AMQP_URL is set"))
	}

	if c.Engine.Precision < 2 || c.Engine.Precision > 20 {
		errs = append(errs, errors.New("SCHEDULE_PRECISION must be between 2 and 20"))
	}
	if c.Engine.MaxPeriods <= 0 {
		errs = append(errs, errors.New("MAX_PERIODS must be positive"))
	}

	if c.Portfolio.Workers <= 0 {
		errs = append(errs, errors.New("PORTFOLIO_WORKERS must be positive"))
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL is invalid: %w", err))
	}

	return errors.Join(errs...)
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer: %w", key, err))
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a duration: %w", key, err))
		return fallback
	}
	return d
}
