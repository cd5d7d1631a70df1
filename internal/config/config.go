// Package config loads the runtime configuration of the demo from a YAML file
// and SHAREDPOOL_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Supported database/sql driver names.
const (
	DriverPgx    = "pgx"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Config is the top-level configuration.
type Config struct {
	Pool PoolConfig `yaml:"pool"`
	Log  LogConfig  `yaml:"log"`
	Demo DemoConfig `yaml:"demo"`
}

// PoolConfig configures the connection pool.
type PoolConfig struct {
	// Capacity is the number of connections opened at startup.
	Capacity int `yaml:"capacity"`
	// Driver is one of pgx, mysql or sqlite3.
	Driver string `yaml:"driver"`
	// DSN is the driver-specific data source name.
	DSN string `yaml:"dsn"`
	// AcquireTimeout bounds how long a service waits for a connection.
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

// LogConfig configures the application log.
type LogConfig struct {
	// File is the path lines are appended to.
	File string `yaml:"file"`
	// Console mirrors every line to stdout.
	Console bool `yaml:"console"`
	// Level is the minimum logrus level of diagnostic messages.
	Level string `yaml:"level"`
}

// DemoConfig configures the demo entry point.
type DemoConfig struct {
	// Workers is the number of concurrent order workers.
	Workers int `yaml:"workers"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Pool: PoolConfig{
			Capacity:       5,
			Driver:         DriverSQLite,
			DSN:            "sharedpool.db",
			AcquireTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			File:    "app.log",
			Console: true,
			Level:   "info",
		},
		Demo: DemoConfig{
			Workers: 8,
		},
	}
}

// Load reads the configuration from path, if not empty, on top of the
// defaults and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SHAREDPOOL_POOL_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHAREDPOOL_POOL_CAPACITY: %w", err)
		}
		cfg.Pool.Capacity = n
	}
	cfg.Pool.Driver = getEnvOrDefault("SHAREDPOOL_DB_DRIVER", cfg.Pool.Driver)
	cfg.Pool.DSN = getEnvOrDefault("SHAREDPOOL_DB_DSN", cfg.Pool.DSN)
	if v := os.Getenv("SHAREDPOOL_ACQUIRE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHAREDPOOL_ACQUIRE_TIMEOUT: %w", err)
		}
		cfg.Pool.AcquireTimeout = d
	}

	cfg.Log.File = getEnvOrDefault("SHAREDPOOL_LOG_FILE", cfg.Log.File)
	cfg.Log.Level = getEnvOrDefault("SHAREDPOOL_LOG_LEVEL", cfg.Log.Level)
	if v := os.Getenv("SHAREDPOOL_LOG_CONSOLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SHAREDPOOL_LOG_CONSOLE: %w", err)
		}
		cfg.Log.Console = b
	}

	if v := os.Getenv("SHAREDPOOL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHAREDPOOL_WORKERS: %w", err)
		}
		cfg.Demo.Workers = n
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Pool.Capacity < 1 {
		return fmt.Errorf("pool.capacity must be at least 1, got %d", c.Pool.Capacity)
	}

	if c.Pool.DSN == "" {
		return fmt.Errorf("pool.dsn is required")
	}

	switch c.Pool.Driver {
	case DriverPgx:
		if _, err := pgx.ParseConfig(c.Pool.DSN); err != nil {
			return fmt.Errorf("pool.dsn is not a valid PostgreSQL connection string: %w", err)
		}
	case DriverMySQL:
		if _, err := mysql.ParseDSN(c.Pool.DSN); err != nil {
			return fmt.Errorf("pool.dsn is not a valid MySQL DSN: %w", err)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("pool.driver must be one of %s, %s, %s, got %q", DriverPgx, DriverMySQL, DriverSQLite, c.Pool.Driver)
	}

	if c.Pool.AcquireTimeout <= 0 {
		return fmt.Errorf("pool.acquire_timeout must be positive")
	}

	if c.Log.File == "" {
		return fmt.Errorf("log.file is required")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if c.Demo.Workers < 1 {
		return fmt.Errorf("demo.workers must be at least 1, got %d", c.Demo.Workers)
	}

	return nil
}

// getEnvOrDefault retrieves an environment variable or returns a default value
// if the variable is not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
