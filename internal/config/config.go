package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/darkodi/link-shortener/internal/logger"
)

// Store drivers understood by repository.New
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Log      logger.Config
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the host:port the server listens on
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig holds link store settings
type DatabaseConfig struct {
	Driver       string // "sqlite", "postgres", "redis"
	Path         string // sqlite file path
	URL          string // postgres connection string
	RedisURL     string
	MaxOpenConns int
}

// AppConfig holds application-specific settings
type AppConfig struct {
	BaseURL         string
	Environment     string // "development", "production", "testing"
	ClickTimeout    time.Duration
	MaxURLLength    int
	AllowedSchemes  []string // empty allows any scheme
	BlockedDomains  []string
	BlockPrivateIPs bool
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("HOST", "0.0.0.0"),
			Port:            getEnv("PORT", "3000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
			Path:         getEnv("DB_PATH", "./data/links.db"),
			URL:          getEnv("DATABASE_URL", ""),
			RedisURL:     getEnv("REDIS_URL", ""),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 10),
		},
		App: AppConfig{
			BaseURL:         getEnv("BASE_URL", ""),
			Environment:     getEnv("ENVIRONMENT", "development"),
			ClickTimeout:    getDurationEnv("CLICK_TIMEOUT", 5*time.Second),
			MaxURLLength:    getIntEnv("MAX_URL_LENGTH", 2048),
			AllowedSchemes:  getListEnv("ALLOWED_SCHEMES"),
			BlockedDomains:  getListEnv("BLOCKED_DOMAINS"),
			BlockPrivateIPs: getBoolEnv("BLOCK_PRIVATE_IPS", false),
		},
		Log: logger.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	// Set default BaseURL if not provided
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = fmt.Sprintf("http://localhost:%s", cfg.Server.Port)
	}
	cfg.App.BaseURL = strings.TrimRight(cfg.App.BaseURL, "/")
	cfg.Log.Environment = cfg.App.Environment

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate port
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s (must be 1-65535)", c.Server.Port)
	}

	// Validate base URL
	base, err := url.Parse(c.App.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("invalid base URL: %q (must be absolute)", c.App.BaseURL)
	}

	// Validate store settings
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path cannot be empty")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case DriverRedis:
		if c.Database.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be sqlite, postgres, or redis)", c.Database.Driver)
	}

	if c.App.ClickTimeout <= 0 {
		return errors.New("click timeout must be positive")
	}
	if c.App.MaxURLLength <= 0 {
		return errors.New("max URL length must be positive")
	}

	// Validate environment
	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"testing":     true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, production, or testing)", c.App.Environment)
	}
	// Validate log level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ============================================================
// HELPER FUNCTIONS
// ============================================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

// getListEnv splits a comma-separated variable, dropping empty items
func getListEnv(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
