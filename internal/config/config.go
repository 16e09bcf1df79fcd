// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds runtime settings read from the environment (and .env, if present).
type Config struct {
	HTTPAddr     string
	StoreBackend string
	KeyPrefix    string

	RedisAddr string
	RedisDB   int

	DatabaseURL string

	LogLevel logrus.Level
}

// Load reads the environment:
//   - PORT (default "8080"); the UI bridge always binds to localhost
//   - STORE_BACKEND: memory (default), redis or postgres
//   - STORE_KEY_PREFIX (optional)
//   - REDIS_ADDR (default "localhost:6379"), REDIS_DB (default 0)
//   - DATABASE_URL, or POSTGRES_USER/POSTGRES_PASSWORD/PG_HOST/PG_PORT/PG_DATABASE
//   - LOG_LEVEL (default "info")
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:     "localhost:" + getEnv("PORT", "8080"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		KeyPrefix:    os.Getenv("STORE_KEY_PREFIX"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = fmt.Sprintf(
				"postgres://%s:%s@%s:%s/%s",
				os.Getenv("POSTGRES_USER"),
				os.Getenv("POSTGRES_PASSWORD"),
				getEnv("PG_HOST", "localhost"),
				getEnv("PG_PORT", "5432"),
				getEnv("PG_DATABASE", "postgres"),
			)
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	lvl, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = lvl

	return cfg, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
