package main

import (
	"fmt"
	"os"
	"time"
)

// Config is read from the environment once at startup.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// DatabaseURL selects PostgreSQL; empty runs on the in-memory store.
	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	// MetadataFile is a fixture applied at startup.
	MetadataFile string

	AuthenticationOn bool
	JWTSecret        string

	MetadataCacheListen bool
	ShutdownTimeout     time.Duration
}

func loadConfig() Config {
	cfg := Config{
		Port:                getEnv("APP_PORT", "8080"),
		Env:                 getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DBMaxConns:          getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:          getEnvInt("DB_MIN_CONNS", 2),
		MetadataFile:        getEnv("METADATA_FILE", ""),
		AuthenticationOn:    getEnv("AUTHENTICATION_ON", "true") == "true",
		MetadataCacheListen: getEnv("METADATA_CACHE_LISTEN", "true") == "true",
		ShutdownTimeout:     getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
	if cfg.AuthenticationOn {
		cfg.JWTSecret = mustEnv("JWT_SECRET")
	}
	return cfg
}

// Development reports whether the service runs in development mode.
func (c Config) Development() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
