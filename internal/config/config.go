// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppEnv          string
	Port            string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	TokenTTLMinutes int
	MaxClients      int
	LogLevel        string
	LogFormat       string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(cfg.JWTSecret))
	}

	ttl, err := getEnvInt("TOKEN_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL_MINUTES must be positive, got %d", ttl)
	}
	cfg.TokenTTLMinutes = ttl

	maxClients, err := getEnvInt("MAX_CLIENTS", 512)
	if err != nil {
		return nil, err
	}
	if maxClients <= 0 {
		return nil, fmt.Errorf("MAX_CLIENTS must be positive, got %d", maxClients)
	}
	cfg.MaxClients = maxClients

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}
