// Package config provides configuration management for the template service.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Metrics   MetricsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	ServiceName     string
	ShutdownTimeout time.Duration
	TrustedProxies  []string // IPs or CIDRs allowed to set X-Forwarded-For; empty trusts none
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // zerolog level name: debug, info, warn, error
	Format string // "json" or "console"
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// CORSConfig holds cross-origin configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// MetricsConfig holds Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool
	Token   string // Optional bearer token guarding /metrics
}

// Supported log formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ServiceName:     getEnv("SERVICE_NAME", "kotlin-multimodule-template"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "10s"),
			TrustedProxies:  getEnvAsList("TRUSTED_PROXIES", nil),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", LogFormatJSON)),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
			Token:   GetSecret("METRICS_TOKEN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimit.RequestsPerMinute)
	}
	if c.Log.Format != LogFormatJSON && c.Log.Format != LogFormatConsole {
		return fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatConsole, c.Log.Format)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	for _, proxy := range c.Server.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy)
		}
	}
	return nil
}

func validProxy(proxy string) bool {
	if strings.Contains(proxy, "/") {
		_, _, err := net.ParseCIDR(proxy)
		return err == nil
	}
	return net.ParseIP(proxy) != nil
}

// Addr returns the listen address for the HTTP server
func (s *ServerConfig) Addr() string {
	return ":" + s.Port
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated environment variable, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		defaultDuration, _ := time.ParseDuration(defaultValue)
		return defaultDuration
	}
	return value
}
