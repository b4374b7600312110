// Package config provides configuration for the memory service.
package config

import (
	"os"
	"strconv"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Storage
	DatabaseURL string
	ExportDir   string

	// Audit
	AuditLogDir string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:    getEnvInt("HTTP_PORT", 8080),
		DatabaseURL: getEnv("DATABASE_URL", "file:localmem.db?cache=shared&mode=rwc"),
		ExportDir:   getEnv("EXPORT_DIR", "./exports"),
		AuditLogDir: getEnv("AUDIT_LOG_DIR", "./audit_logs"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
