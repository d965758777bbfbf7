// Package config handles application configuration.
//
// Go Pattern: Configuration via environment variables with sensible defaults.
// A struct holds the values and a Load function reads them — explicit, no
// framework.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// defaultJWTSecret is only acceptable in debug mode; Load refuses to start a
// release build with it.
const defaultJWTSecret = "dev-jwt-secret-change-in-production"

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    string
	GinMode string // "debug", "release", or "test"

	// Session token signing
	JWTSecret string

	// Admin key guarding the session administration endpoints.
	// Optional in dev, required in production.
	AdminKey string

	// Session behavior
	SessionTTL  time.Duration // idle time before a session is evicted
	DefaultUnit string        // real-world unit stamped on new drawings

	// Upload limits
	MaxUploadMB int64 // per-request cap for plan file uploads

	// Rate limiting
	RateLimit int // requests per hour per session

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// Session token signing
		JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),

		// Admin key — optional in dev, required in production
		AdminKey: getEnv("ADMIN_KEY", ""),

		// Session behavior
		SessionTTL:  getEnvDuration("SESSION_TTL", 4*time.Hour),
		DefaultUnit: getEnv("DEFAULT_UNIT", "ft"),

		// Uploads — plan sheets scan large, PDFs especially
		MaxUploadMB: int64(getEnvInt("MAX_UPLOAD_MB", 50)),

		// Rate limiting
		RateLimit: getEnvInt("RATE_LIMIT", 1000),

		// CORS — in production, set this to your frontend URL
		AllowedOrigins: []string{
			getEnv("CORS_ORIGIN", "http://localhost:5173"), // Vite dev server default
		},
	}

	// Security: JWT secret MUST be set in production mode.
	if cfg.GinMode == "release" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in production; refusing to start with default secret")
	}

	// Security: admin key MUST be set in production mode — it protects
	// session listing and deletion.
	if cfg.GinMode == "release" && cfg.AdminKey == "" {
		return nil, fmt.Errorf("ADMIN_KEY must be set in production; this protects session administration")
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt reads an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) int {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}
	return val
}

// getEnvDuration reads a duration environment variable ("30m", "4h") with a fallback.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := time.ParseDuration(str)
	if err != nil {
		return fallback
	}
	return val
}
