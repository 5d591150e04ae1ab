package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Session cache lifetimes for the conversational booking flow.
	SelectedTestTTL time.Duration
	DetailsTTL      time.Duration
	SessionLockTTL  time.Duration

	// SendGrid email configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// HMAC secret for lab portal tokens.
	PortalJWTSecret string

	// AdminEmail receives contact messages not addressed to a lab.
	AdminEmail string

	// Per-IP request rate for the chat endpoints. Zero disables
	// throttling.
	ChatRateLimit float64
	ChatRateBurst int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		SelectedTestTTL: getEnvAsDuration("SELECTED_TEST_TTL", 15*time.Minute),
		DetailsTTL:      getEnvAsDuration("DETAILS_TTL", 30*time.Minute),
		SessionLockTTL:  getEnvAsDuration("SESSION_LOCK_TTL", 10*time.Second),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "noreply@labease.app"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "LabEase"),

		PortalJWTSecret: getEnv("PORTAL_JWT_SECRET", ""),

		AdminEmail: getEnv("ADMIN_EMAIL", "support@labease.app"),

		ChatRateLimit: getEnvAsFloat("CHAT_RATE_LIMIT", 5),
		ChatRateBurst: getEnvAsInt("CHAT_RATE_BURST", 10),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
