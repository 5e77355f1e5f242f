// Package config reads application settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	MediaDir      string
	UploadMaxSize int64

	// Postmark settings. Email features are disabled when the token is
	// empty.
	PostmarkToken string
	EmailFrom     string

	// S3-compatible object storage for uploaded images. Local disk is used
	// when no bucket is configured.
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// Load reads configuration from environment variables with sensible defaults.
// The JWT secret has no default and must be set in production.
func Load() *Config {
	return &Config{
		Port:      getEnv("DOSEWELL_PORT", "8080"),
		DBPath:    getEnv("DOSEWELL_DB_PATH", "dosewell.db"),
		LogLevel:  getEnv("DOSEWELL_LOG_LEVEL", "info"),
		LogFormat: getEnv("DOSEWELL_LOG_FORMAT", "text"),

		JWTSecret:       getEnv("DOSEWELL_JWT_SECRET", ""),
		AccessTokenTTL:  getDuration("DOSEWELL_ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("DOSEWELL_REFRESH_TOKEN_TTL", 7*24*time.Hour),

		MediaDir:      getEnv("DOSEWELL_MEDIA_DIR", "media"),
		UploadMaxSize: getInt64("DOSEWELL_UPLOAD_MAX_SIZE", 5*1024*1024),

		PostmarkToken: getEnv("DOSEWELL_POSTMARK_TOKEN", ""),
		EmailFrom:     getEnv("DOSEWELL_EMAIL_FROM", "noreply@dosewell.app"),

		S3Endpoint:  getEnv("DOSEWELL_S3_ENDPOINT", ""),
		S3Region:    getEnv("DOSEWELL_S3_REGION", "auto"),
		S3Bucket:    getEnv("DOSEWELL_S3_BUCKET", ""),
		S3AccessKey: getEnv("DOSEWELL_S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("DOSEWELL_S3_SECRET_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
