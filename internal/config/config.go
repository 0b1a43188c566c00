package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	AppBaseURL      string
	SessionDuration time.Duration

	// Database: sqlite (default), postgres or mysql
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	MigrationsPath string

	// Blob storage: local (default) or s3
	StorageBackend string
	StoragePath    string
	S3Bucket       string
	S3Region       string

	// Password reset email (disabled when SESFromEmail is empty)
	SESRegion    string
	SESFromEmail string
	SESFromName  string

	// Google sign-in (disabled when client ID is empty)
	GoogleClientID     string
	GoogleClientSecret string

	UploadMaxSize int64

	// When true, a failed sign-up step rolls back the steps before it
	// instead of leaving them in place.
	SignupRollback bool
}

// Load reads configuration from environment variables with sensible
// defaults. A local .env file is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),
		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),

		DatabaseType: getEnv("DB_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./familycircle.db"),
		DatabaseURL:  os.Getenv("DB_URL"),

		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		StoragePath:    getEnv("STORAGE_PATH", "./data/files"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),

		SESRegion:    getEnv("SES_REGION", "us-east-1"),
		SESFromEmail: os.Getenv("SES_FROM_EMAIL"),
		SESFromName:  getEnv("SES_FROM_NAME", "Family Circle"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

		UploadMaxSize: 5 * 1024 * 1024, // 5MB

		SignupRollback: getEnv("SIGNUP_ROLLBACK", "false") == "true",
	}
}

// getEnv reads an environment variable or returns a default value
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
