package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string
	FrontendURL string

	// Database (persisted subset: admin settings, user preferences)
	DBPath string

	// JWT
	JWTSecret         string
	JWTExpirationDays int

	// Remote chat backend; empty means local demo mode only
	RemoteAPIURL string

	// Sync
	SyncInterval time.Duration
	SyncPageSize int

	// Presence simulator
	SimulatorInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:4200"),

		// Database
		DBPath: getEnv("DB_PATH", "data/community-hub.db"),

		// Auth
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTExpirationDays: getEnvAsInt("JWT_EXPIRATION_DAYS", 7),

		// Remote backend
		RemoteAPIURL: getEnv("REMOTE_API_URL", ""),

		// Sync
		SyncInterval: getEnvAsDuration("SYNC_INTERVAL", 5*time.Second),
		SyncPageSize: getEnvAsInt("SYNC_PAGE_SIZE", 50),

		// Presence simulator
		SimulatorInterval: getEnvAsDuration("SIMULATOR_INTERVAL", 8*time.Second),
	}

	// Validate required configuration
	cfg.validate()

	return cfg
}

// validate checks that all required configuration is present
func (c *Config) validate() {
	if c.JWTSecret == "" {
		log.Fatal("FATAL: JWT_SECRET must be set")
	}
	if c.RemoteAPIURL == "" {
		log.Println("No REMOTE_API_URL configured - running in local demo mode")
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration reads an environment variable as duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
