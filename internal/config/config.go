// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the commands need.
type Config struct {
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	Port     string
	Env      string
	LogLevel string

	JWTSecret string
	JWTTTL    time.Duration

	SubscriptionWarningDays int
	BcryptCost              int
	MetricsEnabled          bool

	AdminUsername string
	AdminPassword string
}

// IsDevelopment reports whether pretty console logging should be used.
func (c Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads a .env file when present, then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}

	cfg := Config{
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		DBMaxConns:              int32(getEnvInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getEnvInt("DB_MIN_CONNS", 1)),
		Port:                    getEnv("APP_PORT", "8080"),
		Env:                     getEnv("APP_ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		JWTSecret:               getEnv("JWT_SECRET", "change-me-in-production"),
		JWTTTL:                  getEnvDuration("JWT_TTL", 12*time.Hour),
		SubscriptionWarningDays: getEnvInt("SUBSCRIPTION_WARNING_DAYS", 5),
		BcryptCost:              getEnvInt("BCRYPT_COST", 10),
		MetricsEnabled:          getEnvBool("METRICS_ENABLED", true),
		AdminUsername:           getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:           os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("required environment variable DATABASE_URL not set")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		cfg.DBMinConns = cfg.DBMaxConns
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
