package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Firebase  FirebaseConfig
	Migration MigrationConfig
	App       AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type DatabaseConfig struct {
	// DSN takes precedence over the individual fields when set (e.g. a Supabase connection string).
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	URL string
}

type FirebaseConfig struct {
	CredentialsPath string
	AdminEmails     []string
}

type MigrationConfig struct {
	// LockBackend is one of "redis", "postgres" or "none".
	LockBackend   string
	// LockTTL is how long a crashed holder blocks a project. Live holders
	// refresh it every LockTTL/3 (redis backend; advisory locks end with the session).
	LockTTL       time.Duration
	SweepRate     float64
	SweepLimit    int
	SweepSchedule string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

const (
	LockBackendRedis    = "redis"
	LockBackendPostgres = "postgres"
	LockBackendNone     = "none"
)

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			AdminEmails:     getEnvAsList("ADMIN_EMAILS", nil),
		},
		Migration: MigrationConfig{
			LockBackend:   strings.ToLower(getEnv("MIGRATION_LOCK_BACKEND", LockBackendNone)),
			LockTTL:       getEnvAsDuration("MIGRATION_LOCK_TTL", 5*time.Minute),
			SweepRate:     getEnvAsFloat("SWEEP_RATE", 2),
			SweepLimit:    getEnvAsInt("SWEEP_LIMIT", 100),
			SweepSchedule: getEnv("SWEEP_SCHEDULE", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	switch c.Migration.LockBackend {
	case LockBackendNone, LockBackendPostgres:
	case LockBackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when MIGRATION_LOCK_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown MIGRATION_LOCK_BACKEND %q", c.Migration.LockBackend)
	}

	if c.Migration.LockTTL <= 0 {
		return fmt.Errorf("MIGRATION_LOCK_TTL must be positive")
	}

	if c.Migration.SweepRate <= 0 {
		return fmt.Errorf("SWEEP_RATE must be positive")
	}

	// admin routes run unauthenticated without Firebase, which is only
	// acceptable outside production
	if c.IsProduction() && c.Firebase.CredentialsPath == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required in production")
	}

	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
