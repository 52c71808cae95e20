package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	App       AppConfig
	Jobs      JobsConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret      string
	CommissionRate decimal.Decimal
	CatalogFile    string
	LogLevel       string
}

// JobsConfig controls the background maturity sweep. A zero interval disables it.
type JobsConfig struct {
	MaturitySweepInterval time.Duration
	SweepBatchSize        int
}

// RedisConfig is optional; an empty host leaves the sweep unlocked.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RateLimitConfig applies per client IP on funds-moving routes.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	commissionRate, err := decimal.NewFromString(getEnv("COMMISSION_RATE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid COMMISSION_RATE: %w", err)
	}
	sweepInterval, err := time.ParseDuration(getEnv("MATURITY_SWEEP_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MATURITY_SWEEP_INTERVAL: %w", err)
	}
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	config := &Config{
		Database: loadDatabase(),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		App: AppConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			CommissionRate: commissionRate,
			CatalogFile:    getEnv("CATALOG_FILE", "config/catalog.yaml"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
		},
		Jobs: JobsConfig{
			MaturitySweepInterval: sweepInterval,
			SweepBatchSize:        getEnvInt("SWEEP_BATCH_SIZE", 100),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: rps,
			Burst:             getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if err := config.Database.validate(); err != nil {
		return nil, err
	}
	if config.App.CommissionRate.IsNegative() {
		return nil, fmt.Errorf("COMMISSION_RATE must not be negative")
	}

	return config, nil
}

// LoadDatabase reads only the database settings, for tools that do not
// serve the API.
func LoadDatabase() (DatabaseConfig, error) {
	_ = godotenv.Load()
	db := loadDatabase()
	return db, db.validate()
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Driver:     getEnv("DB_DRIVER", "postgres"),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       getEnv("DB_PORT", "5432"),
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "yield_ledger"),
		SQLitePath: getEnv("SQLITE_PATH", "yield_ledger.db"),
	}
}

func (d DatabaseConfig) validate() error {
	if d.Driver != "postgres" && d.Driver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.DBName,
	)
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return c.Database.DSN()
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
