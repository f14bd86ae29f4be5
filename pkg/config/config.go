package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Data sources
	Universe UniverseConfig
	Yahoo    YahooConfig

	// Screening
	Screen ScreenConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
// URL may be empty: the screen command runs without persistence,
// serve and scheduler refuse to start without it.
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration for the snapshot cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// UniverseConfig holds the constituent-list source configuration.
type UniverseConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// YahooConfig holds the fundamentals API configuration.
type YahooConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Client-side throttle, requests per second with burst headroom.
	RateLimit float64
	RateBurst int
}

// ScreenConfig holds screening run defaults.
type ScreenConfig struct {
	Workers     int
	Top         int
	SnapshotTTL time.Duration
	Strategy    string // optional strategy YAML path
}

// SchedulerConfig holds scheduled-run configuration.
type SchedulerConfig struct {
	// Cron spec with seconds field, e.g. "0 30 17 * * 1-5".
	Spec string
	// Models screened on each tick.
	Models []string
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Data sources
		Universe: UniverseConfig{
			URL:       getEnv("UNIVERSE_URL", "https://www.slickcharts.com/sp500"),
			UserAgent: getEnv("UNIVERSE_USER_AGENT", defaultUserAgent),
			Timeout:   getEnvAsDuration("UNIVERSE_TIMEOUT", "30s"),
		},

		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			UserAgent: getEnv("YAHOO_USER_AGENT", defaultUserAgent),
			Timeout:   getEnvAsDuration("YAHOO_TIMEOUT", "20s"),
			RateLimit: getEnvAsFloat("YAHOO_RATE_LIMIT", 5),
			RateBurst: getEnvAsInt("YAHOO_RATE_BURST", 5),
		},

		// Screening
		Screen: ScreenConfig{
			Workers:     getEnvAsInt("SCREEN_WORKERS", 4),
			Top:         getEnvAsInt("SCREEN_TOP", 10),
			SnapshotTTL: getEnvAsDuration("SNAPSHOT_TTL", "24h"),
			Strategy:    getEnv("STRATEGY_FILE", ""),
		},

		// Scheduler
		Scheduler: SchedulerConfig{
			Spec:   getEnv("SCHEDULE_SPEC", "0 30 17 * * 1-5"),
			Models: getEnvAsSlice("SCHEDULE_MODELS", []string{"factor", "magicformula", "dividend"}),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Browser agent: the constituent page and the quote API both reject
// default Go user agents.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Screen.Workers < 1 {
		return fmt.Errorf("SCREEN_WORKERS must be at least 1")
	}

	if c.Screen.Top < 1 {
		return fmt.Errorf("SCREEN_TOP must be at least 1")
	}

	if c.Yahoo.RateLimit <= 0 {
		return fmt.Errorf("YAHOO_RATE_LIMIT must be positive")
	}

	return nil
}

// RequireDatabase returns an error when no DATABASE_URL is configured.
// Commands that persist or serve runs call this before connecting.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for this command")
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
