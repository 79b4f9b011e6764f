package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Data source names accepted by DATA_SOURCE / BOND_SOURCE
const (
	SourceFinMind  = "finmind"
	SourcePostgres = "postgres"
	SourceYahoo    = "yahoo"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (read-only mirror, DATA_SOURCE=postgres)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	FinMind FinMindConfig

	// Sources
	DataSource       string
	BondSource       string
	DefaultBondYield float64

	// Analysis
	StrategyPath        string
	ReportDir           string
	AnalysisConcurrency int
	NewsDays            int
	ValuationYears      int

	// Logging
	LogLevel  string
	LogFormat string

	// Tracing
	TracingEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// FinMindConfig holds FinMind open data API configuration
type FinMindConfig struct {
	Token       string
	BaseURL     string
	RatePerHour int // 무료 계정 600회/시간
	Timeout     time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		FinMind: FinMindConfig{
			Token:       getEnv("FINMIND_TOKEN", ""),
			BaseURL:     getEnv("FINMIND_BASE_URL", "https://api.finmindtrade.com/api/v4"),
			RatePerHour: getEnvAsInt("FINMIND_RATE_PER_HOUR", 600),
			Timeout:     getEnvAsDuration("FINMIND_TIMEOUT", 30*time.Second),
		},

		// Sources
		DataSource:       getEnv("DATA_SOURCE", SourceFinMind),
		BondSource:       getEnv("BOND_SOURCE", SourceFinMind),
		DefaultBondYield: getEnvAsFloat("DEFAULT_BOND_YIELD", 4.0),

		// Analysis
		StrategyPath:        getEnv("STRATEGY_PATH", "config/strategy.yaml"),
		ReportDir:           getEnv("REPORT_DIR", "reports"),
		AnalysisConcurrency: getEnvAsInt("ANALYSIS_CONCURRENCY", 3),
		NewsDays:            getEnvAsInt("NEWS_DAYS", 90),
		ValuationYears:      getEnvAsInt("VALUATION_YEARS", 5),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		// Tracing
		TracingEnabled: getEnvAsBool("TRACING_ENABLED", false),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.DataSource {
	case SourceFinMind:
	case SourcePostgres:
		// Database URL is required only for the mirror
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: finmind, postgres")
	}

	if c.BondSource != SourceFinMind && c.BondSource != SourceYahoo {
		return fmt.Errorf("BOND_SOURCE must be one of: finmind, yahoo")
	}

	if c.AnalysisConcurrency < 1 {
		return fmt.Errorf("ANALYSIS_CONCURRENCY must be >= 1")
	}

	if c.FinMind.RatePerHour < 1 {
		return fmt.Errorf("FINMIND_RATE_PER_HOUR must be >= 1")
	}

	if c.DefaultBondYield <= 0 {
		return fmt.Errorf("DEFAULT_BOND_YIELD must be > 0")
	}

	if c.StrategyPath == "" {
		return fmt.Errorf("STRATEGY_PATH is required")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
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

// envAs parses key with parse; unset or malformed values yield def
func envAs[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func getEnvAsInt(key string, def int) int { return envAs(key, def, strconv.Atoi) }

func getEnvAsBool(key string, def bool) bool { return envAs(key, def, strconv.ParseBool) }

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	return envAs(key, def, time.ParseDuration)
}

func getEnvAsFloat(key string, def float64) float64 {
	return envAs(key, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}
