package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BaseURL   string
	UserAgent string
	FetchMode string
	ChromeBin string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	HTTPTimeoutSec int

	CacheDir      string
	OutputPath    string
	CSVOutputPath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		BaseURL:   strings.TrimRight(getEnv("BASE_URL", "https://disclosures-clerk.house.gov"), "/"),
		UserAgent: getEnv("USER_AGENT", "CongressTrades Research contact@example.com"),
		FetchMode: strings.ToLower(getEnv("FETCH_MODE", "http")),
		ChromeBin: getEnv("CHROME_BIN", ""),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 200),
		MaxRetries:     getEnvInt("MAX_RETRIES", 1),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SEC", 30),

		CacheDir:      getEnv("CACHE_DIR", "/tmp/congress-pdfs"),
		OutputPath:    getEnv("OUTPUT_PATH", "./public/data/congress-trades.json"),
		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "congress_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
