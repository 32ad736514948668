package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string

	RetailAPIBaseURL   string
	RetailAPIUserAgent string
	TokenFile          string

	SyncBatchSize         int
	SyncExistingThreshold int
	SyncRequestDelay      time.Duration

	ProductCacheTTL time.Duration
	SummaryCacheTTL time.Duration
}

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewForecastConfigHolder),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "pantrysense"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "pantrysense.db"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		RetailAPIBaseURL:   getenv("RETAIL_API_BASE_URL", "https://api.retailer.example"),
		RetailAPIUserAgent: getenv("RETAIL_API_USER_AGENT", "pantrysense/0.1"),
		TokenFile:          getenv("TOKEN_FILE", ".tokens.json"),

		SyncBatchSize:         getenvInt("SYNC_BATCH_SIZE", 50),
		SyncExistingThreshold: getenvInt("SYNC_EXISTING_THRESHOLD", 3),
		SyncRequestDelay:      getenvDuration("SYNC_REQUEST_DELAY", 500*time.Millisecond),

		ProductCacheTTL: getenvDuration("PRODUCT_CACHE_TTL", 30*24*time.Hour),
		SummaryCacheTTL: getenvDuration("SUMMARY_CACHE_TTL", 5*time.Minute),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
