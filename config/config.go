package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// KV backend selectors.
const (
	KVBackendFile     = "file"
	KVBackendPostgres = "postgres"
	KVBackendR2       = "r2"
	KVBackendMemory   = "memory"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	JWTSecret     string
	AllowedOrigin string

	// Key-value persistence
	KVBackend  string
	KVFilePath string
	// Postgres backend
	DBUrl             string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// R2 backend
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2Timeout         time.Duration

	// Upstream catalog API
	CatalogBaseURL  string
	CatalogTimeout  time.Duration
	CatalogCacheTTL time.Duration

	// Per-user favorites sessions
	SessionTTL         time.Duration
	SessionSweepPeriod time.Duration

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: try .env (standard local dev). Absent .env
		// is fine; docker/prod envs rely on system env vars.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		KVBackend:  getEnv("KV_BACKEND", KVBackendFile),
		KVFilePath: getEnv("KV_FILE_PATH", "./data/kv"),

		DBUrl:             getEnv("DB_DSN", ""),
		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2Timeout:         getDurationEnv("R2_TIMEOUT", 10*time.Second),

		CatalogBaseURL:  getEnv("CATALOG_BASE_URL", "https://64a6a95e096b3f0fcc80e139.mockapi.io"),
		CatalogTimeout:  getDurationEnv("CATALOG_TIMEOUT", 10*time.Second),
		CatalogCacheTTL: getDurationEnv("CATALOG_CACHE_TTL", 10*time.Minute),

		SessionTTL:         getDurationEnv("SESSION_TTL", 30*time.Minute),
		SessionSweepPeriod: getDurationEnv("SESSION_SWEEP_PERIOD", 5*time.Minute),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	switch c.KVBackend {
	case KVBackendFile, KVBackendMemory:
	case KVBackendPostgres:
		if c.DBUrl == "" {
			log.Fatal("CRITICAL: DB_DSN is required when KV_BACKEND=postgres")
		}
	case KVBackendR2:
		if c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2AccessKeySecret == "" || c.R2BucketName == "" {
			log.Fatal("CRITICAL: R2 credentials are required when KV_BACKEND=r2")
		}
	default:
		log.Fatalf("CRITICAL: unknown KV_BACKEND %q", c.KVBackend)
	}

	if c.CatalogBaseURL == "" {
		log.Fatal("CRITICAL: CATALOG_BASE_URL is required")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
