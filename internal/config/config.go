package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode     string // Set via flag, not env
	AppName     string
	AppVersion  string
	Environment string

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort        string
	ServiceApiPort string
	CorsOrigins    []string

	// Verification provider
	ProviderBaseURL   string
	ProviderAPIKey    string
	ProviderProgramID string
	ProviderTimeout   time.Duration

	// VA registries
	GraveLocatorURL  string
	VLMURL           string
	ArmyExplorerURL  string
	RegistryTimeout  time.Duration
	LookupCacheTTL   time.Duration
	LookupPageSize   int
	AggregateTimeout time.Duration

	// Verification lifecycle
	VerificationExpiry   time.Duration
	ExpirySweepCron      string
	StatusRefreshDelay   time.Duration
	StatusRefreshMaxRuns int

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	DocumentURLTTL     time.Duration

	// Documents
	DocumentMaxSizeMB       int
	DocumentMaxDimension    int
	HistoryExportMaxRecords int

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	getSeconds := func(key, defaultValue string) (time.Duration, error) {
		seconds, err := strconv.ParseInt(getEnv(key, defaultValue), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "veterans")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8000")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.CorsOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"))

	cfg.AppName = getEnv("APP_NAME", "Veterans Verification API")
	cfg.AppVersion = getEnv("APP_VERSION", "1.0.0")
	cfg.Environment = getEnv("ENVIRONMENT", "development")

	cfg.ProviderBaseURL = getEnv("SHEERID_BASE_URL", "https://services.sheerid.com/rest/v2")
	cfg.ProviderAPIKey = getEnv("SHEERID_API_KEY", "")
	cfg.ProviderProgramID = getEnv("SHEERID_PROGRAM_ID", "690415d58971e73ca187d8c9")

	cfg.GraveLocatorURL = getEnv("GRAVE_LOCATOR_URL", "https://gravelocator.cem.va.gov")
	cfg.VLMURL = getEnv("VLM_URL", "https://www.vlm.cem.va.gov")
	cfg.ArmyExplorerURL = getEnv("ARMY_EXPLORER_URL", "https://ancexplorer.army.mil")
	cfg.ExpirySweepCron = getEnv("EXPIRY_SWEEP_CRON", "0 0 * * * *")

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "us-east-1")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	if cfg.JwtTTL, err = getSeconds("JWT_TTL_SECONDS", "86400"); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout, err = getSeconds("SHEERID_TIMEOUT_SECONDS", "30"); err != nil {
		return nil, err
	}
	if cfg.RegistryTimeout, err = getSeconds("REGISTRY_TIMEOUT_SECONDS", "30"); err != nil {
		return nil, err
	}
	if cfg.AggregateTimeout, err = getSeconds("AGGREGATE_TIMEOUT_SECONDS", "45"); err != nil {
		return nil, err
	}
	if cfg.StatusRefreshDelay, err = getSeconds("STATUS_REFRESH_DELAY_SECONDS", "60"); err != nil {
		return nil, err
	}
	if cfg.DocumentURLTTL, err = getSeconds("DOCUMENT_URL_TTL_SECONDS", "900"); err != nil {
		return nil, err
	}

	lookupCacheHours, err := strconv.ParseInt(getEnv("LOOKUP_CACHE_TTL_HOURS", "24"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LOOKUP_CACHE_TTL_HOURS: %w", err)
	}
	cfg.LookupCacheTTL = time.Duration(lookupCacheHours) * time.Hour

	expiryHours, err := strconv.ParseInt(getEnv("VERIFICATION_EXPIRY_HOURS", "72"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid VERIFICATION_EXPIRY_HOURS: %w", err)
	}
	cfg.VerificationExpiry = time.Duration(expiryHours) * time.Hour

	cfg.LookupPageSize, err = strconv.Atoi(getEnv("LOOKUP_PAGE_SIZE", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOOKUP_PAGE_SIZE: %w", err)
	}

	cfg.StatusRefreshMaxRuns, err = strconv.Atoi(getEnv("STATUS_REFRESH_MAX_RUNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATUS_REFRESH_MAX_RUNS: %w", err)
	}

	cfg.DocumentMaxSizeMB, err = strconv.Atoi(getEnv("DOCUMENT_MAX_SIZE_MB", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOCUMENT_MAX_SIZE_MB: %w", err)
	}

	cfg.DocumentMaxDimension, err = strconv.Atoi(getEnv("DOCUMENT_MAX_DIMENSION", "2400"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOCUMENT_MAX_DIMENSION: %w", err)
	}

	cfg.HistoryExportMaxRecords, err = strconv.Atoi(getEnv("HISTORY_EXPORT_MAX_RECORDS", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_EXPORT_MAX_RECORDS: %w", err)
	}

	// Rate Limiting
	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}

// ProviderEnabled reports whether verification provider calls can be made.
func (c *Config) ProviderEnabled() bool {
	return c.ProviderAPIKey != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
