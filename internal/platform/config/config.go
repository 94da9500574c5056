package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	JurisdictionPolicyReject = "reject"
	JurisdictionPolicyZero   = "zero"
)

type Config struct {
	Addr              string
	DatabaseURL       string
	JWTSecret         string
	DataEncryptionKey string
	Environment       string

	VerifyBaseURL     string
	PaystubStorageDir string
	TaxTablesPath     string

	UnknownStatePolicy string
	RunParallelism     int
	PersistRetries     int
	PersistBackoff     time.Duration

	SeedTenantName    string
	SeedAdminEmail    string
	SeedAdminPassword string

	RunMigrations bool
	RunSeed       bool

	MaxBodyBytes       int64
	RateLimitPerMinute int
	MetricsEnabled     bool
}

func Load() Config {
	return Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		DataEncryptionKey: getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:       getEnv("APP_ENV", "development"),

		VerifyBaseURL:     getEnv("VERIFY_BASE_URL", "http://localhost:8080"),
		PaystubStorageDir: getEnv("PAYSTUB_STORAGE_DIR", "data/paystubs"),
		TaxTablesPath:     getEnv("TAX_TABLES_PATH", ""),

		UnknownStatePolicy: getEnv("TAX_UNKNOWN_STATE_POLICY", JurisdictionPolicyReject),
		RunParallelism:     getEnvInt("RUN_PARALLELISM", 4),
		PersistRetries:     getEnvInt("PERSIST_RETRIES", 3),
		PersistBackoff:     getEnvDuration("PERSIST_BACKOFF", 200*time.Millisecond),

		SeedTenantName:    getEnv("SEED_TENANT_NAME", "Default Agency"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),

		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:       getEnvBool("RUN_SEED", true),

		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.UnknownStatePolicy != JurisdictionPolicyReject && c.UnknownStatePolicy != JurisdictionPolicyZero {
		return fmt.Errorf("TAX_UNKNOWN_STATE_POLICY must be %q or %q", JurisdictionPolicyReject, JurisdictionPolicyZero)
	}
	if c.RunParallelism <= 0 {
		return fmt.Errorf("RUN_PARALLELISM must be positive")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func (c Config) ZeroUnknownJurisdiction() bool {
	return c.UnknownStatePolicy == JurisdictionPolicyZero
}
