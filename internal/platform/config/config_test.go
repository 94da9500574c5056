package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Addr:               ":8080",
		DatabaseURL:        "postgres://localhost/orbit",
		Environment:        "development",
		VerifyBaseURL:      "http://localhost:8080",
		PaystubStorageDir:  "data/paystubs",
		UnknownStatePolicy: JurisdictionPolicyReject,
		RunParallelism:     4,
		PersistRetries:     3,
		PersistBackoff:     200 * time.Millisecond,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestValidateRejectsUnknownPolicy(t *testing.T) {
	cfg := validConfig()
	cfg.UnknownStatePolicy = "guess"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bad jurisdiction policy")
	}
}

func TestValidateProductionRequiresSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET in production")
	}
}

func TestZeroUnknownJurisdiction(t *testing.T) {
	cfg := validConfig()
	if cfg.ZeroUnknownJurisdiction() {
		t.Fatal("reject policy must not report zero")
	}
	cfg.UnknownStatePolicy = JurisdictionPolicyZero
	if !cfg.ZeroUnknownJurisdiction() {
		t.Fatal("zero policy not reported")
	}
}
