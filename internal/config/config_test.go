package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "prediction-league-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.DBURL != "" {
		t.Fatalf("expected empty DBURL by default, got %q", cfg.DBURL)
	}
	if cfg.KalshiTimeout != 20*time.Second {
		t.Fatalf("unexpected KalshiTimeout: %s", cfg.KalshiTimeout)
	}
	if cfg.SweepWorkers != 4 {
		t.Fatalf("unexpected SweepWorkers: %d", cfg.SweepWorkers)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/123"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/123" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_QStashRequiresTokensWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("QSTASH_ENABLED", "true")
	t.Setenv("QSTASH_TOKEN", "qs-token")
	t.Setenv("QSTASH_TARGET_BASE_URL", "https://api.example.com")
	t.Setenv("INTERNAL_JOB_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when QSTASH_ENABLED=true without INTERNAL_JOB_TOKEN")
	}
}

func TestLoad_ProdRequiresServiceToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("SERVICE_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when APP_ENV=prod without SERVICE_TOKEN")
	}
}

func TestLoad_KalshiSettings(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("KALSHI_API_KEY", "key-123")
	t.Setenv("KALSHI_CATEGORIES", "Crypto, Sports ,Economics")
	t.Setenv("KALSHI_MAX_RETRIES", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.KalshiAPIKey != "key-123" {
		t.Fatalf("unexpected KalshiAPIKey")
	}
	if len(cfg.KalshiCategories) != 3 || cfg.KalshiCategories[1] != "Sports" {
		t.Fatalf("unexpected KalshiCategories: %v", cfg.KalshiCategories)
	}
	if cfg.KalshiMaxRetries != 3 {
		t.Fatalf("unexpected KalshiMaxRetries: %d", cfg.KalshiMaxRetries)
	}
}
