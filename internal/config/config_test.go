package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.StorageMode != StorageModeMemory {
		t.Fatalf("expected memory storage mode by default, got %q", cfg.StorageMode)
	}
	if cfg.SnapshotTTL != 60*time.Second {
		t.Fatalf("unexpected SnapshotTTL: %s", cfg.SnapshotTTL)
	}
	if cfg.RefreshMaxWorkers != 4 {
		t.Fatalf("unexpected RefreshMaxWorkers: %d", cfg.RefreshMaxWorkers)
	}
	if cfg.SessionCookieSecure {
		t.Fatalf("expected insecure cookies outside prod by default")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_StorageModeValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_MODE", "filesystem")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid STORAGE_MODE")
	}
}

func TestLoad_BackendModeRequiresBaseURLAndAnonKey(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_MODE", StorageModeBackend)
	t.Setenv("BACKEND_BASE_URL", "")
	t.Setenv("BACKEND_ANON_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when STORAGE_MODE=backend without BACKEND_BASE_URL")
	}

	t.Setenv("BACKEND_BASE_URL", "https://project.supabase.co")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when STORAGE_MODE=backend without BACKEND_ANON_KEY")
	}

	t.Setenv("BACKEND_ANON_KEY", "anon-key")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BackendBaseURL != "https://project.supabase.co" {
		t.Fatalf("unexpected BackendBaseURL: %q", cfg.BackendBaseURL)
	}
}

func TestLoad_ProdDefaultsToSecureCookies(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.SessionCookieSecure {
		t.Fatalf("expected secure cookies by default in prod")
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

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_CircuitBreakerBounds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BACKEND_CIRCUIT_FAILURE_COUNT", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for BACKEND_CIRCUIT_FAILURE_COUNT < 1")
	}
}

func TestLoad_SnapshotTTLMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SNAPSHOT_TTL", "-5s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative SNAPSHOT_TTL")
	}
}
