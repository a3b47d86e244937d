package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected LogLevel: %q", cfg.LogLevel)
	}
	if cfg.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("unexpected ReadHeaderTimeout: %v", cfg.ReadHeaderTimeout)
	}
	if cfg.DBMaxConns != 10 || cfg.DBMinConns != 0 {
		t.Fatalf("unexpected pool sizing: max=%d min=%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if !cfg.MigrateOnStart {
		t.Fatalf("expected MigrateOnStart default true")
	}
	if cfg.ReadinessRequireDB || cfg.RequireTokenHMAC {
		t.Fatalf("expected strict policies off by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GATE_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("GATE_LOG_LEVEL", "debug")
	t.Setenv("GATE_HTTP_READ_TIMEOUT", "30s")
	t.Setenv("GATE_DB_MAX_CONNS", "25")
	t.Setenv("GATE_DB_MIGRATE", "false")
	t.Setenv("GATE_READINESS_REQUIRE_DB", "true")
	t.Setenv("GATE_REQUIRE_TOKEN_HMAC", "true")

	cfg := LoadConfig()

	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected LogLevel: %q", cfg.LogLevel)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Fatalf("unexpected ReadTimeout: %v", cfg.ReadTimeout)
	}
	if cfg.DBMaxConns != 25 {
		t.Fatalf("unexpected DBMaxConns: %d", cfg.DBMaxConns)
	}
	if cfg.MigrateOnStart {
		t.Fatalf("expected MigrateOnStart to be disabled")
	}
	if !cfg.ReadinessRequireDB || !cfg.RequireTokenHMAC {
		t.Fatalf("expected strict policies on")
	}
}

func TestValidateSecurityConfig(t *testing.T) {
	t.Setenv("GATE_TOKEN_HMAC_KEY", "")

	if err := ValidateSecurityConfig(Config{RequireTokenHMAC: false}); err != nil {
		t.Fatalf("policy off must not fail: %v", err)
	}

	if err := ValidateSecurityConfig(Config{RequireTokenHMAC: true}); err == nil {
		t.Fatalf("expected failure with missing HMAC key")
	}

	t.Setenv("GATE_TOKEN_HMAC_KEY", "too-short")
	if err := ValidateSecurityConfig(Config{RequireTokenHMAC: true}); err == nil {
		t.Fatalf("expected failure with short HMAC key")
	}

	t.Setenv("GATE_TOKEN_HMAC_KEY", "0123456789abcdef0123456789abcdef")
	if err := ValidateSecurityConfig(Config{RequireTokenHMAC: true}); err != nil {
		t.Fatalf("expected valid key to pass: %v", err)
	}
}
