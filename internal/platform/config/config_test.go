package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresServiceName(t *testing.T) {
	t.Setenv("SERVICE_NAME", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without SERVICE_NAME")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", " moderation ")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "moderation" {
		t.Fatalf("expected trimmed service name, got %q", cfg.ServiceName)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected info, got %q", cfg.LogLevel)
	}
	if cfg.IsProduction() {
		t.Fatal("expected development env by default")
	}
}

func TestLoad_Production(t *testing.T) {
	t.Setenv("SERVICE_NAME", "moderation")
	t.Setenv("APP_ENV", "Production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production env")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "  value ")
	t.Setenv("X_INT", "12")
	t.Setenv("X_BAD_INT", "-3")
	t.Setenv("X_DUR", "250ms")
	t.Setenv("X_BAD_DUR", "later")

	if got := String("X_STR", "def"); got != "value" {
		t.Fatalf("String: got %q", got)
	}
	if got := String("X_MISSING", "def"); got != "def" {
		t.Fatalf("String fallback: got %q", got)
	}
	if got := Int("X_INT", 1); got != 12 {
		t.Fatalf("Int: got %d", got)
	}
	if got := Int("X_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: got %d", got)
	}
	if got := Duration("X_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("Duration: got %s", got)
	}
	if got := Duration("X_BAD_DUR", time.Second); got != time.Second {
		t.Fatalf("Duration fallback: got %s", got)
	}
}
