package db

import (
	"context"
	"testing"
)

func TestOpen_EmptyDSN(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestOpen_InvalidDSN(t *testing.T) {
	if _, err := Open(context.Background(), "postgres://%zz"); err == nil {
		t.Fatal("expected parse error for malformed dsn")
	}
}

func TestPoolConfig_EnvSizing(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("DB_MIN_CONNS", "8")
	cfg, err := poolConfig("postgres://u:p@localhost:5432/mentor")
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if cfg.MaxConns != 4 || cfg.MinConns != 4 {
		t.Fatalf("expected max=4 min=4, got max=%d min=%d", cfg.MaxConns, cfg.MinConns)
	}
}

func TestPoolConfig_Defaults(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("DB_MIN_CONNS", "")
	cfg, err := poolConfig("postgres://u:p@localhost:5432/mentor")
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if cfg.MaxConns != 10 || cfg.MinConns != 1 {
		t.Fatalf("expected defaults, got max=%d min=%d", cfg.MaxConns, cfg.MinConns)
	}
}
