package config

import (
	"errors"
	"fmt"
	"strings"

	platform "github.com/example/mentor-platform/internal/platform/config"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"

	DefaultRedisMaxRetries = 16
)

type StorageConfig struct {
	Backend     string
	Namespace   string
	RedisURL    string
	DatabaseURL string
	// Optimistic transaction attempts per RedisKV update.
	RedisMaxRetries int
}

type Config struct {
	platform.AppConfig
	GRPCAddr  string
	JWTSecret string
	NATSURL   string
	Storage   StorageConfig
}

func Load() (Config, error) {
	app, err := platform.Load()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppConfig: app,
		GRPCAddr:  platform.String("GRPC_ADDR", ":9094"),
		JWTSecret: platform.String("JWT_SECRET", ""),
		NATSURL:   platform.String("NATS_URL", ""),
		Storage: StorageConfig{
			Backend:         platform.String("STORAGE_BACKEND", ""),
			Namespace:       platform.String("STORAGE_NAMESPACE", store.DefaultNamespace),
			RedisURL:        platform.String("REDIS_URL", ""),
			DatabaseURL:     platform.String("DATABASE_URL", ""),
			RedisMaxRetries: platform.Int("REDIS_MAX_RETRIES", DefaultRedisMaxRetries),
		},
	}
	cfg.Storage = cfg.Storage.Resolved()

	switch cfg.Storage.Backend {
	case BackendMemory:
		if cfg.IsProduction() {
			return Config{}, errors.New("in-memory storage is not allowed in production; set REDIS_URL or DATABASE_URL")
		}
	case BackendRedis:
		if cfg.Storage.RedisURL == "" {
			return Config{}, errors.New("REDIS_URL is required for the redis backend")
		}
	case BackendPostgres:
		if cfg.Storage.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required for the postgres backend")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}

	if cfg.JWTSecret == "" && cfg.IsProduction() {
		return Config{}, errors.New("JWT_SECRET is required in production")
	}
	return cfg, nil
}

// Resolved normalizes the backend name and fills the defaults. An empty
// backend is inferred from the URLs, Postgres first.
func (s StorageConfig) Resolved() StorageConfig {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Backend == "" {
		switch {
		case s.DatabaseURL != "":
			s.Backend = BackendPostgres
		case s.RedisURL != "":
			s.Backend = BackendRedis
		default:
			s.Backend = BackendMemory
		}
	}
	if s.Namespace == "" {
		s.Namespace = store.DefaultNamespace
	}
	if s.RedisMaxRetries <= 0 {
		s.RedisMaxRetries = DefaultRedisMaxRetries
	}
	return s
}
