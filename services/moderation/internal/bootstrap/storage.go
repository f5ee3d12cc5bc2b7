// Package bootstrap opens the storage backend chosen by configuration. It is
// shared by the service binary and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/mentor-platform/internal/platform/db"
	"github.com/example/mentor-platform/internal/platform/metrics"
	"github.com/example/mentor-platform/services/moderation/internal/config"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

// OpenKV connects the configured backend. The returned close func is never
// nil. m may be nil.
func OpenKV(ctx context.Context, cfg config.StorageConfig, log *zap.Logger, m *metrics.Metrics) (store.KV, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case config.BackendRedis:
		opts := []store.RedisOption{store.WithMaxRetries(cfg.RedisMaxRetries)}
		if m != nil {
			opts = append(opts, store.WithConflictHook(func(key string) {
				m.StoreConflicts.WithLabelValues(key).Inc()
			}))
		}
		kv, err := store.NewRedisKV(cfg.RedisURL, opts...)
		if err != nil {
			return nil, noop, fmt.Errorf("redis: %w", err)
		}
		if err := kv.Ping(ctx); err != nil {
			_ = kv.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		log.Info("storage backend: redis", zap.String("namespace", cfg.Namespace))
		return kv, func() { _ = kv.Close() }, nil

	case config.BackendPostgres:
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres: %w", err)
		}
		kv := store.NewPostgresKV(pool)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("postgres schema: %w", err)
		}
		log.Info("storage backend: postgres", zap.String("namespace", cfg.Namespace))
		return kv, pool.Close, nil

	case config.BackendMemory, "":
		log.Warn("storage backend: memory (development only, data is lost on restart)")
		return store.NewMemoryKV(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
