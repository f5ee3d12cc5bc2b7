package store

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

func newRedisKV(t *testing.T, opts ...RedisOption) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv, err := NewRedisKV("redis://"+mr.Addr(), opts...)
	if err != nil {
		t.Fatalf("NewRedisKV: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv, mr
}

// newPostgresKV returns nil unless TEST_DATABASE_URL points at a scratch
// database. The kv_store table is truncated on every call.
func newPostgresKV(t *testing.T) *PostgresKV {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool: %v", err)
	}
	t.Cleanup(pool.Close)
	kv := NewPostgresKV(pool)
	if err := kv.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE kv_store"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return kv
}

func backends(t *testing.T) map[string]KV {
	redisKV, _ := newRedisKV(t)
	out := map[string]KV{
		"memory": NewMemoryKV(),
		"redis":  redisKV,
	}
	if pg := newPostgresKV(t); pg != nil {
		out["postgres"] = pg
	}
	return out
}

func TestKV_GetMissing(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(context.Background(), "uniwise:threads")
			if !errors.Is(err, ErrKeyNotFound) {
				t.Fatalf("expected ErrKeyNotFound, got %v", err)
			}
		})
	}
}

func TestKV_SetGet(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := kv.Set(ctx, "k", []byte(`[1,2]`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := kv.Get(ctx, "k")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != `[1,2]` {
				t.Fatalf("expected [1,2], got %s", got)
			}
			if err := kv.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
		})
	}
}

func TestKV_UpdateAbortsOnError(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_ = kv.Set(ctx, "k", []byte(`"before"`))
			boom := errors.New("boom")
			err := kv.Update(ctx, "k", func([]byte) ([]byte, error) { return nil, boom })
			if !errors.Is(err, boom) {
				t.Fatalf("expected boom, got %v", err)
			}
			got, _ := kv.Get(ctx, "k")
			if string(got) != `"before"` {
				t.Fatalf("expected value untouched, got %s", got)
			}
		})
	}
}

func TestKV_UpdateMissingKeySeesNil(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			err := kv.Update(ctx, "fresh", func(cur []byte) ([]byte, error) {
				if cur != nil {
					t.Fatalf("expected nil for missing key, got %s", cur)
				}
				return []byte(`[]`), nil
			})
			if err != nil {
				t.Fatalf("update: %v", err)
			}
		})
	}
}

// Concurrent increments must not lose updates on any backend.
func TestKV_UpdateIsAtomic(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const workers = 20
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := kv.Update(ctx, "counter", func(cur []byte) ([]byte, error) {
						n := 0
						if cur != nil {
							n, _ = strconv.Atoi(string(cur))
						}
						return []byte(strconv.Itoa(n + 1)), nil
					})
					if err != nil && !errors.Is(err, ErrConflict) {
						t.Errorf("update: %v", err)
					}
				}()
			}
			wg.Wait()
			got, err := kv.Get(ctx, "counter")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if name == "memory" && string(got) != strconv.Itoa(workers) {
				t.Fatalf("expected %d, got %s", workers, got)
			}
		})
	}
}

func TestRedisKV_ConflictHookAndRetry(t *testing.T) {
	var conflicts int
	kv, mr := newRedisKV(t, WithConflictHook(func(string) { conflicts++ }), WithMaxRetries(3))
	ctx := context.Background()

	attempts := 0
	err := kv.Update(ctx, "k", func(cur []byte) ([]byte, error) {
		attempts++
		if attempts == 1 {
			// Another client writes between WATCH and EXEC.
			if err := mr.Set("k", `"other"`); err != nil {
				t.Fatalf("miniredis set: %v", err)
			}
		}
		return []byte(`"mine"`), nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if conflicts != 1 {
		t.Fatalf("expected 1 conflict, got %d", conflicts)
	}
	got, _ := kv.Get(ctx, "k")
	if string(got) != `"mine"` {
		t.Fatalf("expected retry to win, got %s", got)
	}
}

func TestRedisKV_GivesUpAfterMaxRetries(t *testing.T) {
	kv, mr := newRedisKV(t, WithMaxRetries(2))
	n := 0
	err := kv.Update(context.Background(), "k", func([]byte) ([]byte, error) {
		n++
		_ = mr.Set("k", strconv.Itoa(n))
		return []byte(`"mine"`), nil
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestNewRedisKV_BadURL(t *testing.T) {
	if _, err := NewRedisKV("not a url"); err == nil {
		t.Fatal("expected error for malformed url")
	}
}

func TestKVInterface(t *testing.T) {
	var _ KV = (*MemoryKV)(nil)
	var _ KV = (*RedisKV)(nil)
	var _ KV = (*PostgresKV)(nil)
}

func TestKey(t *testing.T) {
	if got := Key("", KeyThreads); got != "uniwise:threads" {
		t.Fatalf("expected default namespace, got %q", got)
	}
	if got := Key(" staging ", KeyFlags); got != "staging:flags" {
		t.Fatalf("expected staging:flags, got %q", got)
	}
}
