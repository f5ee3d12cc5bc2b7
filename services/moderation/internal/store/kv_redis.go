package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const defaultRedisRetries = 16

// RedisKV stores each collection as a Redis string. Update uses
// WATCH/MULTI and retries when another client wrote the key in between.
type RedisKV struct {
	client     *redis.Client
	maxRetries int
	onConflict func(key string)
}

type RedisOption func(*RedisKV)

// WithConflictHook is called every time an optimistic transaction is retried.
func WithConflictHook(fn func(key string)) RedisOption {
	return func(r *RedisKV) { r.onConflict = fn }
}

// WithMaxRetries bounds the optimistic retry loop of Update.
func WithMaxRetries(n int) RedisOption {
	return func(r *RedisKV) {
		if n > 0 {
			r.maxRetries = n
		}
	}
}

func NewRedisKV(url string, opts ...RedisOption) (*RedisKV, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	r := &RedisKV{client: redis.NewClient(opt), maxRetries: defaultRedisRetries}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return v, err
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisKV) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			cur = nil
		case err != nil:
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < r.maxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if r.onConflict != nil {
			r.onConflict(key)
		}
	}
	return ErrConflict
}

func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}
