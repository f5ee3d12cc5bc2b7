package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection is a typed view of one JSON array stored under one key.
type Collection[T any] struct {
	kv        KV
	key       string
	normalize func(*T)
}

func NewCollection[T any](kv KV, key string, normalize func(*T)) *Collection[T] {
	return &Collection[T]{kv: kv, key: key, normalize: normalize}
}

func (c *Collection[T]) Key() string { return c.key }

// All loads the whole collection. An absent key reads as empty.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	raw, err := c.kv.Get(ctx, c.key)
	if errors.Is(err, ErrKeyNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	return c.decode(raw)
}

// Mutate loads the collection, hands it to fn and persists whatever fn
// returns, atomically for this key. An error from fn aborts the write and is
// returned as is.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	return c.kv.Update(ctx, c.key, func(cur []byte) ([]byte, error) {
		items, err := c.decode(cur)
		if err != nil {
			return nil, err
		}
		items, err = fn(items)
		if err != nil {
			return nil, err
		}
		return c.encode(items)
	})
}

// Replace overwrites the collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	raw, err := c.encode(items)
	if err != nil {
		return err
	}
	if err := c.kv.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}

func (c *Collection[T]) decode(raw []byte) ([]T, error) {
	items := []T{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	if c.normalize != nil {
		for i := range items {
			c.normalize(&items[i])
		}
	}
	return items, nil
}

func (c *Collection[T]) encode(items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	if c.normalize != nil {
		for i := range items {
			c.normalize(&items[i])
		}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.key, err)
	}
	return raw, nil
}
