// Package store is the persistence layer of the moderation service.
//
// Every collection (threads, answers, messages, flags) is a single JSON array
// stored under one namespaced key of a KV backend. Reads load the whole
// collection; writes replace it. KV.Update makes each read-modify-write
// atomic per key, so concurrent writers on a shared backend cannot lose
// each other's updates.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrKeyNotFound is returned by KV.Get for a key that was never written.
	ErrKeyNotFound = errors.New("store: key not found")
	// ErrConflict is returned when an optimistic update kept losing to
	// concurrent writers.
	ErrConflict = errors.New("store: too many concurrent updates")
)

// KV is the persistence adapter. Values are opaque JSON documents.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Update reads key (nil when absent), passes it to fn and writes the
	// result back atomically. When fn returns an error nothing is written and
	// the error is returned unchanged. fn may run more than once.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
	Ping(ctx context.Context) error
}

const DefaultNamespace = "uniwise"

// Collection names.
const (
	KeyThreads  = "threads"
	KeyAnswers  = "answers"
	KeyMessages = "messages"
	KeyFlags    = "flags"
)

// Key builds the namespaced storage key for a collection.
func Key(namespace, collection string) string {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace + ":" + collection
}
