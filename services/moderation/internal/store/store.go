package store

import (
	"time"

	"github.com/google/uuid"
)

// Store groups the collections of one namespace.
type Store struct {
	KV       KV
	Threads  *Threads
	Answers  *Answers
	Messages *Messages
	Flags    *Collection[Flag]
}

type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the time source used to stamp createdAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDs overrides the id generator. Prefixes are still applied.
func WithIDs(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func New(kv KV, namespace string, opts ...Option) *Store {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, fn := range opts {
		fn(&o)
	}

	answers := &Answers{
		c:     NewCollection(kv, Key(namespace, KeyAnswers), normalizeAnswer),
		now:   o.now,
		newID: o.newID,
	}
	threads := &Threads{
		c:       NewCollection(kv, Key(namespace, KeyThreads), normalizeThread),
		answers: answers,
		now:     o.now,
		newID:   o.newID,
	}
	answers.threads = threads
	return &Store{
		KV:      kv,
		Threads: threads,
		Answers: answers,
		Messages: &Messages{
			c:     NewCollection[Message](kv, Key(namespace, KeyMessages), nil),
			now:   o.now,
			newID: o.newID,
		},
		Flags: NewCollection[Flag](kv, Key(namespace, KeyFlags), nil),
	}
}
