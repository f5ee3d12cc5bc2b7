package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

type Answers struct {
	c       *Collection[Answer]
	threads *Threads
	now     func() time.Time
	newID   func() string
}

func (r *Answers) Collection() *Collection[Answer] { return r.c }

// Create stores an answer on an existing thread.
func (r *Answers) Create(ctx context.Context, a Answer) (Answer, error) {
	a.AuthorID = strings.TrimSpace(a.AuthorID)
	a.Content = strings.TrimSpace(a.Content)
	switch {
	case a.AuthorID == "":
		return Answer{}, Invalid("authorId", "required")
	case a.Content == "":
		return Answer{}, Invalid("content", "required")
	}
	if _, err := r.threads.Get(ctx, a.ThreadID); err != nil {
		return Answer{}, err
	}

	a.ID = "ans-" + r.newID()
	a.CreatedAt = r.now()
	a.Votes = Votes{}
	NormalizeVotes(&a.Votes)

	err := r.c.Mutate(ctx, func(items []Answer) ([]Answer, error) {
		return append(items, a), nil
	})
	if err != nil {
		return Answer{}, err
	}
	return a, nil
}

func (r *Answers) Get(ctx context.Context, id string) (Answer, error) {
	items, err := r.c.All(ctx)
	if err != nil {
		return Answer{}, err
	}
	for _, a := range items {
		if a.ID == id {
			return a, nil
		}
	}
	return Answer{}, ErrNotFound
}

// ListByThread returns the answers of a thread, highest upvotes first.
func (r *Answers) ListByThread(ctx context.Context, threadID string) ([]Answer, error) {
	items, err := r.c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := []Answer{}
	for _, a := range items {
		if a.ThreadID == threadID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Upvotes > out[j].Upvotes
	})
	return out, nil
}

// Delete removes one answer. Returns false when it does not exist.
func (r *Answers) Delete(ctx context.Context, id string) (bool, error) {
	err := r.c.Mutate(ctx, func(items []Answer) ([]Answer, error) {
		for i, a := range items {
			if a.ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *Answers) deleteByThread(ctx context.Context, threadID string) error {
	return r.c.Mutate(ctx, func(items []Answer) ([]Answer, error) {
		out := items[:0]
		for _, a := range items {
			if a.ThreadID != threadID {
				out = append(out, a)
			}
		}
		return out, nil
	})
}
