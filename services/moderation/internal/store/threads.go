package store

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Thread categories offered by the community board.
var ThreadCategories = []string{"Admissions", "Exams", "Campus Life", "Scholarships", "Careers"}

type Threads struct {
	c       *Collection[Thread]
	answers *Answers
	now     func() time.Time
	newID   func() string
}

func (r *Threads) Collection() *Collection[Thread] { return r.c }

// Create stores a new thread with empty vote sets.
func (r *Threads) Create(ctx context.Context, t Thread) (Thread, error) {
	t.AuthorID = strings.TrimSpace(t.AuthorID)
	t.Title = strings.TrimSpace(t.Title)
	t.Content = strings.TrimSpace(t.Content)
	switch {
	case t.AuthorID == "":
		return Thread{}, Invalid("authorId", "required")
	case t.Title == "":
		return Thread{}, Invalid("title", "required")
	case t.Content == "":
		return Thread{}, Invalid("content", "required")
	}
	if !validCategory(t.Category) {
		return Thread{}, Invalid("category", "must be one of "+strings.Join(ThreadCategories, ", "))
	}

	t.ID = "thread-" + r.newID()
	t.CreatedAt = r.now()
	t.Votes = Votes{}
	NormalizeVotes(&t.Votes)

	err := r.c.Mutate(ctx, func(items []Thread) ([]Thread, error) {
		return append(items, t), nil
	})
	if err != nil {
		return Thread{}, err
	}
	return t, nil
}

func (r *Threads) Get(ctx context.Context, id string) (Thread, error) {
	items, err := r.c.All(ctx)
	if err != nil {
		return Thread{}, err
	}
	for _, t := range items {
		if t.ID == id {
			return t, nil
		}
	}
	return Thread{}, ErrNotFound
}

// List returns all threads, most recent first.
func (r *Threads) List(ctx context.Context) ([]Thread, error) {
	items, err := r.c.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// Delete removes the thread and then its answers. The two writes are not
// atomic together. Returns false when the thread does not exist.
func (r *Threads) Delete(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.c.Mutate(ctx, func(items []Thread) ([]Thread, error) {
		removed = false
		out := items[:0]
		for _, t := range items {
			if t.ID == id {
				removed = true
				continue
			}
			out = append(out, t)
		}
		return out, nil
	})
	if err != nil || !removed {
		return false, err
	}
	if err := r.answers.deleteByThread(ctx, id); err != nil {
		return true, err
	}
	return true, nil
}

func validCategory(c string) bool {
	for _, v := range ThreadCategories {
		if v == c {
			return true
		}
	}
	return false
}
