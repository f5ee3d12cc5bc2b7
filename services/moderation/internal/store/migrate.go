package store

import "context"

// MigrateReport lists how many records each collection held when rewritten.
type MigrateReport struct {
	Threads  int `json:"threads"`
	Answers  int `json:"answers"`
	Messages int `json:"messages"`
	Flags    int `json:"flags"`
}

// Migrate rewrites every collection in its normalized form, so legacy
// records stop depending on read-time defaults. Each collection is rewritten
// atomically; the four rewrites are independent.
func (s *Store) Migrate(ctx context.Context) (MigrateReport, error) {
	var rep MigrateReport
	if err := rewrite(ctx, s.Threads.c, &rep.Threads); err != nil {
		return rep, err
	}
	if err := rewrite(ctx, s.Answers.c, &rep.Answers); err != nil {
		return rep, err
	}
	if err := rewrite(ctx, s.Messages.c, &rep.Messages); err != nil {
		return rep, err
	}
	if err := rewrite(ctx, s.Flags, &rep.Flags); err != nil {
		return rep, err
	}
	return rep, nil
}

func rewrite[T any](ctx context.Context, c *Collection[T], n *int) error {
	return c.Mutate(ctx, func(items []T) ([]T, error) {
		*n = len(items)
		return items, nil
	})
}
