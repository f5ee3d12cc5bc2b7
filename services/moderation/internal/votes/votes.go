// Package votes keeps the up/down and like/dislike membership sets of
// threads and answers, together with the counters derived from them.
package votes

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/example/mentor-platform/internal/platform/metrics"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

// ErrSelfVote is returned when an actor votes on content they authored.
var ErrSelfVote = errors.New("cannot vote on own content")

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down:
		return d, nil
	}
	return "", store.Invalid("direction", "must be up or down")
}

type Engine struct {
	store   *store.Store
	metrics *metrics.Metrics
}

type Option func(*Engine)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{store: st}
	for _, fn := range opts {
		fn(e)
	}
	return e
}

// Vote casts an up or down vote. The opposing vote of the same actor is
// always withdrawn; the chosen one toggles.
func (e *Engine) Vote(ctx context.Context, target store.TargetType, entityID, actorID string, dir Direction) (store.Votable, error) {
	var mutate func(v *store.Votes, actorID string)
	switch dir {
	case Up:
		mutate = func(v *store.Votes, actorID string) {
			v.DownvotedBy = without(v.DownvotedBy, actorID)
			v.UpvotedBy = toggle(v.UpvotedBy, actorID)
		}
	case Down:
		mutate = func(v *store.Votes, actorID string) {
			v.UpvotedBy = without(v.UpvotedBy, actorID)
			v.DownvotedBy = toggle(v.DownvotedBy, actorID)
		}
	default:
		return nil, store.Invalid("direction", "must be up or down")
	}
	return e.apply(ctx, target, entityID, actorID, string(dir), mutate)
}

// Like toggles the actor in likedBy. dislikedBy is left alone, so an actor
// may like and dislike the same entity.
func (e *Engine) Like(ctx context.Context, target store.TargetType, entityID, actorID string) (store.Votable, error) {
	return e.apply(ctx, target, entityID, actorID, "like", func(v *store.Votes, actorID string) {
		v.LikedBy = toggle(v.LikedBy, actorID)
	})
}

// Dislike toggles the actor in dislikedBy without touching likedBy.
func (e *Engine) Dislike(ctx context.Context, target store.TargetType, entityID, actorID string) (store.Votable, error) {
	return e.apply(ctx, target, entityID, actorID, "dislike", func(v *store.Votes, actorID string) {
		v.DislikedBy = toggle(v.DislikedBy, actorID)
	})
}

func (e *Engine) apply(ctx context.Context, target store.TargetType, entityID, actorID, kind string, mutate func(*store.Votes, string)) (store.Votable, error) {
	entityID = strings.TrimSpace(entityID)
	actorID = strings.TrimSpace(actorID)
	if entityID == "" {
		return nil, store.Invalid("entityId", "required")
	}
	if actorID == "" {
		return nil, store.Invalid("actorId", "required")
	}

	var (
		out store.Votable
		err error
	)
	switch target {
	case store.TargetThread:
		out, err = mutateIn(ctx, e.store.Threads.Collection(), entityID, actorID, mutate)
	case store.TargetAnswer:
		out, err = mutateIn(ctx, e.store.Answers.Collection(), entityID, actorID, mutate)
	default:
		return nil, store.Invalid("targetType", "must be thread or answer")
	}
	if err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.Votes.WithLabelValues(string(target), kind).Inc()
	}
	return out, nil
}

// mutateIn locates one entity in its collection, applies mutate to its vote
// state and recomputes every counter before the collection is written back.
func mutateIn[T any, P interface {
	*T
	store.Votable
}](ctx context.Context, c *store.Collection[T], entityID, actorID string, mutate func(*store.Votes, string)) (store.Votable, error) {
	var updated T
	err := c.Mutate(ctx, func(items []T) ([]T, error) {
		for i := range items {
			p := P(&items[i])
			if p.EntityID() != entityID {
				continue
			}
			if p.Author() == actorID {
				return nil, ErrSelfVote
			}
			v := p.Tally()
			mutate(v, actorID)
			v.Recount()
			updated = items[i]
			return items, nil
		}
		return nil, store.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return P(&updated), nil
}

func toggle(set []string, id string) []string {
	if slices.Contains(set, id) {
		return without(set, id)
	}
	return append(slices.Clip(set), id)
}

func without(set []string, id string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
