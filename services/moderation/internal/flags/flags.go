// Package flags manages moderation flags raised against threads, answers and
// messages, and their new -> in_review -> resolved|dismissed lifecycle.
package flags

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/mentor-platform/internal/platform/events"
	"github.com/example/mentor-platform/internal/platform/metrics"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

// Publisher receives lifecycle events. *events.Publisher satisfies it.
type Publisher interface {
	Publish(subject, actorID string, props map[string]any)
}

type Manager struct {
	flags   *store.Collection[store.Flag]
	pub     Publisher
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

type Option func(*Manager)

func WithPublisher(p Publisher) Option { return func(m *Manager) { m.pub = p } }

func WithMetrics(mt *metrics.Metrics) Option { return func(m *Manager) { m.metrics = mt } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func WithIDs(newID func() string) Option { return func(m *Manager) { m.newID = newID } }

func New(st *store.Store, opts ...Option) *Manager {
	m := &Manager{
		flags: st.Flags,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, fn := range opts {
		fn(m)
	}
	return m
}

type CreateInput struct {
	TargetType store.TargetType
	TargetID   string
	ReporterID string
	Reason     string
	Notes      string
}

// Create records a new flag. The target is not checked for existence and the
// same reporter may flag the same target any number of times.
func (m *Manager) Create(ctx context.Context, in CreateInput) (store.Flag, error) {
	f := store.Flag{
		TargetType: store.TargetType(strings.ToLower(strings.TrimSpace(string(in.TargetType)))),
		TargetID:   strings.TrimSpace(in.TargetID),
		ReporterID: strings.TrimSpace(in.ReporterID),
		Reason:     strings.TrimSpace(in.Reason),
		Notes:      strings.TrimSpace(in.Notes),
	}
	switch {
	case !f.TargetType.Valid():
		return store.Flag{}, store.Invalid("targetType", "must be thread, answer or message")
	case f.TargetID == "":
		return store.Flag{}, store.Invalid("targetId", "required")
	case f.ReporterID == "":
		return store.Flag{}, store.Invalid("reporterId", "required")
	case f.Reason == "":
		return store.Flag{}, store.Invalid("reason", "required")
	}

	f.ID = "flag-" + m.newID()
	f.Status = store.FlagNew
	f.CreatedAt = m.now()

	err := m.flags.Mutate(ctx, func(items []store.Flag) ([]store.Flag, error) {
		return append(items, f), nil
	})
	if err != nil {
		return store.Flag{}, err
	}

	if m.metrics != nil {
		m.metrics.Flags.WithLabelValues(string(f.TargetType)).Inc()
	}
	m.publish(events.SubjectFlagCreated, f.ReporterID, map[string]any{
		"flag_id":     f.ID,
		"target_type": f.TargetType,
		"target_id":   f.TargetID,
		"reason":      f.Reason,
	})
	return f, nil
}

// UpdateStatus sets the status of a flag. Reaching resolved or dismissed
// stamps resolvedAt and records the acting admin as resolvedBy. Moving back
// to new or in_review leaves both fields as they were.
func (m *Manager) UpdateStatus(ctx context.Context, actor store.Actor, flagID string, status store.FlagStatus) (store.Flag, error) {
	if !actor.IsAdmin() {
		return store.Flag{}, store.ErrForbidden
	}
	flagID = strings.TrimSpace(flagID)
	if flagID == "" {
		return store.Flag{}, store.Invalid("id", "required")
	}
	if !status.Valid() {
		return store.Flag{}, store.Invalid("status", "must be new, in_review, resolved or dismissed")
	}

	var (
		updated store.Flag
		from    store.FlagStatus
	)
	err := m.flags.Mutate(ctx, func(items []store.Flag) ([]store.Flag, error) {
		for i := range items {
			f := &items[i]
			if f.ID != flagID {
				continue
			}
			from = f.Status
			f.Status = status
			if status.Terminal() {
				now := m.now()
				f.ResolvedAt = &now
				if id := strings.TrimSpace(actor.ID); id != "" {
					f.ResolvedBy = id
				}
			}
			updated = *f
			return items, nil
		}
		return nil, store.ErrNotFound
	})
	if err != nil {
		return store.Flag{}, err
	}

	if m.metrics != nil {
		m.metrics.FlagTransition.WithLabelValues(string(status)).Inc()
	}
	m.publish(events.SubjectFlagStatusChanged, actor.ID, map[string]any{
		"flag_id":     updated.ID,
		"target_type": updated.TargetType,
		"target_id":   updated.TargetID,
		"from":        from,
		"to":          updated.Status,
	})
	return updated, nil
}

// ListForTarget returns the flags raised against one target in insertion
// order.
func (m *Manager) ListForTarget(ctx context.Context, targetType store.TargetType, targetID string) ([]store.Flag, error) {
	items, err := m.flags.All(ctx)
	if err != nil {
		return nil, err
	}
	out := []store.Flag{}
	for _, f := range items {
		if f.TargetType == targetType && f.TargetID == targetID {
			out = append(out, f)
		}
	}
	return out, nil
}

// List returns all flags, or only those whose target type is in types.
// Order is insertion order; see SortNewestFirst.
func (m *Manager) List(ctx context.Context, types ...store.TargetType) ([]store.Flag, error) {
	items, err := m.flags.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return items, nil
	}
	out := []store.Flag{}
	for _, f := range items {
		for _, t := range types {
			if f.TargetType == t {
				out = append(out, f)
				break
			}
		}
	}
	return out, nil
}

// SortNewestFirst orders flags by createdAt descending, as the moderation
// queue displays them.
func SortNewestFirst(flags []store.Flag) {
	sort.SliceStable(flags, func(i, j int) bool {
		return flags[i].CreatedAt.After(flags[j].CreatedAt)
	})
}

func (m *Manager) publish(subject, actorID string, props map[string]any) {
	if m.pub == nil {
		return
	}
	m.pub.Publish(subject, actorID, props)
}
