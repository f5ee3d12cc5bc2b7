// Package messages moderates direct chat messages through the flag fields
// embedded in each message record.
package messages

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/example/mentor-platform/internal/platform/events"
	"github.com/example/mentor-platform/internal/platform/metrics"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

type Publisher interface {
	Publish(subject, actorID string, props map[string]any)
}

type Service struct {
	messages *store.Collection[store.Message]
	pub      Publisher
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Service)

func WithPublisher(p Publisher) Option { return func(s *Service) { s.pub = p } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		messages: st.Messages.Collection(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// Flag marks a message for review. Flagging an already flagged message
// overwrites its reason and timestamp; earlier reports are not kept.
func (s *Service) Flag(ctx context.Context, actor store.Actor, messageID, reason string) (store.Message, error) {
	reason = strings.TrimSpace(reason)
	if strings.TrimSpace(actor.ID) == "" {
		return store.Message{}, store.Invalid("actorId", "required")
	}
	if reason == "" {
		return store.Message{}, store.Invalid("reason", "required")
	}

	now := s.now()
	m, err := s.update(ctx, messageID, func(m *store.Message) {
		m.Flagged = true
		m.FlagReason = reason
		m.FlaggedAt = &now
	})
	if err != nil {
		return store.Message{}, err
	}
	s.record("flag", events.SubjectMessageFlagged, actor.ID, map[string]any{
		"message_id":    m.ID,
		"connection_id": m.ConnectionID,
		"reason":        reason,
	})
	return m, nil
}

// Unflag clears all moderation fields of a message.
func (s *Service) Unflag(ctx context.Context, actor store.Actor, messageID string) (store.Message, error) {
	if !actor.IsAdmin() {
		return store.Message{}, store.ErrForbidden
	}
	m, err := s.update(ctx, messageID, func(m *store.Message) {
		m.Flagged = false
		m.FlagReason = ""
		m.FlaggedAt = nil
	})
	if err != nil {
		return store.Message{}, err
	}
	s.record("unflag", events.SubjectMessageUnflagged, actor.ID, map[string]any{
		"message_id":    m.ID,
		"connection_id": m.ConnectionID,
	})
	return m, nil
}

// Delete removes a message permanently. It reports false, with no error,
// when the message does not exist.
func (s *Service) Delete(ctx context.Context, actor store.Actor, messageID string) (bool, error) {
	if !actor.IsAdmin() {
		return false, store.ErrForbidden
	}
	messageID = strings.TrimSpace(messageID)

	var removed store.Message
	err := s.messages.Mutate(ctx, func(items []store.Message) ([]store.Message, error) {
		for i, m := range items {
			if m.ID == messageID {
				removed = m
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, store.ErrNotFound
	})
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.record("delete", events.SubjectMessageDeleted, actor.ID, map[string]any{
		"message_id":    removed.ID,
		"connection_id": removed.ConnectionID,
		"was_flagged":   removed.Flagged,
	})
	return true, nil
}

// ListFlagged returns flagged messages, most recently flagged first. Records
// without flaggedAt sort by createdAt.
func (s *Service) ListFlagged(ctx context.Context, actor store.Actor) ([]store.Message, error) {
	if !actor.IsAdmin() {
		return nil, store.ErrForbidden
	}
	items, err := s.messages.All(ctx)
	if err != nil {
		return nil, err
	}
	out := []store.Message{}
	for _, m := range items {
		if m.Flagged {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return flaggedOrCreated(out[i]).After(flaggedOrCreated(out[j]))
	})
	return out, nil
}

func flaggedOrCreated(m store.Message) time.Time {
	if m.FlaggedAt != nil {
		return *m.FlaggedAt
	}
	return m.CreatedAt
}

func (s *Service) update(ctx context.Context, messageID string, fn func(*store.Message)) (store.Message, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return store.Message{}, store.Invalid("id", "required")
	}
	var updated store.Message
	err := s.messages.Mutate(ctx, func(items []store.Message) ([]store.Message, error) {
		for i := range items {
			if items[i].ID == messageID {
				fn(&items[i])
				updated = items[i]
				return items, nil
			}
		}
		return nil, store.ErrNotFound
	})
	return updated, err
}

func (s *Service) record(action, subject, actorID string, props map[string]any) {
	if s.metrics != nil {
		s.metrics.MessageActions.WithLabelValues(action).Inc()
	}
	if s.pub != nil {
		s.pub.Publish(subject, actorID, props)
	}
}
