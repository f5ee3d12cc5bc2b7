package store

import (
	"context"
	"sort"
	"strings"
	"time"
)

type Messages struct {
	c     *Collection[Message]
	now   func() time.Time
	newID func() string
}

func (r *Messages) Collection() *Collection[Message] { return r.c }

// Create appends an unread, unflagged message to a connection.
func (r *Messages) Create(ctx context.Context, m Message) (Message, error) {
	m.ConnectionID = strings.TrimSpace(m.ConnectionID)
	m.SenderID = strings.TrimSpace(m.SenderID)
	switch {
	case m.ConnectionID == "":
		return Message{}, Invalid("connectionId", "required")
	case m.SenderID == "":
		return Message{}, Invalid("senderId", "required")
	case strings.TrimSpace(m.Text) == "":
		return Message{}, Invalid("text", "required")
	}

	m.ID = "msg-" + r.newID()
	m.CreatedAt = r.now()
	m.Read = false
	m.Flagged = false
	m.FlagReason = ""
	m.FlaggedAt = nil

	err := r.c.Mutate(ctx, func(items []Message) ([]Message, error) {
		return append(items, m), nil
	})
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

// ListByConnection returns a conversation oldest first.
func (r *Messages) ListByConnection(ctx context.Context, connectionID string) ([]Message, error) {
	items, err := r.c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := []Message{}
	for _, m := range items {
		if m.ConnectionID == connectionID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
