// Package events provides a fire-and-forget NATS publisher for moderation
// events. Consumers (notification fan-out, audit sinks) subscribe to
// moderation.> on the MODERATION stream.
package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const StreamName = "MODERATION"

const (
	SubjectFlagCreated       = "moderation.flag.created"
	SubjectFlagStatusChanged = "moderation.flag.status_changed"
	SubjectMessageFlagged    = "moderation.message.flagged"
	SubjectMessageUnflagged  = "moderation.message.unflagged"
	SubjectMessageDeleted    = "moderation.message.deleted"
)

// Event is the envelope sent to every moderation.* subject.
type Event struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	ActorID    string         `json:"actor_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Publisher publishes events to NATS JetStream.
// The zero value and a nil pointer are both safe no-op stubs.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
}

// New creates a Publisher using an existing JetStream context.
// Pass js=nil to get a no-op stub.
func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{js: js, log: log}
}

// EnsureStream creates the moderation stream when it does not exist yet.
func EnsureStream(js nats.JetStreamContext) error {
	_, err := js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"moderation.>"},
		MaxAge:   30 * 24 * time.Hour,
	})
	return err
}

// Publish sends an event asynchronously. Failures are logged as warnings and
// never surface to the caller.
func (p *Publisher) Publish(subject, actorID string, props map[string]any) {
	if p == nil || p.js == nil {
		return
	}
	ev := Event{
		EventID:    uuid.NewString(),
		EventName:  subject,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Properties: props,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("subject", subject), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
