package store

import (
	"strings"
	"time"
)

// TargetType names the kind of content a flag or vote applies to.
type TargetType string

const (
	TargetThread  TargetType = "thread"
	TargetAnswer  TargetType = "answer"
	TargetMessage TargetType = "message"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetThread, TargetAnswer, TargetMessage:
		return true
	}
	return false
}

// FlagStatus is the lifecycle state of a moderation flag.
type FlagStatus string

const (
	FlagNew       FlagStatus = "new"
	FlagInReview  FlagStatus = "in_review"
	FlagResolved  FlagStatus = "resolved"
	FlagDismissed FlagStatus = "dismissed"
)

func (s FlagStatus) Valid() bool {
	switch s {
	case FlagNew, FlagInReview, FlagResolved, FlagDismissed:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle action is expected.
func (s FlagStatus) Terminal() bool {
	return s == FlagResolved || s == FlagDismissed
}

// Open reports whether the flag still waits for a moderator.
func (s FlagStatus) Open() bool {
	return s == FlagNew || s == FlagInReview
}

type Role string

const (
	RoleMentee Role = "mentee"
	RoleMentor Role = "mentor"
	RoleAdmin  Role = "admin"
)

// Actor is the authenticated caller of a moderation operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return strings.EqualFold(string(a.Role), string(RoleAdmin))
}

// Votes holds the membership sets of a votable entity and the counters
// derived from them. Counters are recomputed from the sets on every read and
// write and are never taken from the caller.
type Votes struct {
	Upvotes     int      `json:"upvotes"`
	UpvotedBy   []string `json:"upvotedBy"`
	Downvotes   int      `json:"downvotes"`
	DownvotedBy []string `json:"downvotedBy"`
	Likes       int      `json:"likes"`
	LikedBy     []string `json:"likedBy"`
	Dislikes    int      `json:"dislikes"`
	DislikedBy  []string `json:"dislikedBy"`
}

// Tally gives access to the vote state of any type embedding Votes.
func (v *Votes) Tally() *Votes { return v }

// Votable is a thread or an answer.
type Votable interface {
	EntityID() string
	Author() string
	Tally() *Votes
}

type Thread struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	Votes
}

func (t *Thread) EntityID() string { return t.ID }
func (t *Thread) Author() string   { return t.AuthorID }

type Answer struct {
	ID             string    `json:"id"`
	ThreadID       string    `json:"threadId"`
	AuthorID       string    `json:"authorId"`
	Content        string    `json:"content"`
	IsMentorAnswer bool      `json:"isMentorAnswer"`
	CreatedAt      time.Time `json:"createdAt"`
	Votes
}

func (a *Answer) EntityID() string { return a.ID }
func (a *Answer) Author() string   { return a.AuthorID }

// Message is a direct chat message between the two sides of a connection.
// The flag fields are a denormalized, binary moderation marker.
type Message struct {
	ID           string     `json:"id"`
	ConnectionID string     `json:"connectionId"`
	SenderID     string     `json:"senderId"`
	Text         string     `json:"text"`
	CreatedAt    time.Time  `json:"createdAt"`
	Read         bool       `json:"read"`
	Flagged      bool       `json:"flagged"`
	FlagReason   string     `json:"flagReason,omitempty"`
	FlaggedAt    *time.Time `json:"flaggedAt,omitempty"`
}

// Flag is one report against one piece of content.
type Flag struct {
	ID         string     `json:"id"`
	TargetType TargetType `json:"targetType"`
	TargetID   string     `json:"targetId"`
	ReporterID string     `json:"reporterId"`
	Reason     string     `json:"reason"`
	Notes      string     `json:"notes,omitempty"`
	Status     FlagStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy string     `json:"resolvedBy,omitempty"`
}
