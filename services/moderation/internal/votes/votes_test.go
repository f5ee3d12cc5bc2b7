package votes

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/example/mentor-platform/internal/platform/metrics"
	"github.com/example/mentor-platform/services/moderation/internal/store"
)

func newEngine(t *testing.T) (*Engine, *store.Store, string) {
	t.Helper()
	st := store.New(store.NewMemoryKV(), "test")
	th, err := st.Threads.Create(context.Background(), store.Thread{
		AuthorID: "author",
		Title:    "Scholarship deadlines",
		Content:  "When do applications close?",
		Category: "Scholarships",
	})
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}
	return New(st), st, th.ID
}

func assertConsistent(t *testing.T, v *store.Votes) {
	t.Helper()
	if v.Upvotes != len(v.UpvotedBy) || v.Downvotes != len(v.DownvotedBy) ||
		v.Likes != len(v.LikedBy) || v.Dislikes != len(v.DislikedBy) {
		t.Fatalf("counters drifted from sets: %+v", *v)
	}
	for _, id := range v.UpvotedBy {
		if slices.Contains(v.DownvotedBy, id) {
			t.Fatalf("%s is both up and down voted", id)
		}
	}
}

func TestVote_ToggleTwiceRemoves(t *testing.T) {
	e, _, id := newEngine(t)
	ctx := context.Background()

	if _, err := e.Vote(ctx, store.TargetThread, id, "u1", Up); err != nil {
		t.Fatalf("vote: %v", err)
	}
	got, err := e.Vote(ctx, store.TargetThread, id, "u1", Up)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	v := got.Tally()
	if v.Upvotes != 0 || slices.Contains(v.UpvotedBy, "u1") {
		t.Fatalf("expected vote withdrawn, got %+v", *v)
	}
	assertConsistent(t, v)
}

func TestVote_UpThenDownIsExclusive(t *testing.T) {
	e, _, id := newEngine(t)
	ctx := context.Background()

	_, _ = e.Vote(ctx, store.TargetThread, id, "u1", Up)
	got, err := e.Vote(ctx, store.TargetThread, id, "u1", Down)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	v := got.Tally()
	if v.Upvotes != 0 || v.Downvotes != 1 {
		t.Fatalf("expected 0 up 1 down, got %d/%d", v.Upvotes, v.Downvotes)
	}
	if slices.Contains(v.UpvotedBy, "u1") || !slices.Contains(v.DownvotedBy, "u1") {
		t.Fatalf("expected u1 only in downvotedBy, got %+v", *v)
	}
}

func TestVote_Scenario(t *testing.T) {
	e, st, id := newEngine(t)
	ctx := context.Background()

	steps := []struct {
		actor    string
		dir      Direction
		up, down int
	}{
		{"u1", Up, 1, 0},
		{"u2", Up, 2, 0},
		{"u1", Down, 1, 1},
	}
	for _, s := range steps {
		got, err := e.Vote(ctx, store.TargetThread, id, s.actor, s.dir)
		if err != nil {
			t.Fatalf("vote %s %s: %v", s.actor, s.dir, err)
		}
		v := got.Tally()
		if v.Upvotes != s.up || v.Downvotes != s.down {
			t.Fatalf("after %s %s expected %d/%d, got %d/%d", s.actor, s.dir, s.up, s.down, v.Upvotes, v.Downvotes)
		}
		assertConsistent(t, v)
	}

	th, err := st.Threads.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !slices.Equal(th.UpvotedBy, []string{"u2"}) || !slices.Equal(th.DownvotedBy, []string{"u1"}) {
		t.Fatalf("unexpected persisted sets: up=%v down=%v", th.UpvotedBy, th.DownvotedBy)
	}
}

func TestLikeDislike_Independent(t *testing.T) {
	e, _, id := newEngine(t)
	ctx := context.Background()

	if _, err := e.Like(ctx, store.TargetThread, id, "u1"); err != nil {
		t.Fatalf("like: %v", err)
	}
	got, err := e.Dislike(ctx, store.TargetThread, id, "u1")
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	v := got.Tally()
	if !slices.Contains(v.LikedBy, "u1") || !slices.Contains(v.DislikedBy, "u1") {
		t.Fatalf("expected u1 in both sets, got %+v", *v)
	}
	if v.Likes != 1 || v.Dislikes != 1 {
		t.Fatalf("expected 1/1, got %d/%d", v.Likes, v.Dislikes)
	}
	if v.Upvotes != 0 || v.Downvotes != 0 {
		t.Fatalf("like/dislike must not touch votes, got %+v", *v)
	}

	got, _ = e.Like(ctx, store.TargetThread, id, "u1")
	if got.Tally().Likes != 0 {
		t.Fatalf("expected second like to toggle off")
	}
}

func TestVote_Answer(t *testing.T) {
	e, st, id := newEngine(t)
	ctx := context.Background()
	a, err := st.Answers.Create(ctx, store.Answer{ThreadID: id, AuthorID: "mentor-1", Content: "March 31", IsMentorAnswer: true})
	if err != nil {
		t.Fatalf("create answer: %v", err)
	}

	got, err := e.Vote(ctx, store.TargetAnswer, a.ID, "u1", Down)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	ans, ok := got.(*store.Answer)
	if !ok {
		t.Fatalf("expected *store.Answer, got %T", got)
	}
	if ans.Downvotes != 1 || ans.ThreadID != id {
		t.Fatalf("unexpected answer: %+v", ans)
	}
}

func TestVote_SelfVote(t *testing.T) {
	e, _, id := newEngine(t)
	ctx := context.Background()

	if _, err := e.Vote(ctx, store.TargetThread, id, "author", Up); !errors.Is(err, ErrSelfVote) {
		t.Fatalf("expected ErrSelfVote, got %v", err)
	}
	if _, err := e.Like(ctx, store.TargetThread, id, "author"); !errors.Is(err, ErrSelfVote) {
		t.Fatalf("expected ErrSelfVote on like, got %v", err)
	}
}

func TestVote_NotFound(t *testing.T) {
	e, _, _ := newEngine(t)
	_, err := e.Vote(context.Background(), store.TargetAnswer, "ans-missing", "u1", Up)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVote_Validation(t *testing.T) {
	e, _, id := newEngine(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		target store.TargetType
		entity string
		actor  string
		dir    Direction
	}{
		{"message target", store.TargetMessage, id, "u1", Up},
		{"blank actor", store.TargetThread, id, " ", Up},
		{"blank entity", store.TargetThread, "", "u1", Up},
		{"bad direction", store.TargetThread, id, "u1", Direction("sideways")},
	}
	for _, tc := range cases {
		if _, err := e.Vote(ctx, tc.target, tc.entity, tc.actor, tc.dir); !errors.Is(err, store.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection(" UP "); err != nil || d != Up {
		t.Fatalf("expected up, got %q %v", d, err)
	}
	if _, err := ParseDirection("left"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestVote_Metrics(t *testing.T) {
	st := store.New(store.NewMemoryKV(), "test")
	m := metrics.New("test")
	e := New(st, WithMetrics(m))
	ctx := context.Background()
	th, _ := st.Threads.Create(ctx, store.Thread{AuthorID: "a", Title: "t", Content: "c", Category: "Exams"})

	_, _ = e.Vote(ctx, store.TargetThread, th.ID, "u1", Up)
	_, _ = e.Dislike(ctx, store.TargetThread, th.ID, "u1")
	_, _ = e.Vote(ctx, store.TargetThread, th.ID, "a", Up)

	if got := testutil.ToFloat64(m.Votes.WithLabelValues("thread", "up")); got != 1 {
		t.Fatalf("expected 1 up vote counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.Votes.WithLabelValues("thread", "dislike")); got != 1 {
		t.Fatalf("expected 1 dislike counted, got %v", got)
	}
}

func TestVote_ConcurrentNoLostUpdates(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := store.NewRedisKV("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("redis kv: %v", err)
	}
	defer kv.Close()

	st := store.New(kv, "test")
	e := New(st)
	ctx := context.Background()
	th, err := st.Threads.Create(ctx, store.Thread{AuthorID: "a", Title: "t", Content: "c", Category: "Exams"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const voters = 8
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			actor := string(rune('a'+n)) + "-voter"
			if _, err := e.Vote(ctx, store.TargetThread, th.ID, actor, Up); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	failed := 0
	for err := range errs {
		if !errors.Is(err, store.ErrConflict) {
			t.Fatalf("unexpected error: %v", err)
		}
		failed++
	}

	got, err := st.Threads.Get(ctx, th.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Upvotes != voters-failed {
		t.Fatalf("expected %d upvotes (one per successful vote), got %d", voters-failed, got.Upvotes)
	}
}
