package store

import (
	"fmt"
	"time"
)

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// newTestStore returns a memory-backed store with a deterministic clock that
// advances one minute per call and sequential ids.
func newTestStore() *Store {
	tick := 0
	seq := 0
	return New(NewMemoryKV(), "test",
		WithClock(func() time.Time {
			tick++
			return testEpoch.Add(time.Duration(tick) * time.Minute)
		}),
		WithIDs(func() string {
			seq++
			return fmt.Sprintf("%d", seq)
		}),
	)
}
