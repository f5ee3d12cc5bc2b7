package store

import (
	"context"
	"strings"
	"testing"
)

func TestMigrate_RewritesLegacyRecords(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	_ = kv.Set(ctx, Key("", KeyThreads), []byte(legacyThreads))
	_ = kv.Set(ctx, Key("", KeyMessages), []byte(`[{"id":"m1","connectionId":"c1","senderId":"u1","text":"hi","createdAt":"2025-01-10T08:00:00Z"}]`))

	rep, err := New(kv, "").Migrate(ctx)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if rep != (MigrateReport{Threads: 1, Messages: 1}) {
		t.Fatalf("unexpected report %+v", rep)
	}

	raw, _ := kv.Get(ctx, Key("", KeyThreads))
	for _, want := range []string{`"downvotedBy":[]`, `"downvotes":0`, `"upvotes":2`, `"dislikedBy":[]`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("expected %s in migrated document %s", want, raw)
		}
	}
	raw, _ = kv.Get(ctx, Key("", KeyMessages))
	if !strings.Contains(string(raw), `"flagged":false`) {
		t.Fatalf("expected explicit flagged=false, got %s", raw)
	}
	raw, _ = kv.Get(ctx, Key("", KeyFlags))
	if string(raw) != "[]" {
		t.Fatalf("expected empty flags collection written, got %s", raw)
	}
}
