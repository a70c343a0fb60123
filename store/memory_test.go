package store

import (
	"context"
	"errors"
	"testing"
)

func TestKey(t *testing.T) {
	if got := Key("finalPlan", "abc-123"); got != "finalPlan.abc-123" {
		t.Errorf("Key() = %q, want %q", got, "finalPlan.abc-123")
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, Key("finalPlan", "s1"), []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, Key("finalPlan", "s1"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Get() = %s, want original value", got)
	}

	// Overwrite replaces the value.
	if err := s.Put(ctx, Key("finalPlan", "s1"), []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, _ = s.Get(ctx, Key("finalPlan", "s1"))
	if string(got) != `{"a":2}` {
		t.Errorf("Get() after overwrite = %s", got)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "finalPlan.nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreValueIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	value := []byte("original")
	s.Put(ctx, "ns.k", value)
	value[0] = 'X'

	got, _ := s.Get(ctx, "ns.k")
	if string(got) != "original" {
		t.Error("Put() must copy the value, caller mutation leaked in")
	}

	got[0] = 'Y'
	again, _ := s.Get(ctx, "ns.k")
	if string(again) != "original" {
		t.Error("Get() must return a copy, caller mutation leaked in")
	}
}

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, Key("finalPlan", "s1"), []byte("1"))
	s.Put(ctx, Key("finalPlan", "s2"), []byte("2"))
	s.Put(ctx, Key("enrichedPlan", "s1"), []byte("3"))

	key, err := s.Latest(ctx, "finalPlan")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if key != "finalPlan.s2" {
		t.Errorf("Latest() = %q, want finalPlan.s2", key)
	}

	// Re-writing an older key makes it the latest again.
	s.Put(ctx, Key("finalPlan", "s1"), []byte("4"))
	key, _ = s.Latest(ctx, "finalPlan")
	if key != "finalPlan.s1" {
		t.Errorf("Latest() after re-write = %q, want finalPlan.s1", key)
	}
}

func TestMemoryStoreLatestNamespaceIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, Key("enrichedPlan", "s1"), []byte("1"))

	if _, err := s.Latest(ctx, "finalPlan"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() on empty namespace error = %v, want ErrNotFound", err)
	}

	// A prefix must match whole namespaces, not key substrings.
	s.Put(ctx, "finalPlanX.s9", []byte("x"))
	if _, err := s.Latest(ctx, "finalPlan"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() matched a different namespace sharing a prefix")
	}
}
