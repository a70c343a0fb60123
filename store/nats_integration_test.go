//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

// natsStore connects to the server named by NATS_URL, skipping the test
// when none is running. Each test gets its own bucket to avoid cross-talk.
func natsStore(t *testing.T, bucket string) *NATSStore {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url, nats.Timeout(2*time.Second))
	if err != nil {
		t.Skipf("NATS not available at %s: %v", url, err)
	}
	t.Cleanup(nc.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := NewNATSStore(ctx, nc, bucket)
	if err != nil {
		t.Fatalf("NewNATSStore() error = %v", err)
	}
	return s
}

func TestNATSStore_PutGet(t *testing.T) {
	s := natsStore(t, "tripweave-test-putget")
	ctx := context.Background()

	key := Key("finalPlan", "s1")
	if err := s.Put(ctx, key, []byte(`{"itinerary":[]}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"itinerary":[]}` {
		t.Errorf("Get() = %s", got)
	}

	if _, err := s.Get(ctx, Key("finalPlan", "missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing key error = %v, want ErrNotFound", err)
	}
}

func TestNATSStore_Latest(t *testing.T) {
	s := natsStore(t, "tripweave-test-latest")
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

	if _, err := s.Latest(ctx, "emptyNamespace"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() on empty namespace error = %v, want ErrNotFound", err)
	}
}
