package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSStore is a JetStream KV-backed Store, used when the renderer runs in
// a separate process from the core.
type NATSStore struct {
	kv jetstream.KeyValue
}

// NewNATSStore creates (or binds to) the named KV bucket on an existing
// NATS connection.
func NewNATSStore(ctx context.Context, nc *nats.Conn, bucket string) (*NATSStore, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "tripweave plan handoff",
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("open KV bucket %s: %w", bucket, err)
	}

	return &NATSStore{kv: kv}, nil
}

// Put implements Store.
func (s *NATSStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

// Get implements Store.
func (s *NATSStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return entry.Value(), nil
}

// Latest implements Store. The most recent write under a prefix is the key
// whose entry carries the highest revision.
func (s *NATSStore) Latest(ctx context.Context, prefix string) (string, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return "", fmt.Errorf("kv list keys: %w", err)
	}

	var latestKey string
	var latestRevision uint64
	for key := range lister.Keys() {
		if !strings.HasPrefix(key, prefix+".") {
			continue
		}
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		if entry.Revision() > latestRevision {
			latestRevision = entry.Revision()
			latestKey = key
		}
	}
	if latestKey == "" {
		return "", ErrNotFound
	}
	return latestKey, nil
}
