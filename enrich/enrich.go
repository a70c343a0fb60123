// Package enrich walks a finalized plan tree and attaches resolved place
// data to every node carrying a place reference. The walk is sequential
// with a fixed inter-lookup delay out of politeness to the external API,
// and individual resolution failures degrade to fallback records instead of
// aborting the walk.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/tripweave/tripweave/places"
	"github.com/tripweave/tripweave/plan"
)

// maxDepth bounds tree recursion. Real plans are a handful of levels deep;
// anything past this is a malformed tree.
const maxDepth = 32

// defaultLookupDelay separates consecutive place lookups.
const defaultLookupDelay = 200 * time.Millisecond

// ErrUnrecognizedPlan is returned when the document does not conform to any
// known plan shape or the tree is malformed. The caller falls back to
// presenting the unenriched plan.
var ErrUnrecognizedPlan = errors.New("plan tree shape unrecognized")

// Observer receives lifecycle callbacks during the enrichment walk. UI
// layers use it for real progress reporting instead of timer-driven
// illusions.
type Observer interface {
	// LookupStarted fires before a place lookup is issued.
	LookupStarted(q places.Query)

	// LookupFinished fires after a lookup completes, with the record that
	// was attached.
	LookupFinished(q places.Query, record *places.Record)
}

// Enricher attaches place details to plan documents.
type Enricher struct {
	service  *places.Service
	delay    time.Duration
	observer Observer
	logger   *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithDelay sets the inter-lookup delay.
func WithDelay(d time.Duration) Option {
	return func(e *Enricher) {
		e.delay = d
	}
}

// WithObserver registers a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(e *Enricher) {
		e.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// New creates an Enricher over the given place resolution service.
func New(service *places.Service, opts ...Option) *Enricher {
	e := &Enricher{
		service: service,
		delay:   defaultLookupDelay,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns a deep copy of doc with a placeDetails field attached as a
// sibling of every placeQuery field. Existing fields are never removed,
// reordered, or overwritten. Returns ErrUnrecognizedPlan for documents that
// do not conform to a known shape; the input is never mutated either way.
func (e *Enricher) Enrich(ctx context.Context, doc plan.Document) (plan.Document, error) {
	if doc == nil {
		return nil, ErrUnrecognizedPlan
	}
	shape := plan.Classify(doc)
	if shape == plan.ShapeUnknown {
		return nil, ErrUnrecognizedPlan
	}

	e.logger.Debug("Enriching plan", "shape", shape.String())

	out := doc.Clone()
	first := true
	if err := e.walk(ctx, map[string]any(out), 0, &first); err != nil {
		return nil, err
	}
	return out, nil
}

// walk visits every object node depth-first, resolving nodes that carry a
// place query. Lookup calls are intentionally serialized.
func (e *Enricher) walk(ctx context.Context, node any, depth int, first *bool) error {
	if depth > maxDepth {
		return ErrUnrecognizedPlan
	}

	switch val := node.(type) {
	case map[string]any:
		if text, ok := val[plan.PlaceQueryKey].(string); ok && text != "" {
			if err := e.resolveNode(ctx, val, text, first); err != nil {
				return err
			}
		}
		for _, child := range val {
			if err := e.walk(ctx, child, depth+1, first); err != nil {
				return err
			}
		}
	case []any:
		for _, child := range val {
			if err := e.walk(ctx, child, depth+1, first); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveNode resolves one place-bearing node and attaches the record.
// The resolver never fails; fallback records flow through the same path
// with IsFallback set.
func (e *Enricher) resolveNode(ctx context.Context, node map[string]any, text string, first *bool) error {
	if !*first {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.delay):
		}
	}
	*first = false

	q := places.Query{Text: text, Hint: coordinateHint(node)}

	if e.observer != nil {
		e.observer.LookupStarted(q)
	}
	record := e.service.Resolve(ctx, q)
	if e.observer != nil {
		e.observer.LookupFinished(q, record)
	}

	node[plan.PlaceDetailsKey] = recordAsTree(record)
	return nil
}

// coordinateHint reads an optional {"lat","lng"} sibling from the node.
func coordinateHint(node map[string]any) *places.LatLng {
	coords, ok := node[plan.CoordinatesKey].(map[string]any)
	if !ok {
		return nil
	}
	lat, latOK := coords["lat"].(float64)
	lng, lngOK := coords["lng"].(float64)
	if !latOK || !lngOK {
		return nil
	}
	return &places.LatLng{Lat: lat, Lng: lng}
}

// recordAsTree converts a Record to plain JSON-shaped values so the
// enriched document round-trips through encoding/json like the rest of the
// tree.
func recordAsTree(record *places.Record) map[string]any {
	data, err := json.Marshal(record)
	if err != nil {
		return map[string]any{"name": record.Name, "isFallback": true}
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return map[string]any{"name": record.Name, "isFallback": true}
	}
	return tree
}
