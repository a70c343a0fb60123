package places

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Service wraps a Resolver with an in-memory cache and fallback synthesis.
// Its Resolve never fails the caller: any lookup failure degrades to a
// fallback record with IsFallback set, so the enricher has no error path to
// special-case.
type Service struct {
	resolver Resolver
	cache    *gocache.Cache
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCache replaces the default cache. Tests use this to control expiry.
func WithCache(c *gocache.Cache) ServiceOption {
	return func(s *Service) {
		s.cache = c
	}
}

// NewService creates a resolution service around the given strategy.
// Cache entries live for the process lifetime; volume is small enough that
// no eviction is needed.
func NewService(resolver Resolver, opts ...ServiceOption) *Service {
	s := &Service{
		resolver: resolver,
		cache:    gocache.New(gocache.NoExpiration, 0),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the normalized record for a query. Cache hits never touch
// the network. On any lookup failure a fallback record is synthesized,
// cached, and returned; the caller inspects IsFallback to judge quality.
func (s *Service) Resolve(ctx context.Context, q Query) *Record {
	key := cacheKey(q)
	if cached, ok := s.cache.Get(key); ok {
		cacheHits.Inc()
		return cached.(*Record)
	}

	start := time.Now()
	record, err := s.resolver.Lookup(ctx, q)
	if err != nil {
		s.logger.Warn("Place lookup failed, using fallback",
			"query", q.Text,
			"duration", time.Since(start),
			"error", err)
		lookups.WithLabelValues(outcomeFallback).Inc()
		record = s.fallbackRecord(q)
	} else {
		lookups.WithLabelValues(outcomeResolved).Inc()
		record.ReviewSummary = truncateSummary(record.ReviewSummary)
		record.Photos = capPhotos(record.Photos)
		if record.MapLink == "" {
			record.MapLink = mapLinkFor(q.Text)
		}
	}

	s.cache.Set(key, record, gocache.NoExpiration)
	return record
}

// fallbackRecord synthesizes a low-confidence record from the raw query.
// Every required field is populated so downstream code can treat fallback
// and resolved records uniformly.
func (s *Service) fallbackRecord(q Query) *Record {
	record := &Record{
		Name:       q.Text,
		Address:    q.Text,
		Photos:     []string{},
		MapLink:    mapLinkFor(q.Text),
		IsFallback: true,
	}
	if q.Hint != nil {
		record.Coordinates = *q.Hint
	}
	return record
}
