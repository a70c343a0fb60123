// Package places resolves free-text place references into normalized place
// records. Resolution strategies are pluggable: a Google Places-style
// two-step HTTP lookup for production and a fixed-table lookup for offline
// use. The Service wrapper adds caching, fallback synthesis, and metrics so
// callers never have to handle resolution failure.
package places

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// maxPhotos caps the number of photo URLs kept on a record.
const maxPhotos = 3

// reviewSummaryBudget is the maximum review summary length in runes.
// Longer summaries are truncated with an ellipsis marker.
const reviewSummaryBudget = 280

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Query is one place reference awaiting resolution: a free-text description
// plus an optional coordinate hint for location biasing.
type Query struct {
	Text string
	Hint *LatLng
}

// Record is a normalized place lookup result.
type Record struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Coordinates   LatLng   `json:"coordinates"`
	Rating        *float64 `json:"rating,omitempty"`
	Photos        []string `json:"photos"`
	ReviewSummary string   `json:"reviewSummary"`
	MapLink       string   `json:"mapLink"`
	IsFallback    bool     `json:"isFallback"`
}

// Resolver is a pluggable resolution strategy. Implementations return
// ErrNoResults when the upstream reports a documented empty result, and any
// other error for transport or protocol failures.
type Resolver interface {
	Lookup(ctx context.Context, q Query) (*Record, error)
}

// ErrNoResults indicates the upstream answered successfully but matched
// nothing. It is distinct from a transport error.
var ErrNoResults = fmt.Errorf("place lookup: no results")

// cacheKey builds the cache key from the normalized query text and the
// optional coordinate hint.
func cacheKey(q Query) string {
	text := strings.ToLower(strings.Join(strings.Fields(q.Text), " "))
	if q.Hint == nil {
		return text
	}
	return fmt.Sprintf("%s|%.4f,%.4f", text, q.Hint.Lat, q.Hint.Lng)
}

// mapLinkFor builds a best-effort Google Maps search link from raw query
// text. Used for both resolved and fallback records.
func mapLinkFor(text string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(text)
}

// truncateSummary caps the review summary at maxSummaryRunes runes.
func truncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= reviewSummaryBudget {
		return s
	}
	return string(runes[:reviewSummaryBudget]) + "…"
}

// capPhotos enforces the photo list cap.
func capPhotos(photos []string) []string {
	if len(photos) > maxPhotos {
		return photos[:maxPhotos]
	}
	return photos
}
