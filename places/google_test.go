package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newPlacesTestServer(t *testing.T, textSearchBody, detailsBody string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/textsearch/"):
			w.Write([]byte(textSearchBody))
		case strings.HasPrefix(r.URL.Path, "/details/"):
			w.Write([]byte(detailsBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestGoogleResolverLookup(t *testing.T) {
	textSearch := `{
		"status": "OK",
		"results": [{
			"place_id": "place-123",
			"name": "Senso-ji",
			"formatted_address": "2 Chome-3-1 Asakusa, Taito City, Tokyo",
			"geometry": {"location": {"lat": 35.7148, "lng": 139.7967}}
		}]
	}`
	details := `{
		"status": "OK",
		"result": {
			"name": "Senso-ji",
			"formatted_address": "2 Chome-3-1 Asakusa, Taito City, Tokyo",
			"rating": 4.5,
			"url": "https://maps.google.com/?cid=123",
			"geometry": {"location": {"lat": 35.7148, "lng": 139.7967}},
			"photos": [
				{"photo_reference": "ref1"},
				{"photo_reference": "ref2"},
				{"photo_reference": "ref3"},
				{"photo_reference": "ref4"}
			],
			"reviews": [
				{"text": "Beautiful temple."},
				{"text": "  "},
				{"text": "Very crowded in the morning."}
			]
		}
	}`
	server := newPlacesTestServer(t, textSearch, details)
	defer server.Close()

	resolver := NewGoogleResolver("test-key", WithBaseURL(server.URL))
	record, err := resolver.Lookup(context.Background(), Query{Text: "Senso-ji Temple"})

	assert.NoError(t, err)
	assert.Equal(t, "place-123", record.ID)
	assert.Equal(t, "Senso-ji", record.Name)
	assert.Equal(t, "2 Chome-3-1 Asakusa, Taito City, Tokyo", record.Address)
	assert.Equal(t, LatLng{Lat: 35.7148, Lng: 139.7967}, record.Coordinates)
	if assert.NotNil(t, record.Rating) {
		assert.Equal(t, 4.5, *record.Rating)
	}
	assert.Equal(t, "https://maps.google.com/?cid=123", record.MapLink)
	assert.Len(t, record.Photos, 3, "photo list is capped")
	assert.Equal(t, "Beautiful temple. Very crowded in the morning.", record.ReviewSummary)
	assert.False(t, record.IsFallback)
}

func TestGoogleResolverZeroResults(t *testing.T) {
	server := newPlacesTestServer(t, `{"status": "ZERO_RESULTS", "results": []}`, `{}`)
	defer server.Close()

	resolver := NewGoogleResolver("test-key", WithBaseURL(server.URL))
	_, err := resolver.Lookup(context.Background(), Query{Text: "no such place"})
	assert.True(t, errors.Is(err, ErrNoResults))
}

func TestGoogleResolverErrorStatus(t *testing.T) {
	server := newPlacesTestServer(t, `{"status": "REQUEST_DENIED"}`, `{}`)
	defer server.Close()

	resolver := NewGoogleResolver("bad-key", WithBaseURL(server.URL))
	_, err := resolver.Lookup(context.Background(), Query{Text: "Senso-ji"})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoResults))
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestGoogleResolverDetailsNotFound(t *testing.T) {
	textSearch := `{"status": "OK", "results": [{"place_id": "stale-id"}]}`
	server := newPlacesTestServer(t, textSearch, `{"status": "NOT_FOUND"}`)
	defer server.Close()

	resolver := NewGoogleResolver("test-key", WithBaseURL(server.URL))
	_, err := resolver.Lookup(context.Background(), Query{Text: "Senso-ji"})
	assert.True(t, errors.Is(err, ErrNoResults))
}

func TestGoogleResolverHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	resolver := NewGoogleResolver("test-key", WithBaseURL(server.URL))
	_, err := resolver.Lookup(context.Background(), Query{Text: "Senso-ji"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGoogleResolverHintBias(t *testing.T) {
	var gotLocation string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/textsearch/") {
			gotLocation = r.URL.Query().Get("location")
			w.Write([]byte(`{"status": "ZERO_RESULTS"}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	resolver := NewGoogleResolver("test-key", WithBaseURL(server.URL))
	hint := &LatLng{Lat: 34.9671, Lng: 135.7727}
	resolver.Lookup(context.Background(), Query{Text: "Fushimi Inari", Hint: hint})

	assert.Equal(t, "34.967100,135.772700", gotLocation)
}

func TestTableResolverLookup(t *testing.T) {
	table := NewTableResolver([]Record{
		{Name: "Senso-ji", Address: "Asakusa, Tokyo"},
		{Name: "Fushimi Inari Taisha", Address: "Kyoto"},
	})

	tests := []struct {
		name     string
		query    string
		wantName string
		wantErr  bool
	}{
		{name: "exact", query: "Senso-ji", wantName: "Senso-ji"},
		{name: "query contains entry", query: "senso-ji temple area", wantName: "Senso-ji"},
		{name: "entry contains query", query: "fushimi inari", wantName: "Fushimi Inari Taisha"},
		{name: "miss", query: "Eiffel Tower", wantErr: true},
		{name: "empty", query: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := table.Lookup(context.Background(), Query{Text: tt.query})
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrNoResults))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantName, record.Name)
			assert.NotEmpty(t, record.MapLink)
		})
	}
}
