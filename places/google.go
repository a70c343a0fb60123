package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxLookupResponseSize limits place API response bodies.
const maxLookupResponseSize = 2 * 1024 * 1024 // 2MB

// defaultBias is the regional bounding area used to bias text searches when
// a query carries no coordinate hint.
var defaultBias = LatLng{Lat: 35.6812, Lng: 139.7671}

// defaultBiasRadiusMeters is the search bias radius around the hint.
const defaultBiasRadiusMeters = 50000

// GoogleResolver looks places up against a Google Places-style HTTP API:
// a text-search call to find the best-match place id, then a details call
// for rating, photos, and reviews.
type GoogleResolver struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
}

// GoogleOption configures a GoogleResolver.
type GoogleOption func(*GoogleResolver)

// WithBaseURL overrides the API base URL. Tests point this at httptest
// servers.
func WithBaseURL(u string) GoogleOption {
	return func(r *GoogleResolver) {
		r.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(r *GoogleResolver) {
		r.httpClient = c
	}
}

// WithLanguage sets the response language for lookups.
func WithLanguage(lang string) GoogleOption {
	return func(r *GoogleResolver) {
		r.language = lang
	}
}

// NewGoogleResolver creates a resolver against the Google Places API.
func NewGoogleResolver(apiKey string, opts ...GoogleOption) *GoogleResolver {
	r := &GoogleResolver{
		baseURL:  "https://maps.googleapis.com/maps/api/place",
		apiKey:   apiKey,
		language: "en",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// textSearchResponse is the subset of the text-search payload we consume.
type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location LatLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// detailsResponse is the subset of the details payload we consume.
type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Rating           *float64 `json:"rating"`
		URL              string   `json:"url"`
		Geometry         struct {
			Location LatLng `json:"location"`
		} `json:"geometry"`
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
		Reviews []struct {
			Text string `json:"text"`
		} `json:"reviews"`
	} `json:"result"`
}

// Lookup implements Resolver. Returns ErrNoResults on a documented
// ZERO_RESULTS status; any other non-OK status or transport problem is a
// hard lookup error.
func (r *GoogleResolver) Lookup(ctx context.Context, q Query) (*Record, error) {
	match, err := r.textSearch(ctx, q)
	if err != nil {
		return nil, err
	}

	record, err := r.details(ctx, match)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *GoogleResolver) textSearch(ctx context.Context, q Query) (string, error) {
	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("key", r.apiKey)
	params.Set("language", r.language)

	bias := defaultBias
	if q.Hint != nil {
		bias = *q.Hint
	}
	params.Set("location", fmt.Sprintf("%f,%f", bias.Lat, bias.Lng))
	params.Set("radius", fmt.Sprintf("%d", defaultBiasRadiusMeters))

	var resp textSearchResponse
	if err := r.getJSON(ctx, "/textsearch/json", params, &resp); err != nil {
		return "", err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return "", ErrNoResults
	default:
		return "", fmt.Errorf("place text search: status %s", resp.Status)
	}
	if len(resp.Results) == 0 {
		return "", ErrNoResults
	}
	return resp.Results[0].PlaceID, nil
}

func (r *GoogleResolver) details(ctx context.Context, placeID string) (*Record, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", r.apiKey)
	params.Set("language", r.language)
	params.Set("fields", "name,formatted_address,geometry,rating,photos,reviews,url")

	var resp detailsResponse
	if err := r.getJSON(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, ErrNoResults
	default:
		return nil, fmt.Errorf("place details: status %s", resp.Status)
	}

	record := &Record{
		ID:          placeID,
		Name:        resp.Result.Name,
		Address:     resp.Result.FormattedAddress,
		Coordinates: resp.Result.Geometry.Location,
		Rating:      resp.Result.Rating,
		MapLink:     resp.Result.URL,
		Photos:      []string{},
	}

	for _, p := range resp.Result.Photos {
		if len(record.Photos) >= maxPhotos {
			break
		}
		record.Photos = append(record.Photos, r.photoURL(p.PhotoReference))
	}

	var reviews []string
	for _, rev := range resp.Result.Reviews {
		if strings.TrimSpace(rev.Text) != "" {
			reviews = append(reviews, strings.TrimSpace(rev.Text))
		}
	}
	record.ReviewSummary = truncateSummary(strings.Join(reviews, " "))

	return record, nil
}

func (r *GoogleResolver) photoURL(reference string) string {
	return fmt.Sprintf("%s/photo?maxwidth=800&photo_reference=%s&key=%s",
		r.baseURL, url.QueryEscape(reference), url.QueryEscape(r.apiKey))
}

func (r *GoogleResolver) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("place API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupResponseSize))
	if err != nil {
		return fmt.Errorf("read place API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("place API status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse place API response: %w", err)
	}
	return nil
}
