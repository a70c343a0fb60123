// Package main implements a mock upstream server for offline development
// and wiring tests. It serves OpenAI-compatible /v1/chat/completions
// responses from JSON fixture files, routing by the "model" field, plus
// Google Places-style text-search and details endpoints backed by a fixture
// table. This eliminates the need for a real LLM or Places quota during
// conversation-pipeline tests, making them fast, deterministic, and
// offline-capable.
//
// Usage:
//
//	mock-llm -fixtures /path/to/fixtures -port 11434
//
// Chat fixture files are JSON named by model (e.g. "mock-collector.json"
// maps to model "mock-collector"). Sequential fixtures
// ("mock-collector.1.json", "mock-collector.2.json") are served in call
// order, then the base file repeats. This enables walking a session through
// collecting, preview, and finalization in one test run.
//
// Place fixtures live in places.json: an array of records with "name",
// "address", "lat", "lng", and optional "rating".
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// --- OpenAI-compatible types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Place fixture types ---

type placeFixture struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Rating  *float64 `json:"rating,omitempty"`
}

// --- Server ---

type server struct {
	fixtures map[string][]string // model name → ordered fixture contents
	places   []placeFixture
	calls    atomic.Int64

	modelCalls   map[string]*atomic.Int64
	modelCallsMu sync.Mutex
}

func newServer(fixtures map[string][]string, places []placeFixture) *server {
	return &server{
		fixtures:   fixtures,
		places:     places,
		modelCalls: make(map[string]*atomic.Int64),
	}
}

func (s *server) getModelCounter(model string) *atomic.Int64 {
	s.modelCallsMu.Lock()
	defer s.modelCallsMu.Unlock()
	if c, ok := s.modelCalls[model]; ok {
		return c
	}
	c := &atomic.Int64{}
	s.modelCalls[model] = c
	return c
}

func main() {
	fixtureDir := flag.String("fixtures", "", "directory containing fixture response files")
	port := flag.Int("port", 11434, "port to listen on")
	flag.Parse()

	if envDir := os.Getenv("MOCK_LLM_FIXTURES"); envDir != "" && *fixtureDir == "" {
		*fixtureDir = envDir
	}
	if *fixtureDir == "" {
		*fixtureDir = "/fixtures"
	}

	fixtures, places, err := loadFixtures(*fixtureDir)
	if err != nil {
		log.Fatalf("Failed to load fixtures from %s: %v", *fixtureDir, err)
	}
	log.Printf("Loaded %d model(s) and %d place(s) from %s", len(fixtures), len(places), *fixtureDir)

	s := newServer(fixtures, places)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/textsearch/json", s.handleTextSearch)
	mux.HandleFunc("/details/json", s.handleDetails)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Mock server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	callNum := s.calls.Add(1)
	log.Printf("[call %d] model=%s messages=%d", callNum, req.Model, len(req.Messages))

	seq, ok := s.fixtures[req.Model]
	if !ok {
		stripped := strings.TrimPrefix(req.Model, "mock-")
		seq, ok = s.fixtures[stripped]
	}
	if !ok {
		http.Error(w, fmt.Sprintf("no fixture for model %q", req.Model), http.StatusNotFound)
		return
	}

	counter := s.getModelCounter(req.Model)
	callIndex := int(counter.Add(1) - 1)

	var content string
	if callIndex < len(seq) {
		content = seq[callIndex]
	} else {
		content = seq[len(seq)-1] // repeat last fixture
	}

	resp := chatResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{
			{
				Index: 0,
				Message: chatMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     len(content) / 4, // rough estimate
			CompletionTokens: len(content) / 4,
			TotalTokens:      len(content) / 2,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleTextSearch serves a Places-style text search over the fixture
// table. Matching is case-insensitive substring in either direction.
func (s *server) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))
	w.Header().Set("Content-Type", "application/json")

	for i, p := range s.places {
		name := strings.ToLower(p.Name)
		if strings.Contains(query, name) || strings.Contains(name, query) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "OK",
				"results": []map[string]any{{
					"place_id":          fmt.Sprintf("mock-place-%d", i),
					"name":              p.Name,
					"formatted_address": p.Address,
					"geometry": map[string]any{
						"location": map[string]float64{"lat": p.Lat, "lng": p.Lng},
					},
				}},
			})
			return
		}
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ZERO_RESULTS", "results": []any{}})
}

// handleDetails serves a Places-style details lookup by the place_id
// handed out by handleTextSearch.
func (s *server) handleDetails(w http.ResponseWriter, r *http.Request) {
	placeID := r.URL.Query().Get("place_id")
	w.Header().Set("Content-Type", "application/json")

	idx, err := strconv.Atoi(strings.TrimPrefix(placeID, "mock-place-"))
	if err != nil || idx < 0 || idx >= len(s.places) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "NOT_FOUND"})
		return
	}

	p := s.places[idx]
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "OK",
		"result": map[string]any{
			"name":              p.Name,
			"formatted_address": p.Address,
			"rating":            p.Rating,
			"geometry": map[string]any{
				"location": map[string]float64{"lat": p.Lat, "lng": p.Lng},
			},
		},
	})
}

// --- Fixture loading ---

// sequencedFixturePattern matches numbered fixtures like "model.2.json".
var sequencedFixturePattern = regexp.MustCompile(`^(.+)\.(\d+)\.json$`)

// loadFixtures reads all fixture files from a directory. Numbered files
// ("model.1.json") are served in order before the base "model.json"
// repeats. A "places.json" file, if present, backs the place endpoints.
func loadFixtures(dir string) (map[string][]string, []placeFixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	var places []placeFixture
	sequenced := make(map[string]map[int]string)
	base := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		if entry.Name() == "places.json" {
			if err := json.Unmarshal(data, &places); err != nil {
				return nil, nil, fmt.Errorf("parse places.json: %w", err)
			}
			continue
		}

		if m := sequencedFixturePattern.FindStringSubmatch(entry.Name()); m != nil {
			num, _ := strconv.Atoi(m[2])
			if sequenced[m[1]] == nil {
				sequenced[m[1]] = make(map[int]string)
			}
			sequenced[m[1]][num] = string(data)
			continue
		}

		model := strings.TrimSuffix(entry.Name(), ".json")
		base[model] = string(data)
	}

	fixtures := make(map[string][]string)
	for model, numbered := range sequenced {
		nums := make([]int, 0, len(numbered))
		for n := range numbered {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		for _, n := range nums {
			fixtures[model] = append(fixtures[model], numbered[n])
		}
		if b, ok := base[model]; ok {
			fixtures[model] = append(fixtures[model], b)
		}
	}
	for model, content := range base {
		if _, ok := fixtures[model]; !ok {
			fixtures[model] = []string{content}
		}
	}

	return fixtures, places, nil
}
