// Package extract pulls the single structured JSON object out of a free-form
// LLM response and classifies it into an envelope. It is the pipeline's
// primary defense against model output that mixes prose with JSON or wraps
// JSON in markdown fences, and it never panics on arbitrary input.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/tripweave/tripweave/plan"
)

// Kind classifies what one LLM turn produced.
type Kind int

const (
	// KindMessage is ordinary clarifying dialogue with no structured payload.
	KindMessage Kind = iota

	// KindPlan carries a structured payload in one of the known plan layouts.
	KindPlan
)

// Envelope is the classified result of parsing one LLM turn.
type Envelope struct {
	Kind        Kind
	UserMessage string
	Payload     json.RawMessage
}

// ErrNoJSON is returned when the text contains no complete balanced JSON
// object. Truncated responses land here, never in a silent partial parse.
var ErrNoJSON = errors.New("no JSON object found in response")

// MalformedError is returned when a balanced candidate substring fails to
// parse. The offending snippet is retained for developer-facing diagnostics
// and must never be shown to the end user.
type MalformedError struct {
	Snippet string
	Err     error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed JSON in response: %v", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// fencePattern matches a markdown code fence optionally labeled json. When
// present the object search is restricted to the fence contents.
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

// payloadKeys are the top-level keys that mark a "user message + structured
// payload" envelope shape.
var payloadKeys = []string{"systemData", "itinerary", "dailyActivities", "travelPlan"}

// Extract finds the first complete JSON object embedded in text, parses it,
// and classifies it. It returns ErrNoJSON when no balanced object exists and
// *MalformedError when the balanced candidate does not parse.
func Extract(text string) (*Envelope, error) {
	search := text
	if m := fencePattern.FindStringSubmatch(text); len(m) > 1 {
		search = m[1]
	}

	candidate, ok := scanObject(search)
	if !ok {
		// A fence may hold prose while the object sits outside it.
		if search != text {
			candidate, ok = scanObject(text)
		}
		if !ok {
			return nil, ErrNoJSON
		}
	}

	// Parse the candidate verbatim first so valid objects round-trip
	// byte-for-byte. Repair is a second chance, not a default pass.
	var obj map[string]any
	parsed := candidate
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		cleaned := clean(candidate)
		if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
			return nil, &MalformedError{Snippet: candidate, Err: err}
		}
		parsed = cleaned
	}

	return classify(obj, parsed), nil
}

// scanObject locates the first '{' and walks forward tracking brace depth,
// an in-string flag, and an escape-pending flag. Braces inside string values
// never affect depth. Returns the balanced substring, or ok=false when the
// object never closes.
func scanObject(text string) (string, bool) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// classify decides the envelope shape of a parsed object. An object carrying
// a userMessage string plus one of the known payload keys is a structured
// plan envelope whose payload is the whole object. An object with only a
// userMessage is plain dialogue. Anything else becomes the payload as-is
// with an empty user message, the plan classifier deciding whether it is
// structured.
func classify(obj map[string]any, raw string) *Envelope {
	userMessage, _ := obj["userMessage"].(string)

	if userMessage != "" {
		hasPayload := false
		for _, k := range payloadKeys {
			if _, ok := obj[k]; ok {
				hasPayload = true
				break
			}
		}
		if !hasPayload && len(obj) == 1 {
			return &Envelope{Kind: KindMessage, UserMessage: userMessage}
		}
		if hasPayload {
			return &Envelope{
				Kind:        KindPlan,
				UserMessage: userMessage,
				Payload:     json.RawMessage(raw),
			}
		}
	}

	kind := KindMessage
	if plan.Classify(plan.Document(obj)) != plan.ShapeUnknown {
		kind = KindPlan
	} else {
		for _, k := range payloadKeys {
			if _, ok := obj[k]; ok {
				kind = KindPlan
				break
			}
		}
	}
	return &Envelope{Kind: kind, Payload: json.RawMessage(raw)}
}
