package conversation

import (
	"sync"

	"github.com/google/uuid"
)

// Session holds the state of one active chat: stage, history, and collected
// requirement fields. One instance exists per chat; concurrent sessions
// never share state. Mutation happens only inside Controller.Advance, which
// serializes calls per session.
type Session struct {
	id string

	// mu enforces at most one in-flight advance per session. A second
	// caller blocks (queues) rather than dispatching concurrently.
	mu sync.Mutex

	stage   Stage
	history []Turn
	fields  map[string]any
}

// NewSession creates a fresh session in the collecting stage.
func NewSession() *Session {
	return &Session{
		id:     uuid.New().String(),
		stage:  StageCollecting,
		fields: make(map[string]any),
	}
}

// ID returns the session identifier used for store handoff keys.
func (s *Session) ID() string {
	return s.id
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// History returns a copy of the conversation history.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Fields returns a copy of the collected requirement fields.
func (s *Session) Fields() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// Reset clears the session back to the collecting stage, discarding history
// and collected fields. Used when the user restarts planning.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = StageCollecting
	s.history = nil
	s.fields = make(map[string]any)
}

// mergeFields copies structured payload fields into the session, skipping
// control flags. Caller holds s.mu.
func (s *Session) mergeFields(data map[string]any) {
	for k, v := range data {
		switch k {
		case "requirementsComplete", "changeRequested":
			continue
		}
		s.fields[k] = v
	}
}
