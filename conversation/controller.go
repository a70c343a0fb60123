// Package conversation implements the multi-stage travel-planning dialogue:
// collect requirements, preview an itinerary, finalize the plan, and hand
// the enriched result to the renderer through the session store.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/tripweave/tripweave/conversation/prompts"
	"github.com/tripweave/tripweave/enrich"
	"github.com/tripweave/tripweave/extract"
	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/plan"
	"github.com/tripweave/tripweave/store"
)

// Store handoff namespaces read by the renderer.
const (
	// NamespaceFinalPlan holds the finalized plan as produced by the LLM.
	NamespaceFinalPlan = "finalPlan"

	// NamespaceEnrichedPlan holds the place-enriched plan. Absent when
	// enrichment aborted; the renderer then falls back to the final plan.
	NamespaceEnrichedPlan = "enrichedPlan"
)

// retryMessage is what the chat surface shows when a turn failed
// recoverably. The conversation state is untouched, so resending is safe.
const retryMessage = "Sorry, I hit a snag putting that answer together. Please try again."

// completedMessage is returned for messages after the plan is done.
const completedMessage = "Your plan is finished and ready to open. Start a new chat to plan another trip."

// LLMClient is the completion surface the controller depends on. *llm.Client
// satisfies it; tests substitute a mock.
type LLMClient interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Enricher attaches place details to a finalized plan. *enrich.Enricher
// satisfies it.
type Enricher interface {
	Enrich(ctx context.Context, doc plan.Document) (plan.Document, error)
}

// Reply is the outcome of one advance: the text for the chat surface and
// the stage after the turn.
type Reply struct {
	Text  string
	Stage Stage

	// Retryable is set when the turn failed recoverably and the state was
	// left unchanged.
	Retryable bool
}

// Controller drives sessions through the conversation stages.
type Controller struct {
	client   LLMClient
	enricher Enricher
	results  store.Store
	logger   *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController wires the conversation pipeline together.
func NewController(client LLMClient, enricher Enricher, results store.Store, opts ...Option) *Controller {
	c := &Controller{
		client:   client,
		enricher: enricher,
		results:  results,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Advance processes one user message for a session. Calls for the same
// session are serialized: a message arriving while another is in flight
// waits its turn. Recoverable failures (LLM call errors, extraction errors)
// produce a retryable reply and leave the session unchanged apart from the
// appended user message.
func (c *Controller) Advance(ctx context.Context, s *Session, userMessage string) (*Reply, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, Turn{Role: RoleUser, Text: userMessage})

	if s.stage == StageCompleted {
		reply := &Reply{Text: completedMessage, Stage: StageCompleted}
		s.history = append(s.history, Turn{Role: RoleAssistant, Text: reply.Text})
		return reply, nil
	}

	stageName := s.stage.String()
	resp, err := c.client.Complete(ctx, llm.Request{
		Capability: prompts.CapabilityForStage(stageName).String(),
		Messages:   c.composeMessages(s, stageName),
		Params:     prompts.ParamsForStage(stageName),
	})
	if err != nil {
		if ce, ok := llm.AsCallError(err); ok {
			c.logger.Warn("LLM call failed, leaving state unchanged",
				"session", s.id,
				"stage", stageName,
				"kind", ce.Kind.String(),
				"error", err)
		} else {
			c.logger.Warn("LLM call failed, leaving state unchanged",
				"session", s.id,
				"stage", stageName,
				"error", err)
		}
		return &Reply{Text: retryMessage, Stage: s.stage, Retryable: true}, nil
	}

	envelope, err := extract.Extract(resp.Content)
	if err != nil {
		var malformed *extract.MalformedError
		if errors.As(err, &malformed) {
			// Snippet is developer-facing only; never surfaced to the user.
			c.logger.Warn("Response JSON malformed, leaving state unchanged",
				"session", s.id,
				"stage", stageName,
				"request_id", resp.RequestID,
				"snippet", malformed.Snippet)
		} else {
			c.logger.Warn("No JSON in response, leaving state unchanged",
				"session", s.id,
				"stage", stageName,
				"request_id", resp.RequestID)
		}
		return &Reply{Text: retryMessage, Stage: s.stage, Retryable: true}, nil
	}

	return c.dispatch(ctx, s, envelope)
}

// composeMessages builds the outbound message list: stage system prompt,
// prior history, and the latest user message carrying the stage command
// token. Tokens live only in the outbound copy, never in stored history.
func (c *Controller) composeMessages(s *Session, stageName string) []llm.Message {
	messages := make([]llm.Message, 0, len(s.history)+1)
	messages = append(messages, llm.Message{Role: "system", Content: prompts.ForStage(stageName)})

	for i, turn := range s.history {
		content := turn.Text
		if i == len(s.history)-1 {
			if token := prompts.TokenForStage(stageName); token != "" {
				content = content + "\n\n" + token
			}
		}
		messages = append(messages, llm.Message{Role: string(turn.Role), Content: content})
	}
	return messages
}

// dispatch routes a parsed envelope according to the current stage. Caller
// holds s.mu.
func (c *Controller) dispatch(ctx context.Context, s *Session, envelope *extract.Envelope) (*Reply, error) {
	// Plain dialogue never advances the stage.
	if envelope.Kind == extract.KindMessage {
		text := envelope.UserMessage
		if text == "" {
			text = retryMessage
		}
		s.history = append(s.history, Turn{Role: RoleAssistant, Text: text})
		return &Reply{Text: text, Stage: s.stage}, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		c.logger.Warn("Envelope payload unreadable, leaving state unchanged",
			"session", s.id, "error", err)
		return &Reply{Text: retryMessage, Stage: s.stage, Retryable: true}, nil
	}

	systemData, _ := payload["systemData"].(map[string]any)

	// An explicit change request re-enters collection from any later stage.
	if flag, _ := systemData["changeRequested"].(bool); flag && s.stage != StageCollecting {
		s.stage = StageCollecting
		text := envelope.UserMessage
		if text == "" {
			text = "Sure — what would you like to change?"
		}
		s.history = append(s.history, Turn{Role: RoleAssistant, Text: text})
		return &Reply{Text: text, Stage: s.stage}, nil
	}

	switch s.stage {
	case StageCollecting:
		return c.dispatchCollecting(s, envelope, systemData)
	case StagePreviewing:
		return c.dispatchPreviewing(s, envelope, payload)
	case StageFinalizing:
		return c.dispatchFinalizing(ctx, s, envelope, payload)
	default:
		text := fallbackText(envelope.UserMessage)
		s.history = append(s.history, Turn{Role: RoleAssistant, Text: text})
		return &Reply{Text: text, Stage: s.stage}, nil
	}
}

func (c *Controller) dispatchCollecting(s *Session, envelope *extract.Envelope, systemData map[string]any) (*Reply, error) {
	if systemData != nil {
		s.mergeFields(systemData)
	}

	text := fallbackText(envelope.UserMessage)
	s.history = append(s.history, Turn{Role: RoleAssistant, Text: text})

	if complete, _ := systemData["requirementsComplete"].(bool); complete {
		s.stage = StagePreviewing
		c.logger.Info("Requirements complete, moving to preview",
			"session", s.id, "fields", len(s.fields))
	}
	return &Reply{Text: text, Stage: s.stage}, nil
}

func (c *Controller) dispatchPreviewing(s *Session, envelope *extract.Envelope, payload map[string]any) (*Reply, error) {
	text := fallbackText(envelope.UserMessage)
	s.history = append(s.history, Turn{Role: RoleAssistant, Text: text})

	if plan.Classify(plan.Document(payload)) != plan.ShapeUnknown {
		s.fields["preview"] = payload
		s.stage = StageFinalizing
		c.logger.Info("Preview produced, moving to finalization", "session", s.id)
	}
	return &Reply{Text: text, Stage: s.stage}, nil
}

// dispatchFinalizing handles the terminal stage: enrich the plan, hand both
// documents to the store, and complete the session. Enrichment failure
// degrades to the unenriched plan; store failure is surfaced as a hard
// error because the renderer would otherwise read a stale plan.
func (c *Controller) dispatchFinalizing(ctx context.Context, s *Session, envelope *extract.Envelope, payload map[string]any) (*Reply, error) {
	text := fallbackText(envelope.UserMessage)

	doc := plan.Document(payload)
	if plan.Classify(doc) == plan.ShapeUnknown {
		// Structured but not a plan; treat as dialogue.
		s.history = append(s.history, Turn{Role: RoleAssistant, Text: text})
		return &Reply{Text: text, Stage: s.stage}, nil
	}

	s.history = append(s.history, Turn{Role: RoleAssistant, Text: text})

	finalRaw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := c.results.Put(ctx, store.Key(NamespaceFinalPlan, s.id), finalRaw); err != nil {
		return nil, err
	}

	enriched, err := c.enricher.Enrich(ctx, doc)
	if err != nil {
		// The renderer falls back to the unenriched plan.
		c.logger.Warn("Enrichment aborted, handing off unenriched plan",
			"session", s.id, "error", err)
	} else {
		enrichedRaw, err := json.Marshal(enriched)
		if err != nil {
			return nil, err
		}
		if err := c.results.Put(ctx, store.Key(NamespaceEnrichedPlan, s.id), enrichedRaw); err != nil {
			return nil, err
		}
	}

	s.stage = StageCompleted
	c.logger.Info("Plan finalized", "session", s.id, "enriched", err == nil)
	return &Reply{Text: text, Stage: StageCompleted}, nil
}

func fallbackText(s string) string {
	if s == "" {
		return "Done — let me know what you think."
	}
	return s
}

// Enricher must remain satisfied by the concrete implementation.
var _ Enricher = (*enrich.Enricher)(nil)
