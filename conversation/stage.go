package conversation

import "github.com/tripweave/tripweave/conversation/prompts"

// Stage is one phase of the guided conversation.
type Stage int

const (
	// StageCollecting gathers trip requirements through dialogue.
	StageCollecting Stage = iota

	// StagePreviewing produces a draft itinerary for reaction.
	StagePreviewing

	// StageFinalizing produces the complete plan.
	StageFinalizing

	// StageCompleted means the plan has been finalized, enriched, and
	// handed off.
	StageCompleted
)

// String returns the stage name used by prompt selection and logging.
func (s Stage) String() string {
	switch s {
	case StagePreviewing:
		return prompts.StagePreviewing
	case StageFinalizing:
		return prompts.StageFinalizing
	case StageCompleted:
		return "completed"
	default:
		return prompts.StageCollecting
	}
}

// Role identifies a conversation turn's author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the conversation history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
