// Package model provides capability-based model selection for conversation
// stages. Instead of hardcoding model names, callers specify capabilities
// ("conversation", "itinerary", "fast") and the registry resolves them to
// available endpoints with fallback chains.
package model

// Capability represents a semantic capability for model selection.
type Capability string

const (
	// CapabilityConversation is for guided multi-turn dialogue: requirement
	// collection and clarifying questions.
	CapabilityConversation Capability = "conversation"

	// CapabilityItinerary is for structured itinerary generation, where
	// output quality matters more than latency.
	CapabilityItinerary Capability = "itinerary"

	// CapabilityFast is for quick, low-stakes turns.
	CapabilityFast Capability = "fast"
)

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityConversation, CapabilityItinerary, CapabilityFast:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for
// invalid values.
func ParseCapability(s string) Capability {
	c := Capability(s)
	if c.IsValid() {
		return c
	}
	return ""
}
