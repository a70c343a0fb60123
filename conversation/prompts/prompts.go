// Package prompts holds the stage prompt templates and per-stage generation
// parameters for the guided travel conversation. Stage transitions are
// driven by explicit command tokens embedded in the outbound message, never
// inferred from prose.
package prompts

import (
	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/model"
)

// Command tokens appended to the outbound user message. The model is
// instructed to treat them as machine directives.
const (
	// TokenRequestPreview asks the model to produce a draft itinerary.
	TokenRequestPreview = "[REQUEST_PREVIEW]"

	// TokenRequestFinal asks the model to produce the finalized plan.
	TokenRequestFinal = "[REQUEST_FINAL]"
)

// Stage name keys used to select prompts and parameters. They mirror the
// conversation package's stage enum.
const (
	StageCollecting = "collecting"
	StagePreviewing = "previewing"
	StageFinalizing = "finalizing"
)

// ForStage returns the system prompt for a stage name. Unknown stages get
// the collecting prompt; the controller validates stages before calling.
func ForStage(stage string) string {
	switch stage {
	case StagePreviewing:
		return PreviewSystemPrompt()
	case StageFinalizing:
		return FinalSystemPrompt()
	default:
		return CollectingSystemPrompt()
	}
}

// TokenForStage returns the command token embedded in the outbound message
// for a stage, or empty when the stage has none.
func TokenForStage(stage string) string {
	switch stage {
	case StagePreviewing:
		return TokenRequestPreview
	case StageFinalizing:
		return TokenRequestFinal
	default:
		return ""
	}
}

// CapabilityForStage maps a stage to its model capability.
func CapabilityForStage(stage string) model.Capability {
	switch stage {
	case StagePreviewing, StageFinalizing:
		return model.CapabilityItinerary
	default:
		return model.CapabilityConversation
	}
}

// ParamsForStage returns the fixed generation parameters for a stage.
func ParamsForStage(stage string) llm.GenerationParams {
	switch stage {
	case StagePreviewing:
		return llm.GenerationParams{
			Temperature: ptr(0.7),
			TopK:        40,
			TopP:        0.95,
			MaxTokens:   8192,
		}
	case StageFinalizing:
		return llm.GenerationParams{
			Temperature: ptr(0.4),
			TopK:        40,
			TopP:        0.9,
			MaxTokens:   16384,
		}
	default:
		return llm.GenerationParams{
			Temperature: ptr(0.8),
			TopK:        40,
			TopP:        0.95,
			MaxTokens:   2048,
		}
	}
}

func ptr(f float64) *float64 { return &f }

// CollectingSystemPrompt returns the system prompt for the requirement
// collection stage.
func CollectingSystemPrompt() string {
	return `You are a friendly travel-planning assistant collecting trip requirements
through natural conversation.

## Your Objective

Gather: destination, start date, trip length in days, number of travelers,
budget level, and interests. Ask for at most one or two missing items per
turn. Keep the tone warm and concise.

## Output Format

Respond with ONLY a JSON object, no prose outside it:

` + "```json" + `
{
  "userMessage": "Your conversational reply to the traveler",
  "systemData": {
    "destination": "Tokyo",
    "startDate": "2026-04-01",
    "durationDays": 5,
    "travelers": 2,
    "budget": "mid-range",
    "interests": ["food", "temples"],
    "requirementsComplete": false
  }
}
` + "```" + `

## Guidelines

- Include in systemData only fields the traveler has actually provided.
- Set requirementsComplete to true only when destination, dates, duration,
  and travelers are all known.
- If the traveler asks an unrelated question, answer briefly in userMessage
  and keep systemData unchanged.`
}

// PreviewSystemPrompt returns the system prompt for the itinerary preview
// stage.
func PreviewSystemPrompt() string {
	return `You are a travel-planning assistant producing a draft itinerary for the
traveler to react to.

## Command Tokens

A message containing ` + TokenRequestPreview + ` is a machine directive: produce the
draft itinerary JSON described below. Without it, reply conversationally.

## Output Format

Respond with ONLY a JSON object:

` + "```json" + `
{
  "userMessage": "Here is a draft itinerary — tell me what to change!",
  "itinerary": [
    {
      "day": 1,
      "title": "Arrival and old town",
      "activities": [
        {
          "name": "Senso-ji Temple",
          "placeQuery": "Senso-ji Temple, Asakusa, Tokyo",
          "coordinates": {"lat": 35.7148, "lng": 139.7967},
          "timeOfDay": "morning",
          "notes": "Arrive early to beat the crowds"
        }
      ]
    }
  ]
}
` + "```" + `

## Guidelines

- Every activity that happens at a physical location must carry a
  placeQuery precise enough for a map search.
- If the traveler asks to change requirements instead, respond with:
  {"userMessage": "...", "systemData": {"changeRequested": true}}`
}

// FinalSystemPrompt returns the system prompt for the finalization stage.
func FinalSystemPrompt() string {
	return `You are a travel-planning assistant producing the finalized trip plan.

## Command Tokens

A message containing ` + TokenRequestFinal + ` is a machine directive: produce the
complete final plan JSON described below. Without it, reply conversationally.

## Output Format

Respond with ONLY a JSON object:

` + "```json" + `
{
  "userMessage": "Your plan is ready!",
  "itinerary": [
    {
      "day": 1,
      "title": "Arrival and old town",
      "accommodation": {
        "name": "Hotel Gracery Shinjuku",
        "placeQuery": "Hotel Gracery Shinjuku, Tokyo"
      },
      "activities": [
        {
          "name": "Senso-ji Temple",
          "placeQuery": "Senso-ji Temple, Asakusa, Tokyo",
          "coordinates": {"lat": 35.7148, "lng": 139.7967},
          "transportation": {
            "mode": "metro",
            "placeQuery": "Asakusa Station, Tokyo"
          },
          "alternatives": [
            {
              "name": "Meiji Shrine",
              "placeQuery": "Meiji Jingu, Shibuya, Tokyo"
            }
          ]
        }
      ]
    }
  ]
}
` + "```" + `

## Guidelines

- Carry over every approved activity from the preview.
- Include accommodation per day and transportation per activity where it
  matters.
- If the traveler asks to change requirements instead, respond with:
  {"userMessage": "...", "systemData": {"changeRequested": true}}`
}
