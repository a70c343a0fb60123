package plan

import "github.com/samber/lo"

// Shape identifies which of the known top-level plan payload layouts a
// document conforms to. The LLM emits one of a small closed set of layouts,
// distinguished by characteristic top-level keys; downstream code switches
// exhaustively on the Shape instead of probing optional fields.
type Shape int

const (
	// ShapeUnknown means no recognized layout. Unknown documents are never
	// enriched.
	ShapeUnknown Shape = iota

	// ShapeItinerary is the plan-with-itinerary layout: a top-level
	// "itinerary" array of day objects, each holding activities.
	ShapeItinerary

	// ShapeDailyActivities is the plan-with-daily-activities layout: a
	// top-level "dailyActivities" (or legacy "travelPlan") object keyed by
	// day.
	ShapeDailyActivities
)

// String returns a human-readable shape name for logging.
func (s Shape) String() string {
	switch s {
	case ShapeItinerary:
		return "itinerary"
	case ShapeDailyActivities:
		return "dailyActivities"
	default:
		return "unknown"
	}
}

// characteristic keys per layout, checked in order.
var (
	itineraryKeys       = []string{"itinerary"}
	dailyActivitiesKeys = []string{"dailyActivities", "travelPlan"}
)

// Classify inspects a document's top-level keys and returns its Shape.
func Classify(doc Document) Shape {
	has := func(k string) bool {
		_, ok := doc[k]
		return ok
	}
	if lo.SomeBy(itineraryKeys, has) {
		return ShapeItinerary
	}
	if lo.SomeBy(dailyActivitiesKeys, has) {
		return ShapeDailyActivities
	}
	return ShapeUnknown
}
