// Package plan models the finalized itinerary document produced by the
// conversation pipeline. A plan is a recursive JSON-shaped tree whose leaves
// may carry free-text place references awaiting resolution.
package plan

import (
	"encoding/json"
	"fmt"
)

// Document is a decoded plan tree. It is the unit handed between the stage
// controller, the enricher, and the session store.
type Document map[string]any

// PlaceQueryKey is the field name that marks a node as carrying a place
// reference. Enrichment attaches PlaceDetailsKey as a sibling of this field.
const PlaceQueryKey = "placeQuery"

// PlaceDetailsKey is the field name under which resolved place data is
// attached. It is the only field enrichment is allowed to add.
const PlaceDetailsKey = "placeDetails"

// CoordinatesKey is the optional sibling field holding a coordinate hint
// for the place reference ({"lat": ..., "lng": ...}).
const CoordinatesKey = "coordinates"

// Decode parses raw JSON into a Document.
func Decode(raw json.RawMessage) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return doc, nil
}

// Clone returns a deep copy of the document. Enrichment operates on the copy
// so the caller's tree is never mutated.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(d).(Document)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Document:
		out := make(Document, len(val))
		for k, child := range val {
			out[k] = cloneValue(child)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = cloneValue(child)
		}
		return out
	default:
		// JSON scalars (string, float64, bool, nil) are immutable.
		return val
	}
}

// Diff reports the paths at which a and b differ, ignoring any subtree rooted
// at ignoreKey. It is used to verify that enrichment only ever adds the
// ignored field and leaves the rest of the tree intact.
func Diff(a, b Document, ignoreKey string) []string {
	var paths []string
	diffValue("$", map[string]any(a), map[string]any(b), ignoreKey, &paths)
	return paths
}

func diffValue(path string, a, b any, ignoreKey string, paths *[]string) {
	am, aIsMap := asMap(a)
	bm, bIsMap := asMap(b)
	if aIsMap && bIsMap {
		for k, av := range am {
			if k == ignoreKey {
				continue
			}
			bv, ok := bm[k]
			if !ok {
				*paths = append(*paths, path+"."+k)
				continue
			}
			diffValue(path+"."+k, av, bv, ignoreKey, paths)
		}
		for k := range bm {
			if k == ignoreKey {
				continue
			}
			if _, ok := am[k]; !ok {
				*paths = append(*paths, path+"."+k)
			}
		}
		return
	}

	as, aIsSlice := a.([]any)
	bs, bIsSlice := b.([]any)
	if aIsSlice && bIsSlice {
		if len(as) != len(bs) {
			*paths = append(*paths, path)
			return
		}
		for i := range as {
			diffValue(fmt.Sprintf("%s[%d]", path, i), as[i], bs[i], ignoreKey, paths)
		}
		return
	}

	if a != b {
		*paths = append(*paths, path)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}
