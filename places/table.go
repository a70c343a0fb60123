package places

import (
	"context"
	"strings"
)

// TableResolver answers lookups from a fixed in-memory table, matched by
// normalized name substring. It backs offline development and deterministic
// tests, selected by configuration instead of the live API.
type TableResolver struct {
	entries []Record
}

// NewTableResolver creates a resolver over the given records.
func NewTableResolver(entries []Record) *TableResolver {
	return &TableResolver{entries: entries}
}

// Lookup implements Resolver. A query matches the first entry whose name is
// contained in, or contains, the normalized query text.
func (r *TableResolver) Lookup(_ context.Context, q Query) (*Record, error) {
	needle := normalize(q.Text)
	if needle == "" {
		return nil, ErrNoResults
	}

	for i := range r.entries {
		name := normalize(r.entries[i].Name)
		if strings.Contains(needle, name) || strings.Contains(name, needle) {
			record := r.entries[i]
			if record.MapLink == "" {
				record.MapLink = mapLinkFor(record.Name)
			}
			return &record, nil
		}
	}
	return nil, ErrNoResults
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
