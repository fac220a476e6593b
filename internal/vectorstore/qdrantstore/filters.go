package qdrantstore

import (
	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore"
)

// convertFilter converts a neutral equality filter into a Qdrant filter.
// All conditions land in the Must clause (logical AND). A nil or empty
// filter converts to nil so the search runs unfiltered.
func convertFilter(f *vectorstore.Filter) *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}

	conditions := make([]*qdrant.Condition, 0, len(f.Must))
	for _, c := range f.Must {
		if cond := convertCondition(c); cond != nil {
			conditions = append(conditions, cond)
		}
	}

	if len(conditions) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: conditions}
}

// convertCondition maps one typed equality condition to its Qdrant form.
// Qdrant has no float equality match, so float values become a degenerate
// range with gte == lte.
func convertCondition(c vectorstore.Condition) *qdrant.Condition {
	switch v := c.Value.(type) {
	case string:
		return qdrant.NewMatch(c.Key, v)
	case bool:
		return qdrant.NewMatchBool(c.Key, v)
	case int64:
		return qdrant.NewMatchInt(c.Key, v)
	case float64:
		return qdrant.NewRange(c.Key, &qdrant.Range{Gte: &v, Lte: &v})
	default:
		// Unsupported type; the filter builder never produces one.
		return nil
	}
}
