package memory

import (
	"fmt"
	"math"
	"sort"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore"
)

// MakeFilter converts caller-supplied filter values into a store filter.
//
// For every field with a non-nil supplied value it emits one equality
// condition on "metadata.<name>"; fields without a value are omitted, never
// defaulted. When no condition results it returns nil so the search runs
// unfiltered. A value whose type does not match the declared field type is
// rejected before any database call.
func MakeFilter(fields FieldSet, values map[string]any) (*vectorstore.Filter, error) {
	var conditions []vectorstore.Condition

	// Sorted for stable condition order; matching is conjunctive so order
	// does not change results.
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := values[name]
		if value == nil {
			continue
		}

		field, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("unknown filter field %q", name)
		}

		typed, err := coerceValue(field, value)
		if err != nil {
			return nil, err
		}

		conditions = append(conditions, vectorstore.Condition{
			Key:   "metadata." + field.Name,
			Value: typed,
		})
	}

	if len(conditions) == 0 {
		return nil, nil
	}
	return &vectorstore.Filter{Must: conditions}, nil
}

// coerceValue checks a supplied value against the declared field type and
// normalizes it to the single representation the store backends expect.
// JSON numbers arrive as float64, so integer fields accept whole floats.
func coerceValue(field FilterableField, value any) (any, error) {
	switch field.Type {
	case FieldTypeKeyword:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case FieldTypeBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case FieldTypeInteger:
		switch n := value.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case float64:
			if n == math.Trunc(n) {
				return int64(n), nil
			}
		}
	case FieldTypeFloat:
		switch n := value.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
	}
	return nil, fmt.Errorf("filter field %q: expected a %s value, got %T", field.Name, field.Type, value)
}
