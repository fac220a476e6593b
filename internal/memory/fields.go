package memory

import "fmt"

// FieldType is the declared value type of a filterable field.
type FieldType string

const (
	FieldTypeKeyword FieldType = "keyword"
	FieldTypeInteger FieldType = "integer"
	FieldTypeFloat   FieldType = "float"
	FieldTypeBoolean FieldType = "boolean"
)

// FilterableField declares one metadata attribute callers may constrain a
// search by. The set of fields is fixed per deployment and translated into
// find-tool parameters once at startup.
type FilterableField struct {
	// Name is the field identifier, matched against the "metadata.<name>"
	// payload path.
	Name string `json:"name"`

	// Type determines the accepted value type. Only equality comparison is
	// supported.
	Type FieldType `json:"field_type"`

	// Condition is the comparison operator. Present for forward
	// compatibility; "==" is the only supported value.
	Condition string `json:"condition,omitempty"`

	// Description is surfaced to callers in the tool schema.
	Description string `json:"description,omitempty"`
}

// Validate rejects field specs the system cannot serve. It runs at startup;
// an invalid spec is a configuration error, never a per-request one.
func (f FilterableField) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("filterable field: name cannot be empty")
	}
	switch f.Type {
	case FieldTypeKeyword, FieldTypeInteger, FieldTypeFloat, FieldTypeBoolean:
	default:
		return fmt.Errorf("filterable field %q: unsupported field type %q", f.Name, f.Type)
	}
	if f.Condition != "" && f.Condition != "==" {
		return fmt.Errorf("filterable field %q: unsupported condition %q", f.Name, f.Condition)
	}
	return nil
}

// FieldSet indexes filterable fields by name.
type FieldSet map[string]FilterableField

// NewFieldSet validates the given specs and indexes them by name.
func NewFieldSet(fields []FilterableField) (FieldSet, error) {
	set := make(FieldSet, len(fields))
	for _, f := range fields {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if _, ok := set[f.Name]; ok {
			return nil, fmt.Errorf("filterable field %q: declared twice", f.Name)
		}
		set[f.Name] = f
	}
	return set, nil
}
