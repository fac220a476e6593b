package vectorstore

// Condition is a single equality constraint on a payload key path
// (e.g. "metadata.color" == "red"). Value carries one of the types the
// filterable-field model produces: string, int64, float64 or bool.
type Condition struct {
	Key   string
	Value any
}

// Filter is a conjunctive set of equality conditions: a point matches when
// every condition matches. A nil *Filter means no filtering at all — the
// backends must not translate it into an empty native filter object.
type Filter struct {
	Must []Condition
}

// IsEmpty reports whether the filter carries no conditions.
func (f *Filter) IsEmpty() bool {
	return f == nil || len(f.Must) == 0
}
