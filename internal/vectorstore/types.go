package vectorstore

// Point is a single vector with its payload, ready to be upserted.
type Point struct {
	// ID is the unique identifier for this point (a UUID string).
	ID string

	// Vector is the dense embedding representation.
	Vector []float32

	// Payload is the metadata stored alongside the vector.
	Payload map[string]any
}

// ScoredPoint is a single similarity-search result.
type ScoredPoint struct {
	// ID is the unique identifier of the matched point.
	ID string

	// Score is the similarity score (higher = more similar for cosine).
	Score float32

	// Payload contains the metadata stored with the vector.
	Payload map[string]any
}

// Record is a point returned by a full scroll, without a score.
type Record struct {
	ID      string
	Payload map[string]any
}

// QueryRequest represents a single similarity search.
type QueryRequest struct {
	// Collection is the target collection to search in.
	Collection string

	// VectorName selects the named vector space inside the collection.
	VectorName string

	// Vector is the query embedding to find similar vectors for.
	Vector []float32

	// Limit is the maximum number of results to return.
	Limit int

	// Filter is an optional conjunctive equality filter; nil means
	// unfiltered search.
	Filter *Filter
}
