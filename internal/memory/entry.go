package memory

// Metadata is the optional, JSON-serializable mapping attached to an entry.
// A nil Metadata is distinct from an empty one: entries stored without
// metadata come back without metadata.
type Metadata = map[string]any

// Entry is the unit of stored and retrieved memory.
type Entry struct {
	// Content is the stored text. Required and non-empty.
	Content string

	// Metadata is the optional mapping stored alongside the content.
	Metadata Metadata

	// Score is the similarity score, populated on search results only.
	Score float64
}
