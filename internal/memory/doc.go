// Package memory implements the semantic-memory connector: it owns the
// vector-store handle and the embedding provider, manages collection
// lifecycle (lazy creation on first write, existence checks on every read)
// and performs upserts and filtered similarity searches.
//
// It also defines the declarative filterable-field model and the builder
// that turns caller-supplied field values into a store filter.
package memory
