package server

import (
	"context"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/memory"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore"
)

// Connector is the slice of the memory layer the tool handlers need.
// *memory.Connector satisfies it; tests substitute fakes.
type Connector interface {
	// Store persists one entry in the named collection, creating the
	// collection on first write.
	Store(ctx context.Context, entry memory.Entry, collection string) error

	// Search returns the entries most similar to the query, best first. A
	// collection that does not exist yields an empty result.
	Search(ctx context.Context, query, collection string, limit int, filter *vectorstore.Filter) ([]memory.Entry, error)

	// IterAll enumerates every entry in the named collection.
	IterAll(ctx context.Context, collection string) ([]memory.Entry, error)
}
