package vectorstore

import "context"

// Store is the common interface for all vector database backends.
//
// Implementations must be safe for concurrent use by independent requests.
type Store interface {
	// CollectionExists reports whether the named collection exists. The
	// result must reflect the backend's current state — callers recheck
	// before every read instead of caching it.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// CreateCollection creates a collection configured with a single named
	// vector space of the given dimensionality and cosine distance.
	// A concurrent "already exists" outcome is not an error: two callers
	// racing to create the same collection must both succeed.
	CreateCollection(ctx context.Context, name, vectorName string, vectorSize uint64) error

	// Upsert writes points into a collection under the named vector space.
	Upsert(ctx context.Context, collection, vectorName string, points []Point) error

	// Query performs a nearest-neighbor search restricted to the request's
	// named vector space and optional filter, returning results in
	// descending similarity order.
	Query(ctx context.Context, req QueryRequest) ([]ScoredPoint, error)

	// Scroll enumerates every point in a collection. Each call starts a
	// fresh pass; there is no shared cursor state.
	Scroll(ctx context.Context, collection string) ([]Record, error)

	// Close releases the backend connection handle.
	Close() error
}
