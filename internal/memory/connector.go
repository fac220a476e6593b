package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/embedding"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/logger"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore"
)

// probeText is embedded once to discover the backend's vector
// dimensionality when a collection is created. Probing decouples the
// connector from any specific model's dimensionality at the cost of one
// extra embedding call on the first write to a new collection.
const probeText = "sample text"

// Connector encapsulates the vector store and all methods to interact with
// it. It owns the store handle and the embedding provider for its lifetime
// and holds no other state, so it is safe for concurrent use.
type Connector struct {
	store    vectorstore.Store
	provider embedding.Provider
	log      *logger.Logger
}

// NewConnector constructs a Connector.
func NewConnector(store vectorstore.Store, provider embedding.Provider, log *logger.Logger) *Connector {
	return &Connector{
		store:    store,
		provider: provider,
		log:      log,
	}
}

// Store embeds an entry and upserts it into the named collection, creating
// the collection on first write. Each call writes one freshly-keyed point
// and never overwrites an existing one.
func (c *Connector) Store(ctx context.Context, entry Entry, collection string) error {
	if entry.Content == "" {
		return fmt.Errorf("memory: entry content cannot be empty")
	}

	if err := c.ensureCollectionExists(ctx, collection); err != nil {
		return err
	}

	vectors, err := c.provider.EmbedDocuments(ctx, []string{entry.Content})
	if err != nil {
		return fmt.Errorf("memory: failed to embed entry: %w", err)
	}

	payload := map[string]any{"document": entry.Content}
	if entry.Metadata != nil {
		payload["metadata"] = entry.Metadata
	}

	point := vectorstore.Point{
		ID:      uuid.NewString(),
		Vector:  vectors[0],
		Payload: payload,
	}
	if err := c.store.Upsert(ctx, collection, c.provider.VectorName(), []vectorstore.Point{point}); err != nil {
		return fmt.Errorf("memory: failed to store entry: %w", err)
	}

	c.log.Debug("Stored entry", nil, map[string]any{"collection": collection})
	return nil
}

// Search performs a filtered similarity search in the named collection and
// returns entries in descending similarity order. Searching a collection
// that does not exist yields an empty result, not an error — the absence of
// prior writes is a normal state.
func (c *Connector) Search(ctx context.Context, query, collection string, limit int, filter *vectorstore.Filter) ([]Entry, error) {
	exists, err := c.store.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("memory: failed to check collection %q: %w", collection, err)
	}
	if !exists {
		return nil, nil
	}

	vector, err := c.provider.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("memory: failed to embed query: %w", err)
	}

	results, err := c.store.Query(ctx, vectorstore.QueryRequest{
		Collection: collection,
		VectorName: c.provider.VectorName(),
		Vector:     vector,
		Limit:      limit,
		Filter:     filter,
	})
	if err != nil {
		return nil, fmt.Errorf("memory: search failed: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		entry, err := entryFromPayload(r.Payload)
		if err != nil {
			return nil, err
		}
		entry.Score = float64(r.Score)
		entries = append(entries, entry)
	}
	return entries, nil
}

// IterAll enumerates every entry in the named collection. Each call starts
// a fresh pass over the store. A collection that does not exist yields an
// empty result.
func (c *Connector) IterAll(ctx context.Context, collection string) ([]Entry, error) {
	exists, err := c.store.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("memory: failed to check collection %q: %w", collection, err)
	}
	if !exists {
		return nil, nil
	}

	records, err := c.store.Scroll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("memory: enumeration failed: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entry, err := entryFromPayload(r.Payload)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ensureCollectionExists lazily creates the collection on first write. The
// vector dimensionality is discovered by embedding a probe string, and the
// distance metric is fixed to cosine similarity. Idempotent: calling it on
// an existing collection is a no-op, and losing a creation race to a
// concurrent writer is benign.
func (c *Connector) ensureCollectionExists(ctx context.Context, collection string) error {
	exists, err := c.store.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("memory: failed to check collection %q: %w", collection, err)
	}
	if exists {
		return nil
	}

	probe, err := c.provider.EmbedQuery(ctx, probeText)
	if err != nil {
		return fmt.Errorf("memory: failed to probe vector size: %w", err)
	}

	if err := c.store.CreateCollection(ctx, collection, c.provider.VectorName(), uint64(len(probe))); err != nil {
		return fmt.Errorf("memory: failed to create collection %q: %w", collection, err)
	}
	return nil
}

// entryFromPayload rebuilds an Entry from a stored payload.
func entryFromPayload(payload map[string]any) (Entry, error) {
	content, ok := payload["document"].(string)
	if !ok {
		return Entry{}, fmt.Errorf("memory: point payload is missing the document key")
	}

	entry := Entry{Content: content}
	if meta, ok := payload["metadata"].(map[string]any); ok {
		entry.Metadata = meta
	}
	return entry, nil
}
