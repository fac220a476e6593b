// Package chromemstore implements the vectorstore.Store interface on top of
// chromem-go, a pure-Go embedded vector database. It backs deployments that
// configure a local storage path instead of a Qdrant server address.
package chromemstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/logger"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore"
)

// payloadKey is the reserved chromem metadata key holding the full payload
// as JSON. chromem metadata values are flat strings, so the structured
// payload is serialized here and the filterable scalar fields are mirrored
// as flattened keys (see flattenPayload) for `where` matching.
const payloadKey = "_payload"

// Store wraps a persistent chromem-go database.
type Store struct {
	db   *chromem.DB
	path string
	log  *logger.Logger

	// mu guards the vector-space manifests; chromem collections are
	// internally synchronized.
	mu sync.Mutex
}

var _ vectorstore.Store = (*Store)(nil)

// New opens (or creates) the persistent chromem database at path.
func New(path string, log *logger.Logger) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("chromem: failed to open database at %q: %w", path, err)
	}

	log.Info("Opened embedded vector store", nil, map[string]any{"path": path})
	return &Store{db: db, path: path, log: log}, nil
}

// CollectionExists reports whether the named collection exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("chromem: collection name cannot be empty")
	}
	return s.db.GetCollection(name, nil) != nil, nil
}

// CreateCollection creates a collection bound to the given vector space.
// chromem has no native notion of named vector spaces, so the binding is
// persisted in a manifest file next to the database; GetOrCreateCollection
// makes concurrent creation races benign.
func (s *Store) CreateCollection(ctx context.Context, name, vectorName string, vectorSize uint64) error {
	if name == "" {
		return fmt.Errorf("chromem: collection name cannot be empty")
	}

	if _, err := s.db.GetOrCreateCollection(name, nil, nil); err != nil {
		return fmt.Errorf("chromem: failed to create collection %q: %w", name, err)
	}

	if err := s.writeManifest(name, spaceManifest{VectorName: vectorName, VectorSize: vectorSize}); err != nil {
		return err
	}

	s.log.Info("Created collection", nil, map[string]any{
		"collection":  name,
		"vector_name": vectorName,
		"vector_size": vectorSize,
	})
	return nil
}

// Upsert writes points into a collection. The structured payload is stored
// as JSON in a reserved metadata key, with scalar metadata fields mirrored
// as flattened keys so equality filters can match them.
//
// Writes under a different vector space than the collection was created
// with are rejected: chromem itself would accept a mismatched embedding and
// poison every later similarity computation in the collection.
func (s *Store) Upsert(ctx context.Context, collection, vectorName string, points []vectorstore.Point) error {
	col := s.db.GetCollection(collection, nil)
	if col == nil {
		return fmt.Errorf("chromem: collection %q does not exist", collection)
	}

	for _, p := range points {
		if err := s.checkVectorSpace(collection, vectorName, len(p.Vector)); err != nil {
			return err
		}
		meta, err := flattenPayload(p.Payload)
		if err != nil {
			return fmt.Errorf("chromem: failed to encode payload: %w", err)
		}

		content, _ := p.Payload["document"].(string)
		doc := chromem.Document{
			ID:        p.ID,
			Content:   content,
			Embedding: p.Vector,
			Metadata:  meta,
		}
		if err := col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("chromem: upsert into %q failed: %w", collection, err)
		}
	}
	return nil
}

// Query performs a similarity search, optionally narrowed by an equality
// filter translated into a chromem `where` map.
func (s *Store) Query(ctx context.Context, req vectorstore.QueryRequest) ([]vectorstore.ScoredPoint, error) {
	col := s.db.GetCollection(req.Collection, nil)
	if col == nil {
		return nil, fmt.Errorf("chromem: collection %q does not exist", req.Collection)
	}

	if err := s.checkVectorSpace(req.Collection, req.VectorName, len(req.Vector)); err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}

	where := filterToWhere(req.Filter)

	// chromem rejects nResults larger than the candidate set, and the
	// candidate set shrinks under a where filter by an amount only the
	// query itself reveals. Bisect on n: a rejected n bounds the candidate
	// set from above, a successful one from below, and the final results
	// come from the largest n that fits.
	var results []chromem.Result
	found := false
	for lo, hi := 1, min(req.Limit, count); lo <= hi; {
		n := (lo + hi) / 2
		res, err := col.QueryEmbedding(ctx, req.Vector, n, where, nil)
		switch {
		case err == nil:
			results = res
			found = true
			lo = n + 1
		case isInsufficientDocsError(err):
			hi = n - 1
		default:
			return nil, fmt.Errorf("chromem: search in %q failed: %w", req.Collection, err)
		}
	}
	if !found {
		return nil, nil
	}

	out := make([]vectorstore.ScoredPoint, 0, len(results))
	for _, r := range results {
		payload, err := restorePayload(r.Metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, vectorstore.ScoredPoint{
			ID:      r.ID,
			Score:   r.Similarity,
			Payload: payload,
		})
	}
	return out, nil
}

// Scroll enumerates every point in a collection. chromem exposes no listing
// primitive, so the enumeration is a full similarity query against a unit
// probe vector of the collection's dimensionality, asking for every
// document.
func (s *Store) Scroll(ctx context.Context, collection string) ([]vectorstore.Record, error) {
	col := s.db.GetCollection(collection, nil)
	if col == nil {
		return nil, fmt.Errorf("chromem: collection %q does not exist", collection)
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}

	manifest, err := s.readManifest(collection)
	if err != nil {
		return nil, err
	}

	probe := make([]float32, manifest.VectorSize)
	probe[0] = 1

	results, err := col.QueryEmbedding(ctx, probe, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: scroll of %q failed: %w", collection, err)
	}

	records := make([]vectorstore.Record, 0, len(results))
	for _, r := range results {
		payload, err := restorePayload(r.Metadata)
		if err != nil {
			return nil, err
		}
		records = append(records, vectorstore.Record{ID: r.ID, Payload: payload})
	}
	return records, nil
}

// Close is a no-op: chromem persists on every write and holds no
// connection. It exists for lifecycle symmetry with the Qdrant backend.
func (s *Store) Close() error {
	return nil
}

// flattenPayload serializes the full payload as JSON under payloadKey and
// mirrors scalar metadata fields as "metadata.<key>" strings for filtering.
func flattenPayload(payload map[string]any) (map[string]string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{payloadKey: string(raw)}

	if nested, ok := payload["metadata"].(map[string]any); ok {
		for k, v := range nested {
			if sv, ok := stringifyScalar(v); ok {
				meta["metadata."+k] = sv
			}
		}
	}
	return meta, nil
}

// restorePayload rebuilds the structured payload from the reserved JSON key.
func restorePayload(meta map[string]string) (map[string]any, error) {
	raw, ok := meta[payloadKey]
	if !ok {
		return nil, fmt.Errorf("chromem: document is missing the %s key", payloadKey)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("chromem: failed to decode payload: %w", err)
	}
	return payload, nil
}

// filterToWhere converts the neutral equality filter into a chromem `where`
// map. Values are stringified with the same formatting used at store time
// so that equality on numbers and booleans keeps working.
func filterToWhere(f *vectorstore.Filter) map[string]string {
	if f.IsEmpty() {
		return nil
	}

	where := make(map[string]string, len(f.Must))
	for _, c := range f.Must {
		if sv, ok := stringifyScalar(c.Value); ok {
			where[c.Key] = sv
		}
	}
	return where
}

func isInsufficientDocsError(err error) bool {
	return strings.Contains(err.Error(), "nResults")
}
