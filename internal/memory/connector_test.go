package memory

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/logger"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore"
)

const fakeVectorSize = 16

// fakeProvider embeds text deterministically by hashing its words into a
// fixed number of buckets, so texts sharing words land close together.
type fakeProvider struct{}

func (fakeProvider) embed(text string) []float32 {
	vector := make([]float32, fakeVectorSize)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vector[h.Sum32()%fakeVectorSize]++
	}
	return vector
}

func (p fakeProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return p.embed(text), nil
}

func (p fakeProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.embed(text)
	}
	return vectors, nil
}

func (fakeProvider) VectorName() string { return "dense-test" }

// fakeStore is an in-memory vectorstore.Store with cosine scoring and
// conjunctive equality filtering.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string][]vectorstore.Point
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: make(map[string][]vectorstore.Point)}
}

func (s *fakeStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.collections[name]
	return ok, nil
}

func (s *fakeStore) CreateCollection(ctx context.Context, name, vectorName string, vectorSize uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = nil
	}
	return nil
}

func (s *fakeStore) Upsert(ctx context.Context, collection, vectorName string, points []vectorstore.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("collection %q does not exist", collection)
	}
	s.collections[collection] = append(s.collections[collection], points...)
	return nil
}

func (s *fakeStore) Query(ctx context.Context, req vectorstore.QueryRequest) ([]vectorstore.ScoredPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var scored []vectorstore.ScoredPoint
	for _, point := range s.collections[req.Collection] {
		if !matchesFilter(point.Payload, req.Filter) {
			continue
		}
		scored = append(scored, vectorstore.ScoredPoint{
			ID:      point.ID,
			Score:   cosine(req.Vector, point.Vector),
			Payload: point.Payload,
		})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if req.Limit > 0 && len(scored) > req.Limit {
		scored = scored[:req.Limit]
	}
	return scored, nil
}

func (s *fakeStore) Scroll(ctx context.Context, collection string) ([]vectorstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []vectorstore.Record
	for _, point := range s.collections[collection] {
		records = append(records, vectorstore.Record{ID: point.ID, Payload: point.Payload})
	}
	return records, nil
}

func (s *fakeStore) Close() error { return nil }

func matchesFilter(payload map[string]any, filter *vectorstore.Filter) bool {
	if filter.IsEmpty() {
		return true
	}
	meta, _ := payload["metadata"].(map[string]any)
	for _, cond := range filter.Must {
		name := strings.TrimPrefix(cond.Key, "metadata.")
		if meta == nil || !looseEqual(meta[name], cond.Value) {
			return false
		}
	}
	return true
}

// looseEqual compares across the numeric representations JSON round trips
// produce.
func looseEqual(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func newTestConnector(t *testing.T) (*Connector, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	log := &logger.Logger{Zap: zap.NewNop()}
	return NewConnector(store, fakeProvider{}, log), store
}

func TestConnector_StoreAndSearch(t *testing.T) {
	connector, _ := newTestConnector(t)
	ctx := context.Background()

	err := connector.Store(ctx, Entry{Content: "The user likes dark roast coffee"}, "memories")
	require.NoError(t, err)

	entries, err := connector.Search(ctx, "coffee preferences of the user", "memories", 10, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "The user likes dark roast coffee", entries[0].Content)
	assert.Nil(t, entries[0].Metadata)
}

func TestConnector_StoreWithMetadata(t *testing.T) {
	connector, _ := newTestConnector(t)
	ctx := context.Background()

	entry := Entry{
		Content:  "Project deadline is next Friday",
		Metadata: Metadata{"source": "chat", "priority": float64(1)},
	}
	require.NoError(t, connector.Store(ctx, entry, "memories"))

	entries, err := connector.Search(ctx, "project deadline", "memories", 10, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.Metadata, entries[0].Metadata)
}

func TestConnector_StoreRejectsEmptyContent(t *testing.T) {
	connector, _ := newTestConnector(t)

	err := connector.Store(context.Background(), Entry{}, "memories")
	assert.Error(t, err)
}

func TestConnector_SearchMissingCollection(t *testing.T) {
	connector, _ := newTestConnector(t)

	entries, err := connector.Search(context.Background(), "anything", "never-written", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConnector_SearchRanksByRelevance(t *testing.T) {
	connector, _ := newTestConnector(t)
	ctx := context.Background()

	require.NoError(t, connector.Store(ctx, Entry{Content: "the quick brown fox jumps over the lazy dog"}, "memories"))
	require.NoError(t, connector.Store(ctx, Entry{Content: "quarterly revenue exceeded expectations"}, "memories"))

	entries, err := connector.Search(ctx, "fox jumps", "memories", 10, nil)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", entries[0].Content)
}

func TestConnector_SearchRespectsLimit(t *testing.T) {
	connector, _ := newTestConnector(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, connector.Store(ctx, Entry{Content: fmt.Sprintf("note number %d", i)}, "memories"))
	}

	entries, err := connector.Search(ctx, "note", "memories", 2, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestConnector_SearchWithFilter(t *testing.T) {
	connector, _ := newTestConnector(t)
	ctx := context.Background()

	require.NoError(t, connector.Store(ctx, Entry{
		Content:  "red dress in stock",
		Metadata: Metadata{"color": "red"},
	}, "products"))
	require.NoError(t, connector.Store(ctx, Entry{
		Content:  "blue dress in stock",
		Metadata: Metadata{"color": "blue"},
	}, "products"))

	fields, err := NewFieldSet([]FilterableField{{Name: "color", Type: FieldTypeKeyword}})
	require.NoError(t, err)
	filter, err := MakeFilter(fields, map[string]any{"color": "red"})
	require.NoError(t, err)

	entries, err := connector.Search(ctx, "dress", "products", 10, filter)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "red dress in stock", entries[0].Content)
}

func TestConnector_CollectionIsolation(t *testing.T) {
	connector, _ := newTestConnector(t)
	ctx := context.Background()

	require.NoError(t, connector.Store(ctx, Entry{Content: "personal note"}, "personal"))
	require.NoError(t, connector.Store(ctx, Entry{Content: "work note"}, "work"))

	entries, err := connector.Search(ctx, "note", "personal", 10, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "personal note", entries[0].Content)
}

func TestConnector_LazyCreationIsIdempotent(t *testing.T) {
	connector, store := newTestConnector(t)
	ctx := context.Background()

	require.NoError(t, connector.Store(ctx, Entry{Content: "first"}, "memories"))
	require.NoError(t, connector.Store(ctx, Entry{Content: "second"}, "memories"))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.collections, 1)
	assert.Len(t, store.collections["memories"], 2)
}

func TestConnector_IterAll(t *testing.T) {
	connector, _ := newTestConnector(t)
	ctx := context.Background()

	require.NoError(t, connector.Store(ctx, Entry{Content: "one"}, "memories"))
	require.NoError(t, connector.Store(ctx, Entry{
		Content:  "two",
		Metadata: Metadata{"description": "second entry"},
	}, "memories"))

	entries, err := connector.IterAll(ctx, "memories")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	contents := []string{entries[0].Content, entries[1].Content}
	assert.ElementsMatch(t, []string{"one", "two"}, contents)
}

func TestConnector_IterAllMissingCollection(t *testing.T) {
	connector, _ := newTestConnector(t)

	entries, err := connector.IterAll(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
