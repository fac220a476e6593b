package chromemstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/logger"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore"
)

const (
	testVectorName = "dense-test"
	testVectorSize = 4
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := t.TempDir()
	store, err := New(path, &logger.Logger{Zap: zap.NewNop()})
	require.NoError(t, err)
	return store, path
}

func seedCollection(t *testing.T, store *Store, name string, points []vectorstore.Point) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.CreateCollection(ctx, name, testVectorName, testVectorSize))
	require.NoError(t, store.Upsert(ctx, name, testVectorName, points))
}

func TestCollectionExists(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	exists, err := store.CollectionExists(ctx, "memories")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.CreateCollection(ctx, "memories", testVectorName, testVectorSize))

	exists, err = store.CollectionExists(ctx, "memories")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateCollection_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, "memories", testVectorName, testVectorSize))
	require.NoError(t, store.CreateCollection(ctx, "memories", testVectorName, testVectorSize))
}

func TestUpsert_MissingCollection(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Upsert(context.Background(), "missing", testVectorName, []vectorstore.Point{
		{ID: "p1", Vector: []float32{1, 0, 0, 0}, Payload: map[string]any{"document": "x"}},
	})
	assert.Error(t, err)
}

func TestQuery_RoundTripsPayload(t *testing.T) {
	store, _ := newTestStore(t)
	seedCollection(t, store, "memories", []vectorstore.Point{
		{
			ID:     "p1",
			Vector: []float32{1, 0, 0, 0},
			Payload: map[string]any{
				"document": "the user drinks tea",
				"metadata": map[string]any{"source": "chat"},
			},
		},
	})

	results, err := store.Query(context.Background(), vectorstore.QueryRequest{
		Collection: "memories",
		VectorName: testVectorName,
		Vector:     []float32{1, 0, 0, 0},
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "p1", results[0].ID)
	assert.Equal(t, "the user drinks tea", results[0].Payload["document"])
	meta, ok := results[0].Payload["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "chat", meta["source"])
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
}

func TestQuery_RanksBySimilarity(t *testing.T) {
	store, _ := newTestStore(t)
	seedCollection(t, store, "memories", []vectorstore.Point{
		{ID: "far", Vector: []float32{0, 0, 1, 0}, Payload: map[string]any{"document": "far"}},
		{ID: "near", Vector: []float32{1, 0.1, 0, 0}, Payload: map[string]any{"document": "near"}},
	})

	results, err := store.Query(context.Background(), vectorstore.QueryRequest{
		Collection: "memories",
		VectorName: testVectorName,
		Vector:     []float32{1, 0, 0, 0},
		Limit:      2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].ID)
}

func TestQuery_EmptyCollection(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.CreateCollection(context.Background(), "memories", testVectorName, testVectorSize))

	results, err := store.Query(context.Background(), vectorstore.QueryRequest{
		Collection: "memories",
		VectorName: testVectorName,
		Vector:     []float32{1, 0, 0, 0},
		Limit:      10,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQuery_LimitAboveCount(t *testing.T) {
	store, _ := newTestStore(t)
	seedCollection(t, store, "memories", []vectorstore.Point{
		{ID: "p1", Vector: []float32{1, 0, 0, 0}, Payload: map[string]any{"document": "one"}},
	})

	// Limit far above the document count must clamp, not fail.
	results, err := store.Query(context.Background(), vectorstore.QueryRequest{
		Collection: "memories",
		VectorName: testVectorName,
		Vector:     []float32{1, 0, 0, 0},
		Limit:      100,
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestQuery_FilterNarrowsResults(t *testing.T) {
	store, _ := newTestStore(t)
	seedCollection(t, store, "products", []vectorstore.Point{
		{
			ID:     "red",
			Vector: []float32{1, 0, 0, 0},
			Payload: map[string]any{
				"document": "red dress",
				"metadata": map[string]any{"color": "red"},
			},
		},
		{
			ID:     "blue",
			Vector: []float32{0.9, 0.1, 0, 0},
			Payload: map[string]any{
				"document": "blue dress",
				"metadata": map[string]any{"color": "blue"},
			},
		},
	})

	results, err := store.Query(context.Background(), vectorstore.QueryRequest{
		Collection: "products",
		VectorName: testVectorName,
		Vector:     []float32{1, 0, 0, 0},
		Limit:      10,
		Filter: &vectorstore.Filter{Must: []vectorstore.Condition{
			{Key: "metadata.color", Value: "blue"},
		}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "blue", results[0].ID)
}

func TestQuery_FilterMatchesNothing(t *testing.T) {
	store, _ := newTestStore(t)
	seedCollection(t, store, "products", []vectorstore.Point{
		{
			ID:     "red",
			Vector: []float32{1, 0, 0, 0},
			Payload: map[string]any{
				"document": "red dress",
				"metadata": map[string]any{"color": "red"},
			},
		},
	})

	results, err := store.Query(context.Background(), vectorstore.QueryRequest{
		Collection: "products",
		VectorName: testVectorName,
		Vector:     []float32{1, 0, 0, 0},
		Limit:      10,
		Filter: &vectorstore.Filter{Must: []vectorstore.Condition{
			{Key: "metadata.color", Value: "green"},
		}},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQuery_NumericFilterValues(t *testing.T) {
	store, _ := newTestStore(t)
	seedCollection(t, store, "items", []vectorstore.Point{
		{
			ID:     "p1",
			Vector: []float32{1, 0, 0, 0},
			Payload: map[string]any{
				"document": "three of them",
				"metadata": map[string]any{"count": int64(3), "active": true},
			},
		},
	})

	results, err := store.Query(context.Background(), vectorstore.QueryRequest{
		Collection: "items",
		VectorName: testVectorName,
		Vector:     []float32{1, 0, 0, 0},
		Limit:      10,
		Filter: &vectorstore.Filter{Must: []vectorstore.Condition{
			{Key: "metadata.count", Value: int64(3)},
			{Key: "metadata.active", Value: true},
		}},
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestUpsert_RejectsMismatchedVectorSpace(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateCollection(ctx, "memories", testVectorName, testVectorSize))

	err := store.Upsert(ctx, "memories", "dense-other", []vectorstore.Point{
		{ID: "p1", Vector: []float32{1, 0, 0, 0}, Payload: map[string]any{"document": "x"}},
	})
	assert.Error(t, err, "write under a different vector name must be rejected")

	err = store.Upsert(ctx, "memories", testVectorName, []vectorstore.Point{
		{ID: "p2", Vector: []float32{1, 0, 0}, Payload: map[string]any{"document": "y"}},
	})
	assert.Error(t, err, "write with the wrong dimensionality must be rejected")

	// The rejected writes must not have poisoned the collection.
	require.NoError(t, store.Upsert(ctx, "memories", testVectorName, []vectorstore.Point{
		{ID: "p3", Vector: []float32{1, 0, 0, 0}, Payload: map[string]any{"document": "kept"}},
	}))
	results, err := store.Query(ctx, vectorstore.QueryRequest{
		Collection: "memories",
		VectorName: testVectorName,
		Vector:     []float32{1, 0, 0, 0},
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kept", results[0].Payload["document"])
}

func TestQuery_RejectsMismatchedVectorSpace(t *testing.T) {
	store, _ := newTestStore(t)
	seedCollection(t, store, "memories", []vectorstore.Point{
		{ID: "p1", Vector: []float32{1, 0, 0, 0}, Payload: map[string]any{"document": "one"}},
	})

	_, err := store.Query(context.Background(), vectorstore.QueryRequest{
		Collection: "memories",
		VectorName: "dense-other",
		Vector:     []float32{1, 0, 0, 0},
		Limit:      10,
	})
	assert.Error(t, err)

	_, err = store.Query(context.Background(), vectorstore.QueryRequest{
		Collection: "memories",
		VectorName: testVectorName,
		Vector:     []float32{1, 0, 0},
		Limit:      10,
	})
	assert.Error(t, err)
}

func TestQuery_FilterMatchesSubsetOfLimit(t *testing.T) {
	store, _ := newTestStore(t)

	points := make([]vectorstore.Point, 0, 5)
	for i := 0; i < 5; i++ {
		color := "red"
		if i%2 == 1 {
			color = "blue"
		}
		points = append(points, vectorstore.Point{
			ID:     fmt.Sprintf("p%d", i),
			Vector: []float32{1, float32(i) / 10, 0, 0},
			Payload: map[string]any{
				"document": fmt.Sprintf("dress %d", i),
				"metadata": map[string]any{"color": color},
			},
		})
	}
	seedCollection(t, store, "products", points)

	// Five documents, the filter matches two, the limit allows ten: both
	// matches must come back without an error.
	results, err := store.Query(context.Background(), vectorstore.QueryRequest{
		Collection: "products",
		VectorName: testVectorName,
		Vector:     []float32{1, 0, 0, 0},
		Limit:      10,
		Filter: &vectorstore.Filter{Must: []vectorstore.Condition{
			{Key: "metadata.color", Value: "blue"},
		}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		meta := r.Payload["metadata"].(map[string]any)
		assert.Equal(t, "blue", meta["color"])
	}
}

func TestScroll_ReturnsEverything(t *testing.T) {
	store, _ := newTestStore(t)
	seedCollection(t, store, "memories", []vectorstore.Point{
		{ID: "p1", Vector: []float32{1, 0, 0, 0}, Payload: map[string]any{"document": "one"}},
		{ID: "p2", Vector: []float32{0, 1, 0, 0}, Payload: map[string]any{"document": "two"}},
		{ID: "p3", Vector: []float32{0, 0, 1, 0}, Payload: map[string]any{"document": "three"}},
	})

	records, err := store.Scroll(context.Background(), "memories")
	require.NoError(t, err)
	require.Len(t, records, 3)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, ids)
}

func TestScroll_EmptyCollection(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.CreateCollection(context.Background(), "memories", testVectorName, testVectorSize))

	records, err := store.Scroll(context.Background(), "memories")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScroll_SurvivesReopen(t *testing.T) {
	store, path := newTestStore(t)
	seedCollection(t, store, "memories", []vectorstore.Point{
		{ID: "p1", Vector: []float32{1, 0, 0, 0}, Payload: map[string]any{"document": "persisted"}},
	})
	require.NoError(t, store.Close())

	reopened, err := New(path, &logger.Logger{Zap: zap.NewNop()})
	require.NoError(t, err)

	records, err := reopened.Scroll(context.Background(), "memories")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "persisted", records[0].Payload["document"])
}

func TestFlattenPayload(t *testing.T) {
	meta, err := flattenPayload(map[string]any{
		"document": "text",
		"metadata": map[string]any{
			"color":  "red",
			"count":  int64(3),
			"price":  2.5,
			"active": true,
			"nested": map[string]any{"ignored": true},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, meta, payloadKey)
	assert.Equal(t, "red", meta["metadata.color"])
	assert.Equal(t, "3", meta["metadata.count"])
	assert.Equal(t, "2.5", meta["metadata.price"])
	assert.Equal(t, "true", meta["metadata.active"])
	assert.NotContains(t, meta, "metadata.nested", "non-scalar metadata must not be flattened")
}

func TestRestorePayload_MissingKey(t *testing.T) {
	_, err := restorePayload(map[string]string{"other": "value"})
	assert.Error(t, err)
}

func TestFilterToWhere(t *testing.T) {
	assert.Nil(t, filterToWhere(nil))
	assert.Nil(t, filterToWhere(&vectorstore.Filter{}))

	where := filterToWhere(&vectorstore.Filter{Must: []vectorstore.Condition{
		{Key: "metadata.color", Value: "red"},
		{Key: "metadata.count", Value: int64(3)},
	}})
	assert.Equal(t, map[string]string{
		"metadata.color": "red",
		"metadata.count": "3",
	}, where)
}
