// Package qdrantstore implements the vectorstore.Store interface on top of
// the official Qdrant gRPC client.
package qdrantstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/logger"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore"
)

// scrollPageSize is how many points one scroll round trip fetches.
const scrollPageSize = 256

// Store wraps the official Qdrant Go client and exposes the operations the
// memory connector needs through the vectorstore.Store interface.
type Store struct {
	api *qdrant.Client
	log *logger.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// New constructs a Store and validates connectivity via a health check.
//
// The Qdrant Go SDK creates lightweight gRPC connections, so this performs
// an immediate health check to fail fast if the service is unreachable.
func New(cfg Config, log *logger.Logger) (*Store, error) {
	cfg = cfg.withDefaults()

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to initialize client: %w", err)
	}

	s := &Store{api: client, log: log}

	if err := s.healthCheck(); err != nil {
		return nil, fmt.Errorf("qdrant: health check failed: %w", err)
	}

	log.Info("Connected to Qdrant", nil, map[string]any{
		"host": cfg.Host,
		"port": cfg.Port,
	})
	return s, nil
}

// healthCheck verifies the availability of the Qdrant service.
// It is lightweight and fast, used during startup.
func (s *Store) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	resp, err := s.api.HealthCheck(ctx)
	if err != nil {
		return err
	}

	s.log.Debug("Qdrant health check passed", nil, map[string]any{
		"title":   resp.GetTitle(),
		"version": resp.GetVersion(),
	})
	return nil
}

// CollectionExists reports whether the named collection currently exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("qdrant: collection name cannot be empty")
	}

	exists, err := s.api.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("qdrant: failed to check collection %q: %w", name, err)
	}
	return exists, nil
}

// CreateCollection creates a collection with a single named vector space of
// the given size and cosine distance. Losing a creation race to a concurrent
// caller is treated as success.
func (s *Store) CreateCollection(ctx context.Context, name, vectorName string, vectorSize uint64) error {
	if name == "" {
		return fmt.Errorf("qdrant: collection name cannot be empty")
	}

	req := &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			vectorName: {
				Size:     vectorSize,
				Distance: qdrant.Distance_Cosine,
			},
		}),
	}

	if err := s.api.CreateCollection(ctx, req); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("qdrant: failed to create collection %q: %w", name, err)
	}

	s.log.Info("Created collection", nil, map[string]any{
		"collection":  name,
		"vector_name": vectorName,
		"vector_size": vectorSize,
	})
	return nil
}

// Upsert writes points into a collection under the named vector space,
// blocking (Wait=true) until the write is persisted.
func (s *Store) Upsert(ctx context.Context, collection, vectorName string, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{vectorName: qdrant.NewVector(p.Vector...)}),
			Payload: qdrant.NewValueMap(p.Payload),
		})
	}

	wait := true
	req := &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qdrantPoints,
		Wait:           &wait,
	}

	if _, err := s.api.Upsert(ctx, req); err != nil {
		return fmt.Errorf("qdrant: upsert into %q failed: %w", collection, err)
	}
	return nil
}

// Query performs a similarity search against the named vector space,
// optionally narrowed by an equality filter.
func (s *Store) Query(ctx context.Context, req vectorstore.QueryRequest) ([]vectorstore.ScoredPoint, error) {
	if err := validateQuery(req); err != nil {
		return nil, err
	}

	limit := uint64(req.Limit)
	vectorName := req.VectorName
	resp, err := s.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: req.Collection,
		Query:          qdrant.NewQuery(req.Vector...),
		Using:          &vectorName,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         convertFilter(req.Filter),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search in %q failed: %w", req.Collection, err)
	}

	results := make([]vectorstore.ScoredPoint, 0, len(resp))
	for _, r := range resp {
		id, err := pointIDString(r.Id)
		if err != nil {
			return nil, err
		}
		results = append(results, vectorstore.ScoredPoint{
			ID:      id,
			Score:   r.Score,
			Payload: payloadToMap(r.Payload),
		})
	}
	return results, nil
}

// Scroll enumerates every point in a collection, paginating until the
// backend is exhausted.
//
// The high-level SDK call drops the next_page_offset of the response, so
// pagination is emulated: each round trip asks for one extra point and uses
// its id as the (inclusive) offset of the next page.
func (s *Store) Scroll(ctx context.Context, collection string) ([]vectorstore.Record, error) {
	var (
		records []vectorstore.Record
		offset  *qdrant.PointId
	)

	limit := uint32(scrollPageSize + 1)
	for {
		points, err := s.api.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: scroll of %q failed: %w", collection, err)
		}

		page := points
		if len(points) > scrollPageSize {
			page = points[:scrollPageSize]
			offset = points[scrollPageSize].Id
		} else {
			offset = nil
		}

		for _, p := range page {
			id, err := pointIDString(p.Id)
			if err != nil {
				return nil, err
			}
			records = append(records, vectorstore.Record{
				ID:      id,
				Payload: payloadToMap(p.Payload),
			})
		}

		if offset == nil {
			return records, nil
		}
	}
}

// Close gracefully shuts down the underlying gRPC connection.
func (s *Store) Close() error {
	return s.api.Close()
}

// validateQuery validates common search parameters.
func validateQuery(req vectorstore.QueryRequest) error {
	if req.Collection == "" {
		return fmt.Errorf("qdrant: collection name cannot be empty")
	}
	if len(req.Vector) == 0 {
		return fmt.Errorf("qdrant: query vector cannot be empty")
	}
	if req.Limit <= 0 {
		return fmt.Errorf("qdrant: limit must be greater than 0")
	}
	return nil
}

// pointIDString renders a Qdrant point id as a string.
func pointIDString(id *qdrant.PointId) (string, error) {
	switch v := id.GetPointIdOptions().(type) {
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num), nil
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	default:
		return "", fmt.Errorf("qdrant: unexpected PointId type: %T", v)
	}
}
