package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// documentBatchSize is the chunk size for storage-time embedding calls.
	documentBatchSize = 32

	// maxConcurrentBatches bounds parallel requests against the backend.
	maxConcurrentBatches = 4
)

// InferenceProvider computes embeddings through an OpenAI-compatible
// /v1/embeddings endpoint. It is stateless apart from its configuration and
// safe for concurrent use.
type InferenceProvider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ Provider = (*InferenceProvider)(nil)

// NewInferenceProvider constructs a provider from Config.
func NewInferenceProvider(cfg Config) (*InferenceProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.HTTPTimeoutS
	if timeout <= 0 {
		timeout = 30
	}

	return &InferenceProvider{
		baseURL:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

// EmbedQuery embeds a single query string.
func (p *InferenceProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.create(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of documents, chunking the inputs and
// running up to maxConcurrentBatches requests in parallel. The output order
// matches the input order regardless of request completion order.
func (p *InferenceProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embedding: no texts provided")
	}

	out := make([][]float32, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)

	for start := 0; start < len(texts); start += documentBatchSize {
		end := min(start+documentBatchSize, len(texts))
		g.Go(func() error {
			vectors, err := p.create(ctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(out[start:end], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// VectorName derives the stable vector-space identifier from the model id:
// the last path segment, lowercased, under a "dense-" prefix. The same
// model therefore always addresses the same named vector inside a
// collection.
func (p *InferenceProvider) VectorName() string {
	segments := strings.Split(p.model, "/")
	return "dense-" + strings.ToLower(segments[len(segments)-1])
}

// create issues one embedding request for the given texts.
func (p *InferenceProvider) create(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]any{
		"model": p.model,
		"input": texts,
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}

	url := p.baseURL + "/v1/embeddings"
	if err := p.postJSON(ctx, url, reqBody, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embedding: expected %d vectors, got %d", len(texts), len(parsed.Data))
	}

	out := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}
	return out, nil
}
