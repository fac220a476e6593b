package embedding

import "context"

// Provider converts text into dense vectors and names the vector space the
// vectors live in. Implementations must be safe for concurrent use and must
// return vectors of a fixed dimensionality for their lifetime.
type Provider interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of documents for storage, returning one
	// vector per input in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// VectorName returns the stable identifier of this provider's vector
	// space, used both when creating a collection's vector configuration
	// and when addressing the named vector at query time.
	VectorName() string
}
