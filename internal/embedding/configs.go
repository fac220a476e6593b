package embedding

import "fmt"

// Config holds the settings for the inference-backed embedding provider.
//
// Endpoint must point to the root of an OpenAI-compatible inference service;
// the provider appends /v1/embeddings itself, so callers only supply the
// host base URL.
type Config struct {
	Endpoint     string // Base URL of the inference API
	APIKey       string // Optional bearer token
	Model        string // Embedding model identifier, e.g. "BAAI/bge-small-en-v1.5"
	HTTPTimeoutS int    // HTTP timeout in seconds (default 30)
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("embedding: missing endpoint")
	}
	if c.Model == "" {
		return fmt.Errorf("embedding: missing model")
	}
	return nil
}
