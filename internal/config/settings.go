// Package config loads and validates the full server configuration from
// environment variables. Validation happens once at startup; everything
// downstream receives an already-checked Settings value.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/embedding"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/memory"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/server"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore/qdrantstore"
)

// Settings is the validated server configuration.
type Settings struct {
	// QdrantURL addresses a remote Qdrant instance. Mutually exclusive with
	// LocalPath.
	QdrantURL    string
	QdrantAPIKey string

	// LocalPath selects the embedded file-backed store instead of a remote
	// Qdrant instance.
	LocalPath string

	// CollectionName pins the server to one collection. Empty selects
	// multi-collection mode.
	CollectionName string

	ReadOnly    bool
	SearchLimit int

	// FilterableFields declares the metadata attributes exposed as find
	// parameters.
	FilterableFields memory.FieldSet

	EmbeddingEndpoint string
	EmbeddingAPIKey   string
	EmbeddingModel    string

	ToolDescriptions server.ToolDescriptions
}

// Load reads the configuration from the environment and validates it.
func Load() (Settings, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("QDRANT_SEARCH_LIMIT", server.DefaultSearchLimit)

	// AutomaticEnv only resolves keys it has seen; declare them all so
	// IsSet and Get behave consistently.
	for _, key := range []string{
		"QDRANT_URL", "QDRANT_API_KEY", "QDRANT_LOCAL_PATH",
		"COLLECTION_NAME", "QDRANT_READ_ONLY", "QDRANT_SEARCH_LIMIT",
		"QDRANT_FILTERABLE_FIELDS",
		"EMBEDDING_ENDPOINT", "EMBEDDING_API_KEY", "EMBEDDING_MODEL",
		"TOOL_FIND_DESCRIPTION", "TOOL_STORE_DESCRIPTION",
		"TOOL_LIST_COLLECTIONS_DESCRIPTION", "TOOL_CREATE_COLLECTION_DESCRIPTION",
	} {
		if err := v.BindEnv(key); err != nil {
			return Settings{}, fmt.Errorf("config: failed to bind %s: %w", key, err)
		}
	}

	settings := Settings{
		QdrantURL:         v.GetString("QDRANT_URL"),
		QdrantAPIKey:      v.GetString("QDRANT_API_KEY"),
		LocalPath:         v.GetString("QDRANT_LOCAL_PATH"),
		CollectionName:    v.GetString("COLLECTION_NAME"),
		ReadOnly:          v.GetBool("QDRANT_READ_ONLY"),
		SearchLimit:       v.GetInt("QDRANT_SEARCH_LIMIT"),
		EmbeddingEndpoint: v.GetString("EMBEDDING_ENDPOINT"),
		EmbeddingAPIKey:   v.GetString("EMBEDDING_API_KEY"),
		EmbeddingModel:    v.GetString("EMBEDDING_MODEL"),
		ToolDescriptions: server.ToolDescriptions{
			Find:             v.GetString("TOOL_FIND_DESCRIPTION"),
			Store:            v.GetString("TOOL_STORE_DESCRIPTION"),
			ListCollections:  v.GetString("TOOL_LIST_COLLECTIONS_DESCRIPTION"),
			CreateCollection: v.GetString("TOOL_CREATE_COLLECTION_DESCRIPTION"),
		},
	}

	fields, err := parseFilterableFields(v.GetString("QDRANT_FILTERABLE_FIELDS"))
	if err != nil {
		return Settings{}, err
	}
	settings.FilterableFields = fields

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate rejects configurations the server cannot serve. Errors here are
// fatal at startup.
func (s Settings) Validate() error {
	if s.QdrantURL == "" && s.LocalPath == "" {
		return fmt.Errorf("config: either QDRANT_URL or QDRANT_LOCAL_PATH must be set")
	}
	if s.QdrantURL != "" && s.LocalPath != "" {
		return fmt.Errorf("config: QDRANT_URL and QDRANT_LOCAL_PATH are mutually exclusive")
	}
	if s.EmbeddingEndpoint == "" {
		return fmt.Errorf("config: EMBEDDING_ENDPOINT must be set")
	}
	if s.EmbeddingModel == "" {
		return fmt.Errorf("config: EMBEDDING_MODEL must be set")
	}
	if s.SearchLimit <= 0 {
		return fmt.Errorf("config: QDRANT_SEARCH_LIMIT must be positive, got %d", s.SearchLimit)
	}
	return nil
}

// UseLocalStore reports whether the embedded file-backed store is selected.
func (s Settings) UseLocalStore() bool {
	return s.LocalPath != ""
}

// EmbeddingConfig derives the embedding provider configuration.
func (s Settings) EmbeddingConfig() embedding.Config {
	return embedding.Config{
		Endpoint: s.EmbeddingEndpoint,
		APIKey:   s.EmbeddingAPIKey,
		Model:    s.EmbeddingModel,
	}
}

// QdrantConfig derives the remote store configuration from the Qdrant URL.
// Accepted forms: "host", "host:port", or a URL with an http/https scheme
// where https enables TLS.
func (s Settings) QdrantConfig() (qdrantstore.Config, error) {
	raw := s.QdrantURL
	useTLS := false

	if strings.Contains(raw, "://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return qdrantstore.Config{}, fmt.Errorf("config: invalid QDRANT_URL %q: %w", s.QdrantURL, err)
		}
		switch parsed.Scheme {
		case "http":
		case "https":
			useTLS = true
		default:
			return qdrantstore.Config{}, fmt.Errorf("config: unsupported QDRANT_URL scheme %q", parsed.Scheme)
		}
		raw = parsed.Host
	}

	// SplitHostPort handles bracketed IPv6 literals; when it fails the
	// address carries no port (a bare IPv6 address also lands here).
	host := raw
	port := 0
	if h, p, err := net.SplitHostPort(raw); err == nil {
		host = h
		port, err = strconv.Atoi(p)
		if err != nil || port < 0 {
			return qdrantstore.Config{}, fmt.Errorf("config: invalid port in QDRANT_URL %q", s.QdrantURL)
		}
	}
	if host == "" {
		return qdrantstore.Config{}, fmt.Errorf("config: QDRANT_URL %q has no host", s.QdrantURL)
	}

	return qdrantstore.Config{
		Host:   host,
		Port:   port,
		APIKey: s.QdrantAPIKey,
		UseTLS: useTLS,
	}, nil
}

// ServerOptions derives the tool-surface configuration.
func (s Settings) ServerOptions() server.Options {
	return server.Options{
		DefaultCollection: s.CollectionName,
		ReadOnly:          s.ReadOnly,
		SearchLimit:       s.SearchLimit,
		Fields:            s.FilterableFields,
		Descriptions:      s.ToolDescriptions,
	}
}

// parseFilterableFields decodes the JSON field-spec list and validates it.
func parseFilterableFields(raw string) (memory.FieldSet, error) {
	if raw == "" {
		return nil, nil
	}
	var fields []memory.FilterableField
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("config: invalid QDRANT_FILTERABLE_FIELDS: %w", err)
	}
	set, err := memory.NewFieldSet(fields)
	if err != nil {
		return nil, fmt.Errorf("config: invalid QDRANT_FILTERABLE_FIELDS: %w", err)
	}
	return set, nil
}
