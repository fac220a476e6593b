package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/memory"
)

func (s *Server) handleFind(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	collection, result := s.resolveCollection(args)
	if result != nil {
		return result, nil
	}

	// Only declared filter fields are picked up from the arguments; nil
	// values mean the caller left the parameter unset.
	values := make(map[string]any)
	for name := range s.opts.Fields {
		if v, ok := args[name]; ok {
			values[name] = v
		}
	}
	filter, err := memory.MakeFilter(s.opts.Fields, values)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := s.connector.Search(ctx, query, collection, s.opts.SearchLimit, filter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(entries) == 0 {
		return textResult(fmt.Sprintf("No information found for the query '%s'", query)), nil
	}

	lines := []string{fmt.Sprintf("Results for the query '%s'", query)}
	for _, entry := range entries {
		lines = append(lines, formatEntry(entry))
	}
	return textResult(lines...), nil
}

func (s *Server) handleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	information, ok := args["information"].(string)
	if !ok || information == "" {
		return mcp.NewToolResultError("information parameter is required"), nil
	}

	collection, result := s.resolveCollection(args)
	if result != nil {
		return result, nil
	}

	entry := memory.Entry{
		Content:  information,
		Metadata: metadataArgument(args),
	}
	if err := s.connector.Store(ctx, entry, collection); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if s.opts.multiCollection() {
		return textResult(fmt.Sprintf("Remembered: %s in collection %s", information, collection)), nil
	}
	return textResult(fmt.Sprintf("Remembered: %s", information)), nil
}

func (s *Server) handleListCollections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.connector.IterAll(ctx, metadataCollectionName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	lines := []string{"Available collections:"}
	for _, entry := range entries {
		purpose := ""
		if entry.Metadata != nil {
			purpose = fmt.Sprintf(": %v", entry.Metadata["description"])
		}
		lines = append(lines, fmt.Sprintf("- `%s`%s", entry.Content, purpose))
	}
	if len(lines) == 1 {
		lines = append(lines, "No collections found")
	}

	return textResult(lines...), nil
}

func (s *Server) handleCreateCollection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	collection, ok := args["collection_name"].(string)
	if !ok || collection == "" {
		return mcp.NewToolResultError("collection_name parameter is required"), nil
	}
	description, ok := args["description"].(string)
	if !ok || description == "" {
		return mcp.NewToolResultError("description parameter is required"), nil
	}

	// Creation is a metadata write only; the collection itself materializes
	// lazily on its first entry.
	entry := memory.Entry{
		Content:  collection,
		Metadata: memory.Metadata{"description": description},
	}
	if err := s.connector.Store(ctx, entry, metadataCollectionName); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return textResult(fmt.Sprintf("Created collection %s", collection)), nil
}

// resolveCollection determines the target collection for a request. In
// default mode the configured collection always wins; in multi mode the
// caller must name one. A non-nil result is an error to return as-is.
func (s *Server) resolveCollection(args map[string]any) (string, *mcp.CallToolResult) {
	if !s.opts.multiCollection() {
		return s.opts.DefaultCollection, nil
	}
	collection, ok := args["collection_name"].(string)
	if !ok || collection == "" {
		return "", mcp.NewToolResultError("collection_name parameter is required")
	}
	return collection, nil
}

// metadataArgument extracts the optional metadata argument. Some clients
// send the object as a JSON-encoded string, so both forms are accepted; a
// string that fails to parse is treated as absent.
func metadataArgument(args map[string]any) memory.Metadata {
	raw, ok := args["metadata"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case map[string]any:
		return v
	case string:
		var meta memory.Metadata
		if err := json.Unmarshal([]byte(v), &meta); err == nil {
			return meta
		}
	}
	return nil
}

// formatEntry renders one search result. Absent or empty metadata renders
// as an empty element so clients can rely on the shape.
func formatEntry(entry memory.Entry) string {
	entryMetadata := ""
	if len(entry.Metadata) > 0 {
		if encoded, err := json.Marshal(entry.Metadata); err == nil {
			entryMetadata = string(encoded)
		}
	}
	return fmt.Sprintf("<entry><content>%s</content><metadata>%s</metadata></entry>", entry.Content, entryMetadata)
}

// textResult builds a tool result with one text content item per line,
// mirroring how results are returned as a list of strings.
func textResult(lines ...string) *mcp.CallToolResult {
	contents := make([]mcp.Content, 0, len(lines))
	for _, line := range lines {
		contents = append(contents, mcp.NewTextContent(line))
	}
	return &mcp.CallToolResult{Content: contents}
}
