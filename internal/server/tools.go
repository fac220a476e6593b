package server

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/memory"
)

// findTool builds the find tool schema. The base parameters depend on the
// server mode; one optional typed parameter is appended per filterable
// field, so MCP clients see the available filters in the tool listing.
func (s *Server) findTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(s.opts.Descriptions.Find),
		mcp.WithString("query",
			mcp.Description("A natural language query to search for."),
			mcp.Required(),
		),
	}

	if s.opts.multiCollection() {
		opts = append(opts, mcp.WithString("collection_name",
			mcp.Description("Name of the collection to search in. Please list the existing collections to know which one to use."),
			mcp.Required(),
		))
	}

	for _, name := range s.sortedFieldNames() {
		field := s.opts.Fields[name]
		switch field.Type {
		case memory.FieldTypeKeyword:
			opts = append(opts, mcp.WithString(field.Name, mcp.Description(field.Description)))
		case memory.FieldTypeInteger, memory.FieldTypeFloat:
			opts = append(opts, mcp.WithNumber(field.Name, mcp.Description(field.Description)))
		case memory.FieldTypeBoolean:
			opts = append(opts, mcp.WithBoolean(field.Name, mcp.Description(field.Description)))
		}
	}

	return mcp.NewTool("qdrant-find", opts...)
}

func (s *Server) storeTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(s.opts.Descriptions.Store),
		mcp.WithString("information",
			mcp.Description("Natural language information to store."),
			mcp.Required(),
		),
		mcp.WithObject("metadata",
			mcp.Description("JSON metadata to store with the information, optional."),
		),
	}

	if s.opts.multiCollection() {
		opts = append(opts, mcp.WithString("collection_name",
			mcp.Description("Name of the collection to store the information in. Please list the existing collections to know which one to use."),
			mcp.Required(),
		))
	}

	return mcp.NewTool("qdrant-store", opts...)
}

func (s *Server) listCollectionsTool() mcp.Tool {
	return mcp.NewTool(
		"qdrant-list-collections",
		mcp.WithDescription(s.opts.Descriptions.ListCollections),
	)
}

func (s *Server) createCollectionTool() mcp.Tool {
	return mcp.NewTool(
		"qdrant-create-collection",
		mcp.WithDescription(s.opts.Descriptions.CreateCollection),
		mcp.WithString("collection_name",
			mcp.Description("Name of the collection to create."),
			mcp.Required(),
		),
		mcp.WithString("description",
			mcp.Description("Purpose description of the collection."),
			mcp.Required(),
		),
	)
}
