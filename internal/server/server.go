package server

import (
	"context"
	"os"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/logger"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/metrics"
)

// Server exposes a memory connector as an MCP tool surface.
type Server struct {
	mcp       *server.MCPServer
	connector Connector
	opts      Options
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// New builds the MCP server for the given options and registers the tool
// set for the selected mode.
func New(connector Connector, opts Options, log *logger.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		connector: connector,
		opts:      opts.withDefaults(),
		log:       log,
		metrics:   m,
	}

	s.mcp = server.NewMCPServer(
		serverName,
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	s.mcp.AddTools(s.tools()...)

	if s.opts.multiCollection() {
		s.log.Info("Using multiple collections", nil, nil)
	} else {
		s.log.Info("Using default collection", nil, map[string]any{"collection": s.opts.DefaultCollection})
	}

	return s
}

// tools assembles the registered tool set. Read-only deployments never
// register the mutating tools, so clients cannot even attempt a write.
func (s *Server) tools() []server.ServerTool {
	tools := []server.ServerTool{
		{Tool: s.findTool(), Handler: s.instrument("qdrant-find", s.handleFind)},
	}

	if !s.opts.ReadOnly {
		tools = append(tools, server.ServerTool{
			Tool:    s.storeTool(),
			Handler: s.instrument("qdrant-store", s.handleStore),
		})
	}

	if s.opts.multiCollection() {
		tools = append(tools, server.ServerTool{
			Tool:    s.listCollectionsTool(),
			Handler: s.instrument("qdrant-list-collections", s.handleListCollections),
		})
		if !s.opts.ReadOnly {
			tools = append(tools, server.ServerTool{
				Tool:    s.createCollectionTool(),
				Handler: s.instrument("qdrant-create-collection", s.handleCreateCollection),
			})
		}
	}

	return tools
}

// instrument wraps a tool handler with invocation logging and metrics.
func (s *Server) instrument(name string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := handler(ctx, req)

		status := "ok"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
			s.log.Warn("Tool call failed", err, map[string]any{"tool": name})
		} else {
			s.log.Debug("Tool call completed", nil, map[string]any{"tool": name})
		}
		if s.metrics != nil {
			s.metrics.ObserveToolCall(name, status)
		}

		return result, err
	}
}

// sortedFieldNames yields the filterable field names in deterministic order
// for schema construction.
func (s *Server) sortedFieldNames() []string {
	names := make([]string, 0, len(s.opts.Fields))
	for name := range s.opts.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ServeStdio runs the server over stdin/stdout until the client disconnects
// or the context is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}
