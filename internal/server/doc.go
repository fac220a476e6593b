// Package server implements the MCP surface of the memory service. It
// registers the qdrant-* tools on an MCP server speaking stdio, in one of
// two modes: a default-collection mode where every tool operates on a single
// configured collection, and a multi-collection mode where callers address
// collections by name and may discover them through dedicated tools.
//
// Read-only deployments suppress the mutating tools at registration time, so
// clients never see capabilities they cannot use.
package server
