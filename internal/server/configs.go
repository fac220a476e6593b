package server

import "github.com/Aleph-Alpha/mcp-server-qdrant/internal/memory"

// serverName identifies this server to MCP clients.
const serverName = "mcp-server-qdrant"

// metadataCollectionName is the reserved collection backing the
// collection-discovery tools in multi-collection mode. Each entry's content
// is a collection name; its metadata carries the purpose description.
const metadataCollectionName = "__mcp_metadata__"

// DefaultSearchLimit caps find results when no limit is configured.
const DefaultSearchLimit = 10

// ToolDescriptions carries the description text surfaced to MCP clients for
// each tool. Empty fields fall back to the defaults below.
type ToolDescriptions struct {
	Find             string
	Store            string
	ListCollections  string
	CreateCollection string
}

const (
	defaultFindDescription = "Look up memories in Qdrant. Use this tool when you need to:\n" +
		"- Find memories by their content\n" +
		"- Access memories for further analysis\n" +
		"- Get some personal information about the user"

	defaultStoreDescription = "Keep the memory for later use, when you are asked to remember something."

	defaultListCollectionsDescription = "List all the collections in Qdrant, along with their purpose descriptions. " +
		"Use this tool always when you wonder which collection to use."

	defaultCreateCollectionDescription = "Create a new collection in Qdrant with the specified name and purpose description."
)

func (d ToolDescriptions) withDefaults() ToolDescriptions {
	if d.Find == "" {
		d.Find = defaultFindDescription
	}
	if d.Store == "" {
		d.Store = defaultStoreDescription
	}
	if d.ListCollections == "" {
		d.ListCollections = defaultListCollectionsDescription
	}
	if d.CreateCollection == "" {
		d.CreateCollection = defaultCreateCollectionDescription
	}
	return d
}

// Options selects the server mode and fixes the tool surface.
type Options struct {
	// DefaultCollection pins every tool to one collection. When empty the
	// server runs in multi-collection mode and callers name the collection
	// per call.
	DefaultCollection string

	// ReadOnly suppresses the mutating tools at registration time.
	ReadOnly bool

	// SearchLimit caps the number of find results. Zero means
	// DefaultSearchLimit.
	SearchLimit int

	// Fields declares the metadata attributes the find tool accepts as
	// filter parameters.
	Fields memory.FieldSet

	// Descriptions overrides the default tool description texts.
	Descriptions ToolDescriptions
}

func (o Options) withDefaults() Options {
	if o.SearchLimit <= 0 {
		o.SearchLimit = DefaultSearchLimit
	}
	o.Descriptions = o.Descriptions.withDefaults()
	return o
}

// multiCollection reports whether the server addresses collections by tool
// parameter instead of a fixed default.
func (o Options) multiCollection() bool {
	return o.DefaultCollection == ""
}
