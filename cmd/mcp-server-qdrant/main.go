// Command mcp-server-qdrant runs the semantic memory MCP server over stdio.
// All configuration comes from environment variables; see the README for
// the full list.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/config"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/embedding"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/logger"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/memory"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/metrics"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/server"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore/chromemstore"
	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/vectorstore/qdrantstore"
)

var rootCmd = &cobra.Command{
	Use:   "mcp-server-qdrant",
	Short: "Semantic memory MCP server backed by a vector database",
	Long: `mcp-server-qdrant exposes a semantic memory layer over the Model Context
Protocol. Agents store natural-language information with optional structured
metadata and retrieve it later by meaning rather than keywords.

The memory lives either in a remote Qdrant instance (QDRANT_URL) or in an
embedded file-backed store (QDRANT_LOCAL_PATH). Setting COLLECTION_NAME pins
all tools to one collection; leaving it unset enables multi-collection mode
with collection discovery tools.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp()
	},
}

func runApp() error {
	app := fx.New(
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Zap.WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		logger.FXModule,
		metrics.FXModule,
		config.FXModule,
		fx.Provide(
			newStore,
			fx.Annotate(embedding.NewInferenceProvider, fx.As(new(embedding.Provider))),
			fx.Annotate(memory.NewConnector, fx.As(new(server.Connector))),
		),
		server.FXModule,
		fx.Invoke(registerStoreShutdown),
	)

	app.Run()
	return nil
}

// newStore selects the vector store backend: a local path means the
// embedded store, otherwise a remote Qdrant instance.
func newStore(settings config.Settings, log *logger.Logger) (vectorstore.Store, error) {
	if settings.UseLocalStore() {
		return chromemstore.New(settings.LocalPath, log)
	}

	cfg, err := settings.QdrantConfig()
	if err != nil {
		return nil, err
	}
	return qdrantstore.New(cfg, log)
}

// registerStoreShutdown closes the store handle when the application stops.
func registerStoreShutdown(lc fx.Lifecycle, store vectorstore.Store) {
	lc.Append(fx.StopHook(store.Close))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
