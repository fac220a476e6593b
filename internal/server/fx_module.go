package server

import (
	"context"
	"errors"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/mcp-server-qdrant/internal/logger"
)

// FXModule wires the MCP server into Fx.
var FXModule = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(RegisterServerLifecycle),
)

// RegisterServerLifecycle runs the stdio transport for the lifetime of the
// application. The transport ends when the client closes stdin; that shuts
// the whole application down.
func RegisterServerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, s *Server, log *logger.Logger) {
	serveCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("Serving MCP over stdio", nil, nil)
				if err := s.ServeStdio(serveCtx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("Stdio transport failed", err, nil)
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
