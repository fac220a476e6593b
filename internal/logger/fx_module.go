package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the logger into Fx.
//
// It provides:
//   - Config (NewConfig)
//   - *Logger (NewLogger)
//   - Lifecycle hook flushing buffered logs on shutdown
var FXModule = fx.Module("logger",
	fx.Provide(
		NewConfig,
		NewLogger,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle handles cleanup (sync) of the Zap logger so that
// no log entries are lost if the application shuts down while logs are still
// buffered in memory.
func RegisterLoggerLifecycle(lc fx.Lifecycle, l *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync can fail on stderr on some platforms; that is not fatal.
			_ = l.Zap.Sync()
			return nil
		},
	})
}
