package config

import "go.uber.org/fx"

// FXModule provides the validated settings and the derived per-component
// configurations.
var FXModule = fx.Module("config",
	fx.Provide(
		Load,
		Settings.EmbeddingConfig,
		Settings.ServerOptions,
	),
)
