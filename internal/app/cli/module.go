package cli

import "go.uber.org/fx"

// Module provides the CLI for dependency injection.
var Module = fx.Module("cli",
	fx.Provide(NewCLI),
)
