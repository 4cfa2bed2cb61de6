package bus

import (
	"go.uber.org/fx"

	"tracker-agent/internal/config/logger"
)

// Module provides the bus for dependency injection.
var Module = fx.Module("bus",
	fx.Provide(func(log logger.Logger) Bus {
		return New(log.WithComponent("BUS"))
	}),
)
