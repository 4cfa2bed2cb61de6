package power

import (
	"go.uber.org/fx"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Module provides the power Adapter for dependency injection.
var Module = fx.Module("power",
	fx.Provide(
		func() Driver { return NewSimDriver() },
		func(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver) (*Adapter, error) {
			return New(cfg, b, sup, log.WithComponent("POWER"), driver)
		},
	),
)
