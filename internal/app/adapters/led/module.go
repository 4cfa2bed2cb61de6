package led

import (
	"go.uber.org/fx"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Module provides the LED Adapter for dependency injection.
var Module = fx.Module("led",
	fx.Provide(
		func() Driver { return NewSimDriver() },
		func(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver) (*Adapter, error) {
			return New(cfg, b, sup, log.WithComponent("LED"), driver)
		},
	),
)
