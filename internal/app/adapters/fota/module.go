package fota

import (
	"go.uber.org/fx"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Module provides the FOTA Adapter for dependency injection.
var Module = fx.Module("fota",
	fx.Provide(
		func() Driver { return NewSimDriver() },
		func(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, driver Driver) (*Adapter, error) {
			return New(cfg, b, sup, log.WithComponent("FOTA"), driver, cfg.FOTA.StagingDir, cfg.FOTA.ImageAllow)
		},
	),
)
