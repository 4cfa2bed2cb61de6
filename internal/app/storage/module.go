package storage

import (
	"go.uber.org/fx"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Module provides the Storage engine for dependency injection.
var Module = fx.Module("storage",
	fx.Provide(func(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger) (Storage, error) {
		return New(cfg, b, sup, log.WithComponent("STORAGE"))
	}),
)
