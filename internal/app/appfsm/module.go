package appfsm

import (
	"go.uber.org/fx"

	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Module provides the application state Machine for dependency injection.
// reboot is supplied by the app package once every collaborator is
// assembled.
var Module = fx.Module("appfsm",
	fx.Provide(func(cfg *config.Config, b bus.Bus, sup supervisor.Supervisor, log logger.Logger, reboot RebootFunc) (*Machine, error) {
		return New(cfg, b, sup, log.WithComponent("APPFSM"), reboot)
	}),
)
