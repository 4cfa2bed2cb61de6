package supervisor

import (
	"go.uber.org/fx"

	"tracker-agent/internal/config/logger"
)

// Module provides the Supervisor for dependency injection. reboot is
// supplied by the app package once every collaborator is assembled.
var Module = fx.Module("supervisor",
	fx.Provide(func(log logger.Logger, reboot RebootFunc) Supervisor {
		return New(log.WithComponent("SUPERVISOR"), reboot)
	}),
)
