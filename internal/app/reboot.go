package app

import (
	"os"

	"tracker-agent/internal/app/appfsm"
	"tracker-agent/internal/app/supervisor"
	"tracker-agent/internal/config/logger"
)

// newSupervisorReboot and newMachineReboot fire when the liveness
// supervisor or the state machine decide the process can no longer make
// forward progress (FOTA_REBOOTING, a shadow REBOOT command, or a blown
// watchdog budget). A real device reboots the hardware; on this bench the
// equivalent is exiting the process for the service manager to restart.
func newSupervisorReboot(log logger.Logger) supervisor.RebootFunc {
	return func(taskName string) {
		log.Error().Str("task", taskName).Msg("watchdog budget exceeded, exiting for restart")
		os.Exit(1)
	}
}

func newMachineReboot(log logger.Logger) appfsm.RebootFunc {
	return func(reason string) {
		log.Error().Str("reason", reason).Msg("cold reboot requested, exiting for restart")
		os.Exit(1)
	}
}
