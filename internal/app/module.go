package app

import (
	"go.uber.org/fx"

	"tracker-agent/internal/app/adapters/button"
	"tracker-agent/internal/app/adapters/cloud"
	"tracker-agent/internal/app/adapters/environmental"
	"tracker-agent/internal/app/adapters/fota"
	"tracker-agent/internal/app/adapters/led"
	"tracker-agent/internal/app/adapters/location"
	"tracker-agent/internal/app/adapters/network"
	"tracker-agent/internal/app/adapters/power"
	"tracker-agent/internal/app/appfsm"
	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/cli"
	"tracker-agent/internal/app/storage"
	"tracker-agent/internal/app/supervisor"
)

// Module provides the fx dependency injection options for the app package,
// wiring the bus, supervisor, storage engine, state machine, every
// collaborator adapter and the CLI into one graph.
var Module = fx.Options(
	bus.Module,
	supervisor.Module,
	storage.Module,
	appfsm.Module,
	network.Module,
	cloud.Module,
	fota.Module,
	power.Module,
	location.Module,
	environmental.Module,
	button.Module,
	led.Module,
	cli.Module,
	fx.Provide(
		newSupervisorReboot,
		newMachineReboot,
		newRunners,
		NewApp,
	),
	fx.Invoke(Register),
)
