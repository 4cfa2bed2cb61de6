package app

import (
	"tracker-agent/internal/app/adapters/button"
	"tracker-agent/internal/app/adapters/cloud"
	"tracker-agent/internal/app/adapters/environmental"
	"tracker-agent/internal/app/adapters/fota"
	"tracker-agent/internal/app/adapters/led"
	"tracker-agent/internal/app/adapters/location"
	"tracker-agent/internal/app/adapters/network"
	"tracker-agent/internal/app/adapters/power"
	"tracker-agent/internal/app/storage"
)

// newRunners collects every task that shares the App's Run(stop)/goroutine
// lifecycle: the storage engine plus each collaborator adapter.
func newRunners(
	st storage.Storage,
	net *network.Adapter,
	cl *cloud.Adapter,
	ft *fota.Adapter,
	pw *power.Adapter,
	loc *location.Adapter,
	env *environmental.Adapter,
	btn *button.Adapter,
	ld *led.Adapter,
) []Runner {
	return []Runner{st, net, cl, ft, pw, loc, env, btn, ld}
}
