// Package app assembles the bus, supervisor, storage engine, state
// machine and collaborator adapters into one fx application and drives
// their Run loops for the lifetime of the process.
package app

import (
	"context"

	"go.uber.org/fx"

	"tracker-agent/internal/app/appfsm"
	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/cli"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

// Runner is implemented by every task started alongside the state
// machine: the storage engine and each adapters/* collaborator.
type Runner interface {
	// Run is the task's main loop; it must return once stop is closed.
	Run(stop <-chan struct{})
}

// App wires every Runner's loop to the fx lifecycle and, for `tracker
// shell`, blocks on the interactive CLI until the user quits it.
type App struct {
	cfg     *config.Config
	b       bus.Bus
	machine *appfsm.Machine
	tasks   []Runner
	cli     cli.CLI
	opts    *cli.Options
	log     logger.Logger
	stop    chan struct{}
}

// NewApp assembles the App from its collaborators.
func NewApp(cfg *config.Config, b bus.Bus, machine *appfsm.Machine, tasks []Runner, c cli.CLI, opts *cli.Options, log logger.Logger) *App {
	return &App{
		cfg:     cfg,
		b:       b,
		machine: machine,
		tasks:   tasks,
		cli:     c,
		opts:    opts,
		log:     log,
		stop:    make(chan struct{}),
	}
}

// start launches every collaborator's Run loop on its own goroutine, then
// launches the interactive shell if one was requested.
func (a *App) start(shutdown fx.Shutdowner) {
	for _, t := range a.tasks {
		go t.Run(a.stop)
	}
	go a.machine.Run(a.b, a.cfg.Bus.QueueDepth, a.stop)

	if a.opts.Type != cli.CommandShell {
		return
	}

	go func() {
		if err := a.cli.RunShell(); err != nil {
			a.log.Error().Err(err).Msg("shell exited with error")
		}
		if err := shutdown.Shutdown(); err != nil {
			a.log.Error().Err(err).Msg("shutdown request failed")
		}
	}()
}

func (a *App) close() {
	close(a.stop)
}

// Register registers the application's lifecycle hooks with fx.
func Register(lifecycle fx.Lifecycle, shutdown fx.Shutdowner, app *App) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			app.start(shutdown)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			app.close()
			return nil
		},
	})
}
