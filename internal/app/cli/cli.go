// Package cli implements the optional shell control surface: a
// cobra-parsed command line and a bubbletea bench TUI that
// shows live state, storage occupancy and recent bus traffic.
//
//go:generate mockgen -source=cli.go -destination=cli_mock.go -package=cli
package cli

import (
	tea "github.com/charmbracelet/bubbletea"

	"tracker-agent/internal/app/appfsm"
	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/storage"
	"tracker-agent/internal/config/logger"
)

// CLI drives the interactive bench shell.
type CLI interface {
	// RunShell blocks for the shell's lifetime, returning when the user
	// quits it (ctrl+c or esc).
	RunShell() error
}

type cli struct {
	b       bus.Bus
	storage storage.Storage
	machine *appfsm.Machine
	log     logger.Logger
}

// NewCLI builds the CLI over the already-running daemon's collaborators.
func NewCLI(b bus.Bus, st storage.Storage, machine *appfsm.Machine, log logger.Logger) CLI {
	return &cli{b: b, storage: st, machine: machine, log: log}
}

func (c *cli) RunShell() error {
	p := tea.NewProgram(newShellModel(c.b, c.storage, c.machine), tea.WithAltScreen())
	_, err := p.Run()
	if err != nil {
		c.log.Error().Err(err).Msg("shell exited with error")
	}
	return err
}
