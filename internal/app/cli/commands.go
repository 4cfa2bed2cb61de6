package cli

import (
	"github.com/spf13/cobra"
)

// CommandType selects what the parsed command line asked the app to do.
type CommandType int

const (
	// CommandRun starts the tracker as a headless daemon: state machine,
	// storage engine and collaborator adapters running until signalled.
	CommandRun CommandType = iota
	// CommandShell additionally launches the interactive bench shell
	// on top of the running daemon.
	CommandShell
)

// Options is the parsed command line.
type Options struct {
	Type CommandType
}

// Parse parses args into Options. With no subcommand the app runs headless.
func Parse(args []string) (*Options, error) {
	result := &Options{Type: CommandRun}

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "application-level coordinator for a battery-powered cellular asset tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandRun
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "bench shell: live state path, storage occupancy, last bus messages",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandShell
		},
	})

	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return nil, err
	}

	return result, nil
}
