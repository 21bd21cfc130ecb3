package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the voidstar diagnostic CLI.
//
// The CLI is a smoke-test surface for the SDK binding; it is not part of the
// production assertion contract. Each subcommand drives the real public API
// so emissions flow through whatever transport is active in the environment.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "voidstar",
		Short: "Diagnostic harness for the voidstar SDK binding",
		Long: `Diagnostic harness for the voidstar SDK binding.

Each subcommand exercises one SDK entry point: assertion directives,
randomness, lifecycle markers, smoke scenarios, and local-output triage.
Exit status reflects aggregate pass/fail where a command evaluates anything.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Directive smoke tests
	cmd.AddCommand(NewAlwaysCommand(opts))
	cmd.AddCommand(NewSometimesCommand(opts))

	// Entry-point wiring checks
	cmd.AddCommand(NewAddxCommand(opts))
	cmd.AddCommand(NewRandomxCommand(opts))
	cmd.AddCommand(NewEventxCommand(opts))
	cmd.AddCommand(NewSetupxCommand(opts))

	// Scenario harness
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	// Local-output triage
	cmd.AddCommand(NewTriageCommand(opts))

	return cmd
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
