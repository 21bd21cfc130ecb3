package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/voidstarhq/voidstar-go/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// Tokens allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens harness.TokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a smoke scenario",
		Long: `Execute a YAML smoke scenario against the SDK surface.

The scenario is schema-validated, then each step drives the real assertion,
lifecycle, or random entry point with a recording transport installed.
Exit status is 1 when any step records a failing evaluation.

Example:
  voidstar run ./scenarios/checkout.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}
	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if errs := harness.ValidateFile(path); len(errs) > 0 {
		reportValidationErrors(formatter, cmd, errs)
		return NewExitError(ExitCommandError, fmt.Sprintf("scenario %s is invalid", path))
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	slog.Debug("running scenario", "name", scenario.Name, "steps", len(scenario.Steps))

	runner := &harness.Runner{Tokens: opts.Tokens}
	result, err := runner.Run(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		printRunResult(formatter, cmd, result)
	}

	if !result.Passed() {
		return NewExitError(ExitFailure,
			fmt.Sprintf("scenario %s failed (%d passed, %d failed)", result.Scenario, result.Passes, result.Fails))
	}
	return nil
}

func printRunResult(formatter *OutputFormatter, cmd *cobra.Command, result *harness.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s (run token %s)\n", result.Scenario, result.RunToken)
	for i, step := range result.Steps {
		switch step.Directive {
		case harness.DirectiveRandom:
			fmt.Fprintf(out, "  [%d] %s => %v\n", i+1, step.Directive, step.Values)
		case harness.DirectiveEvent, harness.DirectiveSetupComplete:
			fmt.Fprintf(out, "  [%d] %s\n", i+1, step.Directive)
		default:
			fmt.Fprintf(out, "  [%d] %s '%s': %d passed, %d failed\n",
				i+1, step.Directive, step.Message, step.Passes, step.Fails)
		}
	}
	fmt.Fprintf(out, "%d passed, %d failed, %d records emitted\n",
		result.Passes, result.Fails, len(result.Emissions))
	formatter.VerboseLog("emissions:")
	for _, line := range result.Emissions {
		formatter.VerboseLog("  %s", line)
	}
}
