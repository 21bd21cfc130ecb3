package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voidstarhq/voidstar-go/assert"
)

// parseBoolToken maps a CLI token to a condition. Accepted: t/true and
// f/false, case-insensitive. Anything else is a usage error.
func parseBoolToken(tok string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(tok)) {
	case "t", "true":
		return true, nil
	case "f", "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean token %q (expected t, true, f, or false)", tok)
	}
}

// directiveOutcome summarizes one smoke evaluation batch.
type directiveOutcome struct {
	Directive string `json:"directive"`
	Message   string `json:"message"`
	Passes    int    `json:"passes"`
	Fails     int    `json:"fails"`
}

// NewAlwaysCommand creates the always smoke-test command.
func NewAlwaysCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "always <message> <token>...",
		Short: "Evaluate an always directive once per boolean token",
		Long: `Evaluate an AlwaysOrUnreachable directive once per boolean token.

Tokens are t/true or f/false. Each evaluation is reported as PASS or FAIL,
and the exit status is 1 when any token is false: an always property must
hold on every evaluation.

Example:
  voidstar always "this always works" t t f t f`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDirective(rootOpts, cmd, args, assert.DisplayAlwaysOrUnreachable, aggregateAll)
		},
	}
	return cmd
}

// NewSometimesCommand creates the sometimes smoke-test command.
func NewSometimesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sometimes <message> <token>...",
		Short: "Evaluate a sometimes directive once per boolean token",
		Long: `Evaluate a Sometimes directive once per boolean token.

Tokens are t/true or f/false. Each evaluation is reported as PASS or FAIL,
and the exit status is 1 only when no token is true: a sometimes property
needs at least one passing evaluation.

Example:
  voidstar sometimes "this works at least once" t t f t f`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDirective(rootOpts, cmd, args, assert.DisplaySometimes, aggregateAny)
		},
	}
	return cmd
}

// aggregate decides the batch verdict from pass/fail tallies.
type aggregate func(passes, fails int) bool

func aggregateAll(passes, fails int) bool { return fails == 0 }
func aggregateAny(passes, fails int) bool { return passes > 0 }

func runDirective(opts *RootOptions, cmd *cobra.Command, args []string,
	display assert.AssertionDisplay, verdict aggregate) error {

	message := strings.TrimSpace(args[0])
	if message == "" {
		return NewExitError(ExitCommandError, "message must be non-empty")
	}

	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	conditions := make([]bool, 0, len(args)-1)
	for _, tok := range args[1:] {
		cond, err := parseBoolToken(tok)
		if err != nil {
			return WrapExitError(ExitCommandError, "usage error", err)
		}
		conditions = append(conditions, cond)
	}

	outcome := directiveOutcome{Directive: string(display), Message: message}
	for _, cond := range conditions {
		evalDirective(display, cond, message)
		status := "PASS"
		if cond {
			outcome.Passes++
		} else {
			outcome.Fails++
			status = "FAIL"
		}
		if !formatter.JSON() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s '%s' => %v\n", status, display, message, cond)
		}
	}

	if formatter.JSON() {
		if err := formatter.Success(outcome); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%d passed, %d failed\n", outcome.Passes, outcome.Fails)
	}

	if !verdict(outcome.Passes, outcome.Fails) {
		return NewExitError(ExitFailure,
			fmt.Sprintf("property '%s' failed (%d passed, %d failed)", message, outcome.Passes, outcome.Fails))
	}
	return nil
}

// evalDirective drives the real public API so the smoke test exercises the
// production path end to end.
func evalDirective(display assert.AssertionDisplay, cond bool, message string) {
	switch display {
	case assert.DisplaySometimes:
		assert.Sometimes(cond, message, map[string]any{})
	default:
		assert.AlwaysOrUnreachable(cond, message, map[string]any{})
	}
}
