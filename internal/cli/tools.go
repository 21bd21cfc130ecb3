package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/voidstarhq/voidstar-go/lifecycle"
	"github.com/voidstarhq/voidstar-go/random"
)

// NewAddxCommand creates the addx wiring check: pure arithmetic, no
// assertion or transport interaction. If this misbehaves, the binary itself
// is miswired.
func NewAddxCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "addx [num1] [num2]",
		Short: "Add two integers (entry-point wiring check)",
		Long: `Add two integers and print the sum.

Non-numeric or missing arguments coerce to 0.

Example:
  voidstar addx 55 11
  Adding: 55 + 11 => 66`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			num1 := coerceInt(args, 0)
			num2 := coerceInt(args, 1)
			sum := num1 + num2

			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if formatter.JSON() {
				return formatter.Success(map[string]any{"num1": num1, "num2": num2, "sum": sum})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Adding: %d + %d => %d\n", num1, num2, sum)
			return nil
		},
	}
}

// coerceInt parses args[idx] as an integer, with 0 for anything missing or
// malformed.
func coerceInt(args []string, idx int) int {
	if idx >= len(args) {
		return 0
	}
	n, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0
	}
	return n
}

// NewRandomxCommand creates the randomx smoke test.
func NewRandomxCommand(rootOpts *RootOptions) *cobra.Command {
	opts := struct{ Count int }{}

	cmd := &cobra.Command{
		Use:   "randomx",
		Short: "Print random values from the active transport",
		Long: `Request random 64-bit values and print them.

With the native engine attached the values come from its deterministic
source; otherwise a local pseudo-random fallback answers.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]uint64, 0, opts.Count)
			for range opts.Count {
				values = append(values, random.GetRandom())
			}

			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if formatter.JSON() {
				return formatter.Success(map[string]any{"values": values})
			}
			for _, v := range values {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of values to draw")
	return cmd
}

// NewEventxCommand creates the eventx smoke test.
func NewEventxCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "eventx [name [key [value]]]",
		Short: "Send one lifecycle event",
		Long: `Send one named lifecycle event with a single-entry details map.

Defaults mirror the classic smoke invocation:
  voidstar eventx tree leaf_color green`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, key, value := "tree", "leaf_color", "green"
			if len(args) > 0 {
				name = args[0]
			}
			if len(args) > 1 {
				key = args[1]
			}
			if len(args) > 2 {
				value = args[2]
			}

			lifecycle.SendEvent(name, map[string]any{key: value})

			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if formatter.JSON() {
				return formatter.Success(map[string]any{"event": name, "details": map[string]any{key: value}})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent event %q (%s=%s)\n", name, key, value)
			return nil
		},
	}
}

// NewSetupxCommand creates the setupx smoke test.
func NewSetupxCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setupx",
		Short: "Emit the setup-complete lifecycle marker",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lifecycle.SetupComplete(nil)

			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if formatter.JSON() {
				return formatter.Success(map[string]any{"setup": "complete"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "setup complete")
			return nil
		},
	}
}
