package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voidstarhq/voidstar-go/internal/harness"
)

// ValidationResult holds validation results for JSON output.
type ValidationResult struct {
	Valid  bool                      `json:"valid"`
	Errors []harness.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a smoke scenario without running it",
		Long: `Validate a YAML smoke scenario against the embedded schema and the
semantic rules, without executing any step. Faster feedback than run when
authoring scenarios.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	errs := harness.ValidateFile(path)
	if len(errs) > 0 {
		reportValidationErrors(formatter, cmd, errs)
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(errs)))
	}

	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "scenario is valid")
	return nil
}

func reportValidationErrors(formatter *OutputFormatter, cmd *cobra.Command, errs []harness.ValidationError) {
	if formatter.JSON() {
		_ = formatter.Failure("validation", "scenario is invalid", ValidationResult{Valid: false, Errors: errs})
		return
	}
	for _, e := range errs {
		fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
	}
}
