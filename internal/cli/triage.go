package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/voidstarhq/voidstar-go/internal/triage"
)

// TriageOptions holds flags for the triage command.
type TriageOptions struct {
	*RootOptions
	Database   string
	ShowEvents bool
}

// TriageReport is the JSON payload for triage output.
type TriageReport struct {
	Ingested   *triage.IngestStats      `json:"ingested"`
	Properties []triage.PropertySummary `json:"properties"`
	Events     []triage.EventCount      `json:"events,omitempty"`
}

// NewTriageCommand creates the triage command.
func NewTriageCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TriageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "triage <capture.jsonl>",
		Short: "Summarize a local-output capture per property",
		Long: `Load a local-output capture (JSON lines written when
VOIDSTAR_SDK_LOCAL_OUTPUT is set) into SQLite and print per-property
definition, pass, and fail counts.

By default the database is in-memory and discarded; pass --db to keep it
for ad-hoc SQL.

Example:
  voidstar triage ./capture.jsonl
  voidstar triage ./capture.jsonl --db ./triage.db --events`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTriage(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", ":memory:", "path to SQLite database")
	cmd.Flags().BoolVar(&opts.ShowEvents, "events", false, "include per-event counts")
	return cmd
}

func runTriage(opts *TriageOptions, capturePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	capture, err := os.Open(capturePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open capture", err)
	}
	defer capture.Close()

	store, err := triage.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	stats, err := store.Ingest(ctx, capture)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to ingest capture", err)
	}
	slog.Debug("capture ingested", "lines", stats.Lines, "records", stats.Records, "skipped", stats.Skipped)

	report := &TriageReport{Ingested: stats}
	if report.Properties, err = store.Summary(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to summarize capture", err)
	}
	if opts.ShowEvents {
		if report.Events, err = store.Events(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to summarize events", err)
		}
	}

	if formatter.JSON() {
		return formatter.Success(report)
	}
	printTriageReport(cmd, report, stats)
	return nil
}

func printTriageReport(cmd *cobra.Command, report *TriageReport, stats *triage.IngestStats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ingested %d record(s) from %d line(s), %d skipped\n\n",
		stats.Records, stats.Lines, stats.Skipped)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROPERTY\tTYPE\tDEFS\tPASS\tFAIL")
	for _, p := range report.Properties {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", p.Message, p.DisplayType, p.Definitions, p.Passes, p.Fails)
	}
	w.Flush()

	if report.Events != nil {
		fmt.Fprintln(out)
		ew := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(ew, "EVENT\tCOUNT")
		for _, e := range report.Events {
			fmt.Fprintf(ew, "%s\t%d\n", e.Name, e.Count)
		}
		ew.Flush()
	}
}
