package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/topsize/pkg/topsize/config"
	"github.com/jamesainslie/topsize/pkg/topsize/history"
	"github.com/jamesainslie/topsize/pkg/topsize/output"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List earlier scans",
		Long: heredoc.Doc(`
			List recorded scans, newest first.

			Every completed scan is recorded unless --no-history is given or
			history.enabled is false. Records older than history.retention_days
			are removed whenever a new scan is recorded.
		`),
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
	cmd.Flags().IntP("limit", "l", config.DefaultHistoryLimit, "maximum number of scans to show (0 shows all)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the result of a recorded scan",
		Long:  `Print a recorded scan. The id may be shortened to any unique prefix.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}
	show.Flags().StringP("output", "o", "pretty", "output format")
	show.Flags().BoolP("mib", "M", false, "show sizes in MiB")
	show.Flags().BoolP("gib", "G", false, "show sizes in GiB")
	show.Flags().BoolP("index", "i", false, "show a rank column")
	show.MarkFlagsMutuallyExclusive("mib", "gib")

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Remove scans older than the retention period",
		Args:  cobra.NoArgs,
		RunE:  runHistoryPrune,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every recorded scan",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClear,
	}

	cmd.AddCommand(show, prune, clearCmd)
	return cmd
}

// openHistory opens the configured history store.
func openHistory() (*history.Store, error) {
	store, err := history.Open(cfg.History.Path, retention(cfg.History))
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	reports, err := store.List(limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(out, "No scans recorded.")
		fmt.Fprintln(out, "Run 'topsize [path]' to scan a directory.")
		return nil
	}

	writeHistory(out, reports, time.Now())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use 'topsize history show <id>' to see a scan's ranking.")
	return nil
}

// shortIDLen is how much of an id listings show.
const shortIDLen = 8

// writeHistory prints one line per report.
func writeHistory(w io.Writer, reports []types.Report, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tFILES\tDIRS\tLARGEST\tELAPSED\tROOT")
	for _, r := range reports {
		largest := "-"
		if len(r.Entries) > 0 {
			largest = types.FormatSize(r.Entries[0].Size)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID),
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			humanize.Comma(r.Totals.Files),
			humanize.Comma(r.Totals.Directories),
			largest,
			r.Elapsed.Round(time.Millisecond),
			r.Root,
		)
	}
	_ = tw.Flush()
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	format, _ := flags.GetString("output")

	var opts output.Options
	if mib, _ := flags.GetBool("mib"); mib {
		opts.Unit = output.UnitMiB
	}
	if gib, _ := flags.GetBool("gib"); gib {
		opts.Unit = output.UnitGiB
	}
	opts.Index, _ = flags.GetBool("index")

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := store.Get(args[0])
	if err != nil {
		return err
	}
	return printReport(cmd.OutOrStdout(), format, opts, report)
}

func runHistoryPrune(cmd *cobra.Command, _ []string) error {
	if cfg.History.RetentionDays <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Retention is disabled; nothing to prune.")
		return nil
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Prune(time.Now().Add(-retention(cfg.History)))
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d scans older than %d days.\n", removed, cfg.History.RetentionDays)
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d scans.\n", removed)
	return nil
}
