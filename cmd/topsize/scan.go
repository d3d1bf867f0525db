package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/topsize/cmd/topsize/tui"
	"github.com/jamesainslie/topsize/pkg/topsize/config"
	"github.com/jamesainslie/topsize/pkg/topsize/history"
	"github.com/jamesainslie/topsize/pkg/topsize/logging"
	"github.com/jamesainslie/topsize/pkg/topsize/mounts"
	"github.com/jamesainslie/topsize/pkg/topsize/output"
	"github.com/jamesainslie/topsize/pkg/topsize/scanner"
	"github.com/jamesainslie/topsize/pkg/topsize/tuner"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

var logger = logging.Get("cli")

// scanSettings is the merged result of flags and configuration.
type scanSettings struct {
	scan            scanner.Options
	output          output.Options
	format          string
	interactive     bool
	restrictDevices bool
	history         bool
}

// resolveSettings merges command-line flags over cfg. Flags win when set.
func resolveSettings(cmd *cobra.Command, args []string, cfg *config.Config) (scanSettings, error) {
	flags := cmd.Flags()
	var s scanSettings

	root := cfg.DefaultPath
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		root = config.DefaultPath
	}
	root, err := config.ExpandPath(root)
	if err != nil {
		return s, fmt.Errorf("failed to expand path: %w", err)
	}

	minSizeStr := cfg.MinSize
	if flags.Changed("min-size") {
		minSizeStr, _ = flags.GetString("min-size")
	}
	if minSizeStr == "" {
		minSizeStr = config.DefaultMinSize
	}
	minSize, err := types.ParseSize(minSizeStr)
	if err != nil {
		return s, fmt.Errorf("invalid minimum size %q: %w", minSizeStr, err)
	}

	count := cfg.Count
	if flags.Changed("count") {
		count, _ = flags.GetInt("count")
	}
	if count < 1 {
		return s, fmt.Errorf("%w: got %d", scanner.ErrInvalidCount, count)
	}

	engineStr := cfg.Engine
	if flags.Changed("engine") {
		engineStr, _ = flags.GetString("engine")
	}
	engine, err := scanner.ParseEngine(engineStr)
	if err != nil {
		return s, err
	}

	workers := cfg.Workers
	if flags.Changed("workers") {
		workers, _ = flags.GetInt("workers")
	}
	tuned := tuner.Auto(workers)

	s.scan = scanner.Options{
		Root:               root,
		MinSize:            minSize,
		Count:              count,
		Engine:             engine,
		Workers:            tuned.Workers,
		EventBuffer:        tuned.EventBuffer,
		RefreshEvery:       cfg.RefreshEvery,
		MinRefreshInterval: config.DefaultRefreshInterval,
	}

	s.format = cfg.Output
	if flags.Changed("output") {
		s.format, _ = flags.GetString("output")
	}
	if s.format == "" {
		s.format = config.DefaultOutput
	}
	if !slices.Contains(output.Available(), s.format) {
		return s, fmt.Errorf("%w %q: available formats are %v", output.ErrUnknownFormat, s.format, output.Available())
	}

	if mib, _ := flags.GetBool("mib"); mib {
		s.output.Unit = output.UnitMiB
	}
	if gib, _ := flags.GetBool("gib"); gib {
		s.output.Unit = output.UnitGiB
	}
	s.output.Index, _ = flags.GetBool("index")

	noInteractive, _ := flags.GetBool("no-interactive")
	s.interactive = s.format == "pretty" && !noInteractive

	allDevices, _ := flags.GetBool("all-devices")
	s.restrictDevices = cfg.RestrictDevices && !allDevices

	noHistory, _ := flags.GetBool("no-history")
	s.history = cfg.History.Enabled && !noHistory

	return s, nil
}

// runScan is the root command handler.
func runScan(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args, cfg)
	if err != nil {
		return err
	}

	if s.restrictDevices {
		devices, err := mounts.AllowedDevices()
		if err != nil {
			logger.Warn("cannot enumerate mounts, scanning every device", "err", err)
		} else {
			s.scan.Devices = devices
		}
	}

	logger.Debug("scan settings",
		"root", s.scan.Root,
		"engine", s.scan.Engine,
		"workers", s.scan.Workers,
		"event_buffer", s.scan.EventBuffer,
		"restrict_devices", s.restrictDevices)

	stdout := os.Stdout.Fd()
	if s.interactive && isatty.IsTerminal(stdout) {
		return runInteractive(cmd, s)
	}

	s.output.Width = terminalWidth(stdout)
	report, err := scanner.New(s.scan).Scan()
	if err != nil {
		return err
	}
	attachDisk(report)
	recordHistory(s, report)
	return printReport(cmd.OutOrStdout(), s.format, s.output, report)
}

// runInteractive shows the live view and prints the final ranking when it
// was not browsed.
func runInteractive(cmd *cobra.Command, s scanSettings) error {
	// The live view owns the terminal; keep logs in the file only.
	if err := initLogging(cfg, false); err != nil {
		return err
	}

	s.output.Width = terminalWidth(os.Stdout.Fd())
	result, err := tui.Run(tui.Options{
		Scan:     s.scan,
		Output:   s.output,
		Complete: attachDisk,
	})
	if err != nil {
		return err
	}
	recordHistory(s, result.Report)

	if result.Browsed {
		fmt.Fprintln(cmd.OutOrStdout(), output.Summary(result.Report.Totals, result.Report.Elapsed))
		return nil
	}
	return printReport(cmd.OutOrStdout(), "pretty", s.output, result.Report)
}

// attachDisk adds the usage of the filesystem holding the scan root.
func attachDisk(report *types.Report) {
	disk, err := mounts.Usage(report.Root)
	if err != nil {
		logger.Debug("disk usage unavailable", "root", report.Root, "err", err)
		return
	}
	report.Disk = disk
}

// recordHistory stores report when history is enabled. Failures are
// reported but never fail the scan.
func recordHistory(s scanSettings, report *types.Report) {
	if !s.history || report == nil {
		return
	}
	if err := saveReport(cfg.History, report); err != nil {
		logger.Warn("cannot record scan history", "err", err)
		printWarning("scan not recorded in history: %v", err)
	}
}

func saveReport(hc config.HistoryConfig, report *types.Report) error {
	store, err := history.Open(hc.Path, retention(hc))
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(report)
}

// retention converts the configured retention in days.
func retention(hc config.HistoryConfig) time.Duration {
	return time.Duration(hc.RetentionDays) * 24 * time.Hour
}

// printReport renders report with the named formatter to w.
func printReport(w io.Writer, format string, opts output.Options, report *types.Report) error {
	formatter, err := output.Get(format, opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}
