package main

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/topsize/pkg/topsize/config"
	"github.com/jamesainslie/topsize/pkg/topsize/logging"
	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// cfg is loaded once per invocation before any command runs.
var cfg *config.Config

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topsize [path]",
		Short: "Find the largest files under a directory",
		Long: heredoc.Doc(`
			topsize walks a directory tree concurrently and reports the largest
			files it finds, updating a ranked view while the scan runs.

			On a terminal the ranking is shown live; when the final table is
			taller than the terminal it can be browsed with j/k or the arrow keys
			and closed with q. Otherwise the ranking is printed once the scan
			completes.
		`),
		Example: heredoc.Doc(`
			topsize                      # ten largest files under the current directory
			topsize -n 25 ~/Downloads    # twenty-five largest files in Downloads
			topsize -m 100M -G /var      # files of at least 100 MiB, sizes in GiB
			topsize -o json . > top.json # machine-readable output
			topsize history              # earlier scans
		`),
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logging.Close()
		},
		RunE: runScan,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "also write debug logs to stderr")

	flags := cmd.Flags()
	flags.StringP("min-size", "m", "", "smallest file size to rank (e.g. 500K, 100M, 1G)")
	flags.IntP("count", "n", 0, "number of files to report")
	flags.StringP("engine", "e", "", "traversal engine: walk or fastwalk")
	flags.IntP("workers", "w", 0, "concurrent directory reads (0=auto)")
	flags.StringP("output", "o", "", "output format for non-interactive runs")
	flags.Bool("no-interactive", false, "print the result instead of showing the live view")
	flags.Bool("all-devices", false, "descend into every mounted filesystem")
	flags.Bool("no-history", false, "do not record this scan in the history")
	flags.BoolP("mib", "M", false, "show sizes in MiB")
	flags.BoolP("gib", "G", false, "show sizes in GiB")
	flags.BoolP("index", "i", false, "show a rank column")
	cmd.MarkFlagsMutuallyExclusive("mib", "gib")

	cmd.AddCommand(newHistoryCmd(), newConfigCmd(), newVersionCmd())
	return cmd
}

// setup loads the configuration and starts logging for every command.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg = loaded

	verbose, _ := cmd.Flags().GetBool("verbose")
	return initLogging(cfg, verbose)
}

// initLogging configures the log file from cfg and, when console is set,
// mirrors debug output to stderr.
func initLogging(cfg *config.Config, console bool) error {
	lc, err := loggingConfig(cfg.Logging)
	if err != nil {
		return err
	}
	if console {
		lc.ConsoleLevel = "debug"
	}
	if err := logging.Init(lc); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

// loggingConfig converts the file configuration to logging settings.
func loggingConfig(c config.LoggingConfig) (logging.Config, error) {
	rotation := logging.DefaultRotationConfig()
	if c.Rotation.MaxSize != "" {
		size, err := types.ParseSize(c.Rotation.MaxSize)
		if err != nil {
			return logging.Config{}, fmt.Errorf("invalid logging.rotation.max_size %q: %w", c.Rotation.MaxSize, err)
		}
		rotation.MaxSize = size
	}
	rotation.MaxAge = c.Rotation.MaxAge
	rotation.MaxBackups = c.Rotation.MaxBackups
	rotation.Daily = c.Rotation.Daily

	return logging.Config{
		Level:      c.Level,
		Path:       c.Path,
		Rotation:   rotation,
		Components: c.Components,
	}, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// printWarning prints a line to stderr.
func printWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
