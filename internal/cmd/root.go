package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"logsplit/internal/config"
	"logsplit/internal/logging"
)

// options holds the persistent flag values. A flag only overrides the
// config file when it was set on the command line.
type options struct {
	configFile   string
	logLevel     string
	logFormat    string
	logFile      string
	noCompress   bool
	codec        string
	maxLineBytes int
}

// NewRootCmd builds the logsplit command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "logsplit [flags] INPUT [OUTPUT]",
		Short: "Split rotated log files into one file per day",
		Long: `logsplit walks INPUT for rotated log files (syslog.1, access.log.2, ...),
detects the format of each from its first line and appends every dated line
to OUTPUT/<relative path>-<YYYY-MM-DD>. Processed sources are removed.

Compressed inputs (.gz, .zst) are decompressed first and the dated outputs
are compressed afterwards unless --no-compress is given.

Examples:
  logsplit /var/log/archive
  logsplit /var/log/archive /srv/logs --codec zstd
  logsplit -c logsplit.toml`,
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, opts, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "TOML config file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text, json")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this rotated file instead of stderr")
	flags.BoolVar(&opts.noCompress, "no-compress", false, "skip decompressing inputs and compressing outputs")
	flags.StringVar(&opts.codec, "codec", "gzip", "output compression codec: gzip, zstd")
	flags.IntVar(&opts.maxLineBytes, "max-line-bytes", 1<<20, "longest accepted input line")

	rootCmd.AddCommand(newClassifyCmd(opts))

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies positional arguments and
// explicitly set flags on top of it
func loadConfig(cmd *cobra.Command, opts *options, args []string) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Input = args[0]
	}

	if len(args) > 1 {
		cfg.Output = args[1]
	}

	flags := cmd.Flags()

	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}

	if flags.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}

	if flags.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}

	if flags.Changed("no-compress") {
		cfg.Compression.Enabled = !opts.noCompress
	}

	if flags.Changed("codec") {
		cfg.Compression.Codec = opts.codec
	}

	if flags.Changed("max-line-bytes") {
		cfg.Limits.MaxLineBytes = opts.maxLineBytes
	}

	return cfg, nil
}

func runSplit(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := loadConfig(cmd, opts, args)
	if err != nil {
		return err
	}

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	report, err := run(cfg, logger)
	if err != nil {
		logger.Error("Run aborted", "error", err)

		return err
	}

	return report.Err()
}
