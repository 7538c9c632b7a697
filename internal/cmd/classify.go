package cmd

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"logsplit/internal/logging"
	"logsplit/internal/processor"
	"logsplit/internal/types"
)

func newClassifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify FILE...",
		Short: "Print the detected log format of each file",
		Long: `Reads the first line of every FILE and prints "<path>\t<format>".
Files are never modified. The format is one of syslog, iso, apache-access,
apache-error, grafana or unknown.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, opts, args)
		},
	}
}

func runClassify(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := loadConfig(cmd, opts, nil)
	if err != nil {
		return err
	}

	err = cfg.Log.Validate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	proc, err := processor.NewFileProcessor(processor.Config{Logger: logger})
	if err != nil {
		return err
	}

	var errs *multierror.Error

	out := cmd.OutOrStdout()

	for _, path := range args {
		task := types.FileTask{Source: path}

		err := proc.Classify(&task)
		if err != nil {
			logger.Error("Failed to classify file", "path", path, "error", err)
			errs = multierror.Append(errs, err)

			continue
		}

		fmt.Fprintf(out, "%s\t%s\n", path, task.Format)
	}

	return errs.ErrorOrNil()
}
