package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"logsplit/internal/compress"
	"logsplit/internal/config"
	"logsplit/internal/processor"
	"logsplit/internal/scan"
)

// run executes one split pass over cfg.Input. Only a bad input or output
// root aborts it; per-file failures are collected in the report.
func run(cfg *config.Config, logger *slog.Logger) (*processor.Report, error) {
	inRoot, err := filepath.Abs(cfg.Input)
	if err != nil {
		return nil, err
	}

	outRoot, err := filepath.Abs(cfg.Output)
	if err != nil {
		return nil, err
	}

	err = checkInputRoot(inRoot)
	if err != nil {
		return nil, err
	}

	err = prepareOutputRoot(outRoot)
	if err != nil {
		return nil, err
	}

	codec, err := compress.ParseCodec(cfg.Compression.Codec)
	if err != nil {
		return nil, err
	}

	proc, err := processor.NewFileProcessor(processor.Config{
		MaxLineBytes: cfg.Limits.MaxLineBytes,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	// the output tree may live inside the input tree
	scanner := scan.New(logger, outRoot)

	logger.Info("Starting run", "input", inRoot, "output", outRoot,
		"compression", cfg.Compression.Enabled, "codec", codec.String())

	var passErrs []error

	if cfg.Compression.Enabled {
		passErrs = append(passErrs, decompressInputs(scanner, inRoot, logger)...)
	}

	tasks, err := scanner.RotatedFiles(inRoot, outRoot)
	if err != nil {
		return nil, err
	}

	logger.Debug("Found rotated files", "count", len(tasks))

	report := proc.ProcessAll(tasks)

	if cfg.Compression.Enabled {
		passErrs = append(passErrs, compressOutputs(scan.New(logger), outRoot, codec, logger)...)
	}

	for _, err := range passErrs {
		report.Fail(err)
	}

	logger.Info("Run finished",
		"split", report.Split,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"compression_errors", len(passErrs),
		"lines_written", report.LinesWritten())

	return report, nil
}

func checkInputRoot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("input %s is not a directory", path)
	}

	return nil
}

// prepareOutputRoot creates the output root when it does not exist
func prepareOutputRoot(path string) error {
	info, err := os.Stat(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = os.MkdirAll(path, 0o755)
		if err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		return nil
	case err != nil:
		return fmt.Errorf("output directory: %w", err)
	case !info.IsDir():
		return fmt.Errorf("output %s exists and is not a directory", path)
	}

	return nil
}

func decompressInputs(scanner *scan.Scanner, root string, logger *slog.Logger) []error {
	files, err := scanner.CompressedFiles(root, compress.Extensions())
	if err != nil {
		logger.Error("Failed to scan for compressed inputs", "error", err)

		return []error{err}
	}

	var errs []error

	for _, path := range files {
		err := compress.Decompress(path)
		if err != nil {
			logger.Error("Failed to decompress file", "path", path, "error", err)
			errs = append(errs, err)

			continue
		}

		logger.Debug("Decompressed file", "path", path)
	}

	return errs
}

func compressOutputs(scanner *scan.Scanner, root string, codec compress.Codec, logger *slog.Logger) []error {
	files, err := scanner.DatedOutputs(root)
	if err != nil {
		logger.Error("Failed to scan for dated outputs", "error", err)

		return []error{err}
	}

	var errs []error

	for _, path := range files {
		err := compress.Compress(path, codec)
		if err != nil {
			logger.Error("Failed to compress file", "path", path, "error", err)
			errs = append(errs, err)

			continue
		}

		logger.Debug("Compressed file", "path", path, "codec", codec.String())
	}

	return errs
}
