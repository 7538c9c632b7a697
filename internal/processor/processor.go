package processor

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"logsplit/internal/logformat"
	"logsplit/internal/processor/split"
	"logsplit/internal/types"
)

// DefaultMaxLineBytes caps the length of a single input line
const DefaultMaxLineBytes = 1 << 20

// Config configures a FileProcessor. Zero values select defaults.
type Config struct {
	MaxLineBytes int
	Dates        *logformat.DateParser
	Logger       *slog.Logger
}

// FileProcessor classifies rotated log files and splits them by date
type FileProcessor struct {
	maxLineBytes int
	dates        *logformat.DateParser
	logger       *slog.Logger
}

func NewFileProcessor(config Config) (*FileProcessor, error) {
	if config.MaxLineBytes < 0 {
		return nil, fmt.Errorf("max line bytes must not be negative: %d", config.MaxLineBytes)
	}

	p := &FileProcessor{
		maxLineBytes: config.MaxLineBytes,
		dates:        config.Dates,
		logger:       config.Logger,
	}

	if p.maxLineBytes == 0 {
		p.maxLineBytes = DefaultMaxLineBytes
	}

	if p.dates == nil {
		p.dates = logformat.NewDateParser()
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p, nil
}

// Classify reads the first line of the task's source and stores the
// detected format on the task. A file matching no format keeps Unknown.
func (p *FileProcessor) Classify(task *types.FileTask) error {
	file, err := os.Open(task.Source)
	if err != nil {
		return newFileError(OpOpen, task.Source, err)
	}
	defer file.Close()

	format, err := logformat.Classify(file, p.maxLineBytes)
	if err != nil {
		return newFileError(OpRead, task.Source, err)
	}

	task.Format = format

	return nil
}

// ProcessFile classifies the task, splits its lines into dated files under
// the task's output prefix and removes the source. Unclassified files are
// skipped and left in place. On error the source is never removed.
func (p *FileProcessor) ProcessFile(task *types.FileTask) (Result, error) {
	result := Result{
		Source:       task.Source,
		OutputPrefix: task.OutputPrefix,
		Outcome:      OutcomeFailed,
	}

	err := p.Classify(task)
	if err != nil {
		return result, err
	}

	result.Format = task.Format

	if !task.Classified() {
		result.Outcome = OutcomeSkipped

		return result, nil
	}

	dir := filepath.Dir(task.OutputPrefix)

	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return result, newFileError(OpMkdir, dir, err)
	}

	err = p.splitLines(task, &result)
	if err != nil {
		return result, err
	}

	err = os.Remove(task.Source)
	if err != nil {
		return result, newFileError(OpRemove, task.Source, err)
	}

	result.Outcome = OutcomeSplit

	return result, nil
}

// splitLines streams the source through the date parser into a split writer
func (p *FileProcessor) splitLines(task *types.FileTask, result *Result) error {
	file, err := os.Open(task.Source)
	if err != nil {
		return newFileError(OpOpen, task.Source, err)
	}
	defer file.Close()

	writer := split.New(task.OutputPrefix)
	defer writer.Close()

	defer func() {
		result.LinesWritten = writer.Written()
		result.LinesDropped = writer.Dropped()
		result.Files = writer.Files()
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, min(bufio.MaxScanTokenSize, p.maxLineBytes)), p.maxLineBytes)

	for scanner.Scan() {
		line := scanner.Text()
		result.LinesRead++

		// undated lines come back as "" and are dropped by the writer
		date, _ := p.dates.Parse(task.Format, line)

		err = writer.Write(date, line)
		if err != nil {
			return newFileError(OpWrite, task.OutputPrefix, err)
		}
	}

	err = scanner.Err()
	if err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			err = fmt.Errorf("line %d longer than %d bytes: %w", result.LinesRead+1, p.maxLineBytes, err)
		}

		return newFileError(OpRead, task.Source, err)
	}

	err = writer.Close()
	if err != nil {
		return newFileError(OpClose, task.OutputPrefix, err)
	}

	return nil
}

// ProcessAll processes tasks one at a time, in order. A failing file is
// logged and recorded; it never stops the batch.
func (p *FileProcessor) ProcessAll(tasks []types.FileTask) *Report {
	report := NewReport()

	for i := range tasks {
		task := &tasks[i]

		result, err := p.ProcessFile(task)
		result.Err = err
		report.Add(result)

		switch result.Outcome {
		case OutcomeSplit:
			p.logger.Info("File split",
				"source", result.Source,
				"format", result.Format.String(),
				"output", result.OutputPrefix,
				"lines", result.LinesRead,
				"written", result.LinesWritten,
				"files", len(result.Files))
		case OutcomeSkipped:
			p.logger.Info("File skipped, unclassified", "source", result.Source)
		default:
			p.logger.Error("Failed to process file", "source", result.Source, "error", err)
		}
	}

	return report
}
