package types

import "logsplit/internal/logformat"

// FileTask represents one rotated input file to be split by date
type FileTask struct {
	Source       string           // Path to the rotated input file
	OutputPrefix string           // Output path without the date suffix
	Format       logformat.Format // Unknown until classified; stays Unknown when the file is skipped
}

// Classified reports whether a format has been resolved for the task
func (t FileTask) Classified() bool {
	return t.Format != logformat.Unknown
}
