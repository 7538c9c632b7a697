// Package split streams dated lines into one output file per date.
//
// A Writer is a two state machine: no file open, or one file open for a
// date D. A line dated D is appended to the open file; a line with another
// date closes the open file and opens (append, create) <prefix>-<date>.
// Undated lines are dropped. At most one file is open at any time.
package split

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// ErrClosed is returned by Write after Close
var ErrClosed = errors.New("split writer is closed")

// openFile is the file currently receiving lines
type openFile struct {
	date   string
	path   string
	file   *os.File
	writer *bufio.Writer
}

type Writer struct {
	prefix  string
	current *openFile
	files   []string
	seen    map[string]bool
	written int64
	dropped int64
	closed  bool
}

func New(prefix string) *Writer {
	return &Writer{
		prefix: prefix,
		seen:   make(map[string]bool),
	}
}

// Path returns the output file name for a date
func Path(prefix, date string) string {
	return prefix + "-" + date
}

// Write appends line to the file for date. An empty date drops the line.
// On error the open file, if any, is flushed and closed before returning so
// that everything written before the failure stays on disk.
func (w *Writer) Write(date, line string) error {
	if w.closed {
		return ErrClosed
	}

	if date == "" {
		w.dropped++

		return nil
	}

	if w.current == nil || w.current.date != date {
		err := w.switchTo(date)
		if err != nil {
			return w.fail(err)
		}
	}

	_, err := w.current.writer.WriteString(line)
	if err == nil {
		err = w.current.writer.WriteByte('\n')
	}

	if err != nil {
		return w.fail(fmt.Errorf("failed to write %s: %w", w.current.path, err))
	}

	w.written++

	return nil
}

// switchTo closes the open file and opens the one for date
func (w *Writer) switchTo(date string) error {
	err := w.closeCurrent()
	if err != nil {
		return err
	}

	path := Path(w.prefix, date)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}

	w.current = &openFile{
		date:   date,
		path:   path,
		file:   file,
		writer: bufio.NewWriter(file),
	}

	if !w.seen[path] {
		w.seen[path] = true
		w.files = append(w.files, path)
	}

	return nil
}

func (w *Writer) closeCurrent() error {
	if w.current == nil {
		return nil
	}

	cur := w.current
	w.current = nil

	flushErr := cur.writer.Flush()
	closeErr := cur.file.Close()

	if flushErr != nil {
		return fmt.Errorf("failed to flush %s: %w", cur.path, flushErr)
	}

	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", cur.path, closeErr)
	}

	return nil
}

func (w *Writer) fail(err error) error {
	_ = w.closeCurrent()

	return err
}

// Close flushes and closes the open file. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true

	return w.closeCurrent()
}

// Date returns the date of the open file, or "" when none is open
func (w *Writer) Date() string {
	if w.current == nil {
		return ""
	}

	return w.current.date
}

// Files returns the output files touched so far, in first-open order
func (w *Writer) Files() []string {
	return append([]string(nil), w.files...)
}

// Written returns the number of lines written
func (w *Writer) Written() int64 {
	return w.written
}

// Dropped returns the number of undated lines that were discarded
func (w *Writer) Dropped() int64 {
	return w.dropped
}
