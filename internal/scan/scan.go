// Package scan finds the files a run works on: rotated inputs, compressed
// inputs and dated outputs.
package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"logsplit/internal/types"
)

var (
	// rotation index appended by logrotate: .1, .12
	rotationExt = regexp.MustCompile(`^\.\d+$`)
	datedSuffix = regexp.MustCompile(`-\d{4}-\d{2}-\d{2}$`)
)

// IsRotated reports whether path carries a purely numeric extension after a
// non-empty name. A bare ".1" is a dotfile, not a rotated file.
func IsRotated(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)

	return rotationExt.MatchString(ext) && strings.TrimSuffix(base, ext) != ""
}

// IsDated reports whether path ends in -YYYY-MM-DD
func IsDated(path string) bool {
	return datedSuffix.MatchString(path)
}

// OutputPrefix mirrors path, relative to inRoot, under outRoot and strips
// its rotation extension.
func OutputPrefix(inRoot, outRoot, path string) (string, error) {
	rel, err := filepath.Rel(inRoot, path)
	if err != nil {
		return "", err
	}

	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not inside %s", path, inRoot)
	}

	ext := filepath.Ext(rel)
	if strings.TrimSuffix(filepath.Base(rel), ext) == "" {
		return "", fmt.Errorf("%s has no name before its extension", path)
	}

	return filepath.Join(outRoot, strings.TrimSuffix(rel, ext)), nil
}

// Scanner walks directory trees. Directories listed in Skip are not
// descended into unless they are the walked root itself.
type Scanner struct {
	Skip   []string
	logger *slog.Logger
}

func New(logger *slog.Logger, skip ...string) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}

	cleaned := make([]string, 0, len(skip))
	for _, s := range skip {
		cleaned = append(cleaned, filepath.Clean(s))
	}

	return &Scanner{Skip: cleaned, logger: logger}
}

// walk calls fn for every regular file under root in lexical order.
// Unreadable entries below root are logged and skipped.
func (s *Scanner) walk(root string, fn func(path string) error) error {
	root = filepath.Clean(root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}

			s.logger.Warn("Skipping unreadable path", "path", path, "error", err)

			return nil
		}

		if d.IsDir() {
			if path != root && slices.Contains(s.Skip, path) {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		return fn(path)
	})
}

// RotatedFiles returns a task for every rotated file under inRoot
func (s *Scanner) RotatedFiles(inRoot, outRoot string) ([]types.FileTask, error) {
	var tasks []types.FileTask

	err := s.walk(inRoot, func(path string) error {
		if !IsRotated(path) {
			return nil
		}

		prefix, err := OutputPrefix(filepath.Clean(inRoot), outRoot, path)
		if err != nil {
			s.logger.Warn("Skipping file outside input root", "path", path, "error", err)

			return nil
		}

		tasks = append(tasks, types.FileTask{Source: path, OutputPrefix: prefix})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", inRoot, err)
	}

	return tasks, nil
}

// CompressedFiles returns the files under root ending in one of exts
func (s *Scanner) CompressedFiles(root string, exts []string) ([]string, error) {
	var files []string

	err := s.walk(root, func(path string) error {
		if slices.Contains(exts, filepath.Ext(path)) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return files, nil
}

// DatedOutputs returns the files under root whose name ends in -YYYY-MM-DD
func (s *Scanner) DatedOutputs(root string) ([]string, error) {
	var files []string

	err := s.walk(root, func(path string) error {
		if IsDated(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return files, nil
}
