package processor

import (
	"errors"
	"fmt"
	"io/fs"
)

// Op names the file operation that failed
type Op string

const (
	OpOpen   Op = "open"
	OpRead   Op = "read"
	OpMkdir  Op = "mkdir"
	OpWrite  Op = "write"
	OpClose  Op = "close"
	OpRemove Op = "remove"
)

// FileError is an I/O failure that aborted the processing of one file
type FileError struct {
	Op   Op
	Path string
	Err  error
}

func (e *FileError) Error() string {
	// os errors already carry the path, avoid printing it twice
	var pathErr *fs.PathError
	if errors.As(e.Err, &pathErr) && pathErr.Path == e.Path {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, pathErr.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// newFileError wraps err, preferring the path reported by the os layer
func newFileError(op Op, fallbackPath string, err error) *FileError {
	path := fallbackPath

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Path != "" {
		path = pathErr.Path
	}

	return &FileError{Op: op, Path: path, Err: err}
}

// OpOf returns the failed operation of err, or "" when err is not a FileError
func OpOf(err error) Op {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Op
	}

	return ""
}
