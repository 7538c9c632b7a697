package logformat

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Detect returns the first format, in priority order, whose detection
// pattern matches line. Unknown means no format matched.
func Detect(line string) Format {
	line = strings.TrimRight(line, "\r\n")

	for _, p := range patterns {
		if p.detect.MatchString(line) {
			return p.format
		}
	}

	return Unknown
}

// Classify reads a single line from r and detects its format. At most limit
// bytes are read; a longer first line is detected on its leading limit bytes.
// A limit <= 0 reads the whole line. An empty reader is Unknown, not an error.
func Classify(r io.Reader, limit int) (Format, error) {
	if limit > 0 {
		r = io.LimitReader(r, int64(limit))
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Unknown, err
	}

	return Detect(line), nil
}
