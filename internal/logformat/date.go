package logformat

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the layout of dates returned by DateParser and used in
	// output file names.
	DateLayout = "2006-01-02"
	// SentinelDate groups lines whose date was found but could not be parsed.
	SentinelDate = "0001-01-01"
)

// DateParser extracts calendar dates from log lines.
//
// Syslog lines carry no year, so the current UTC year taken from Now is
// assumed. Lines written near new year can land in the wrong year.
type DateParser struct {
	Now func() time.Time
}

func NewDateParser() *DateParser {
	return &DateParser{Now: time.Now}
}

// Parse returns the date of line formatted as YYYY-MM-DD. The boolean is
// false when the line has no date substring for format f (continuation
// lines, stack traces). A substring that cannot be parsed into a valid date
// yields SentinelDate.
func (p *DateParser) Parse(f Format, line string) (string, bool) {
	pat := lookup(f)
	if pat == nil {
		return "", false
	}

	matched := pat.extract.FindString(line)
	if matched == "" {
		return "", false
	}

	if pat.noYear {
		fields := strings.Fields(matched)
		fields = append(fields, strconv.Itoa(p.now().UTC().Year()))
		matched = strings.Join(fields, " ")
	}

	t, err := time.Parse(pat.layout, matched)
	if err != nil {
		return SentinelDate, true
	}

	return t.Format(DateLayout), true
}

func (p *DateParser) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}

	return p.Now()
}
