package logformat

import (
	"fmt"
	"regexp"
)

// Format identifies one of the known log line layouts
type Format uint8

const (
	Unknown Format = iota
	Syslog
	Iso
	ApacheAccess
	ApacheError
	GrafanaLogs
)

func (f Format) String() string {
	switch f {
	case Syslog:
		return "syslog"
	case Iso:
		return "iso"
	case ApacheAccess:
		return "apache-access"
	case ApacheError:
		return "apache-error"
	case GrafanaLogs:
		return "grafana"
	default:
		return "unknown"
	}
}

// ParseFormat is the inverse of Format.String
func ParseFormat(name string) (Format, error) {
	for _, p := range patterns {
		if p.format.String() == name {
			return p.format, nil
		}
	}

	if name == Unknown.String() {
		return Unknown, nil
	}

	return Unknown, fmt.Errorf("unknown log format: %s", name)
}

const (
	months   = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`
	weekdays = `(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)`
)

// pattern binds a format to its detection and extraction expressions and the
// time layout used on the extracted substring.
type pattern struct {
	format  Format
	detect  *regexp.Regexp
	extract *regexp.Regexp
	layout  string
	// noYear marks layouts whose substring carries no year; the current year
	// is appended before parsing and layout must end with " 2006".
	noYear bool
}

var (
	// "Jan  5 10:00:01 host ...", "Jan 05 ...", "Jan 5 ..."
	syslogDate = regexp.MustCompile(`^` + months + ` ([ 0-2]?\d|3[01])\b`)
	isoDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	// 127.0.0.1 - - [17/May/2020:10:00:00 +0200] "GET / HTTP/1.1" 200 12
	apacheAccessDate = regexp.MustCompile(`\[\d{2}/` + months + `/\d{4}:`)
	// [Sat May 16 02:07:16.656808 2020] [core:error] ...
	apacheErrorDate = regexp.MustCompile(`\[` + weekdays + ` ` + months + ` \d{2} \d{2}:\d{2}:\d{2}\.\d{6} \d{4}\]`)
	// t=2020-05-12T18:14:21+0200 lvl=info msg=...
	grafanaDate = regexp.MustCompile(`^t=\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{4} lvl=`)
)

// patterns is ordered by detection priority. Never mutated after init.
// Every known format currently detects on the same expression it extracts
// its date with.
var patterns = []pattern{
	{format: Syslog, detect: syslogDate, extract: syslogDate, layout: "Jan 2 2006", noYear: true},
	{format: Iso, detect: isoDate, extract: isoDate, layout: "2006-01-02"},
	{format: ApacheAccess, detect: apacheAccessDate, extract: apacheAccessDate, layout: "[02/Jan/2006:"},
	{format: ApacheError, detect: apacheErrorDate, extract: apacheErrorDate, layout: "[Mon Jan 02 15:04:05.000000 2006]"},
	{format: GrafanaLogs, detect: grafanaDate, extract: grafanaDate, layout: "t=2006-01-02T15:04:05-0700 lvl="},
}

// Formats returns the known formats in detection priority order
func Formats() []Format {
	formats := make([]Format, 0, len(patterns))
	for _, p := range patterns {
		formats = append(formats, p.format)
	}

	return formats
}

func lookup(f Format) *pattern {
	for i := range patterns {
		if patterns[i].format == f {
			return &patterns[i]
		}
	}

	return nil
}
