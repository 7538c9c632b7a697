package processor

import (
	"github.com/hashicorp/go-multierror"

	"logsplit/internal/logformat"
)

// Outcome is the terminal state of one file
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeSkipped
	OutcomeSplit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSplit:
		return "split"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result describes what happened to one input file
type Result struct {
	Source       string
	OutputPrefix string
	Format       logformat.Format
	Outcome      Outcome
	LinesRead    int64
	LinesWritten int64
	LinesDropped int64
	Files        []string // Dated output files appended to
	Err          error
}

// Report aggregates the results of a run
type Report struct {
	Results []Result
	Split   int
	Skipped int
	Failed  int

	errs *multierror.Error
}

func NewReport() *Report {
	return &Report{}
}

// Add records one file result
func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)

	switch res.Outcome {
	case OutcomeSplit:
		r.Split++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
		r.errs = multierror.Append(r.errs, res.Err)
	}
}

// Fail records a failure that is not tied to a split file, such as a
// compression pass error
func (r *Report) Fail(err error) {
	r.errs = multierror.Append(r.errs, err)
}

// Err joins every recorded failure, nil when the run was clean
func (r *Report) Err() error {
	return r.errs.ErrorOrNil()
}

// LinesWritten sums the lines written over all results
func (r *Report) LinesWritten() int64 {
	var total int64
	for _, res := range r.Results {
		total += res.LinesWritten
	}

	return total
}
