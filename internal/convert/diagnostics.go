package convert

import (
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one recorded anomaly. Count is the number of occurrences
// folded into the entry; aggregated warnings carry more than one.
type Diagnostic struct {
	Severity Severity
	Err      error
	Count    int
}

// Diagnostics collects the anomalies of one conversion. Every entry is also
// logged as it is recorded.
type Diagnostics struct {
	log              *zap.Logger
	warningsAsErrors bool
	verbose          bool
	entries          []Diagnostic
}

func newDiagnostics(log *zap.Logger, opts Options) *Diagnostics {
	return &Diagnostics{
		log:              log,
		warningsAsErrors: opts.WarningsAsErrors,
		verbose:          opts.Verbose,
	}
}

func (d *Diagnostics) reportError(err error) {
	d.add(SeverityError, err, 1)
}

// reportErrors records one entry standing for count occurrences of err.
func (d *Diagnostics) reportErrors(err error, count int) {
	d.add(SeverityError, err, count)
}

func (d *Diagnostics) reportWarning(err error, count int) {
	d.add(SeverityWarning, err, count)
}

func (d *Diagnostics) add(sev Severity, err error, count int) {
	if sev == SeverityWarning && d.warningsAsErrors {
		sev = SeverityError
	}
	d.entries = append(d.entries, Diagnostic{Severity: sev, Err: err, Count: count})

	fields := []zap.Field{}
	if count > 1 {
		fields = append(fields, zap.Int("count", count))
	}
	if sev == SeverityError {
		d.log.Error(err.Error(), fields...)
	} else {
		d.log.Warn(err.Error(), fields...)
	}
}

// trace logs progress. Verbose conversions log at info level, others at debug.
func (d *Diagnostics) trace(msg string, fields ...zap.Field) {
	if d.verbose {
		d.log.Info(msg, fields...)
		return
	}
	d.log.Debug(msg, fields...)
}

// Entries returns all recorded diagnostics in order.
func (d *Diagnostics) Entries() []Diagnostic {
	return d.entries
}

// ErrorCount returns the number of error entries. Aggregated entries count once.
func (d *Diagnostics) ErrorCount() int {
	return d.count(SeverityError)
}

// WarningCount returns the number of warning entries.
func (d *Diagnostics) WarningCount() int {
	return d.count(SeverityWarning)
}

func (d *Diagnostics) count(sev Severity) int {
	n := 0
	for _, e := range d.entries {
		if e.Severity == sev {
			n++
		}
	}
	return n
}

// Occurrences sums the Count of every entry matching target.
func (d *Diagnostics) Occurrences(target error) int {
	n := 0
	for _, e := range d.entries {
		if errors.Is(e.Err, target) {
			n += e.Count
		}
	}
	return n
}

// Err combines all error entries into one error, or nil if there are none.
func (d *Diagnostics) Err() error {
	var err error
	for _, e := range d.entries {
		if e.Severity == SeverityError {
			err = multierr.Append(err, e.Err)
		}
	}
	return err
}
