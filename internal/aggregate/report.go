package aggregate

import (
	"time"

	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/model"
	"github.com/emberjson/runtests/internal/output"
	"github.com/emberjson/runtests/internal/testparser"
)

// Failure is one failed artifact.
type Failure struct {
	Path   string
	Reason string
}

// Entry is the per-artifact outcome kept for reports and history.
type Entry struct {
	Path     string
	Rel      string
	Verdict  testparser.Verdict
	Count    int
	ExitCode int
	Reason   string
	Duration time.Duration
	Launched bool
	TimedOut bool

	// Captured output, kept for failed runs only.
	Stdout string
	Stderr string
}

// Report is the aggregate outcome of a harness run.
type Report struct {
	Failed   []Failure // Discovery order
	Total    int       // Sum of the test counts of passing runs
	Runs     int
	Passed   int
	Duration time.Duration
	Results  []Entry
}

// Success reports whether no artifact failed.
func (r *Report) Success() bool {
	return len(r.Failed) == 0
}

// ExitCode returns the process exit code for the run.
func (r *Report) ExitCode() int {
	if r.Success() {
		return errors.ExitSuccess
	}
	return errors.ExitFailure
}

// FailedPaths returns the failed artifact paths in discovery order.
func (r *Report) FailedPaths() []string {
	paths := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		paths[i] = f.Path
	}
	return paths
}

// Print writes the final summary: the failed list when anything failed,
// otherwise the total test count.
func (r *Report) Print(w *output.Writer) {
	if !r.Success() {
		w.FailedList(r.FailedPaths())
		return
	}
	w.TotalCount(r.Total)
}

func entryFor(res model.RunResult, verdict testparser.Verdict, count int, reason string) Entry {
	e := Entry{
		Path:     res.Artifact.Path,
		Rel:      res.Artifact.Rel,
		Verdict:  verdict,
		Count:    count,
		ExitCode: res.ExitCode,
		Reason:   reason,
		Duration: res.Duration,
		Launched: res.Launched(),
		TimedOut: res.TimedOut,
	}
	if verdict == testparser.Fail {
		e.Stdout = res.Stdout
		e.Stderr = res.Stderr
	}
	return e
}
