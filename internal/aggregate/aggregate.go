// Package aggregate folds per-artifact run results into the final run report.
package aggregate

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/model"
	"github.com/emberjson/runtests/internal/output"
	"github.com/emberjson/runtests/internal/testparser"
)

// Aggregator owns the report of one harness run.
// It is not safe for concurrent use; results must be recorded in discovery order.
type Aggregator struct {
	out       *output.Writer
	report    *Report
	start     time.Time
	now       func() time.Time
	finalized bool
}

// New creates an Aggregator that echoes toolchain output to w.
func New(w *output.Writer) *Aggregator {
	return newWithClock(w, time.Now)
}

func newWithClock(w *output.Writer, now func() time.Time) *Aggregator {
	return &Aggregator{
		out:    w,
		report: &Report{},
		start:  now(),
		now:    now,
	}
}

// Record folds one run result into the report.
//
// The run's stdout is echoed immediately, and its stderr too when the exit code
// is non-zero. A run that could not be launched, or that timed out, is a failure
// without count extraction. A report whose count cannot be read yields a parse
// error attributed to the artifact; the report is left untouched for it.
func (a *Aggregator) Record(res model.RunResult) error {
	if a.finalized {
		panic("aggregate: Record called after Finalize")
	}

	path := res.Artifact.Path
	a.out.ArtifactStart(path)

	if !res.Launched() {
		reason := fmt.Sprintf("launch failed: %v", launchCause(res.LaunchErr))
		a.out.ArtifactFailed(path, reason)
		a.fail(res, reason, 0)
		return nil
	}

	a.out.PassthroughStdout(res.Stdout)
	if res.ExitCode != 0 {
		a.out.PassthroughStderr(res.Stderr)
	}

	if res.TimedOut {
		reason := fmt.Sprintf("timed out after %s", res.Duration.Round(time.Millisecond))
		a.out.ArtifactFailed(path, reason)
		a.fail(res, reason, 0)
		return nil
	}

	outcome, err := testparser.Classify(res.Stdout, res.ExitCode)
	if err != nil {
		var he *errors.HarnessError
		if stderrors.As(err, &he) {
			return he.WithArtifact(path)
		}
		return err
	}

	if outcome.Failed() {
		a.out.Debug("%s failed: %s", path, outcome.Reason)
		a.fail(res, outcome.Reason, outcome.Count)
		return nil
	}

	a.report.Total += outcome.Count
	a.report.Passed++
	a.report.Runs++
	a.report.Results = append(a.report.Results, entryFor(res, testparser.Pass, outcome.Count, ""))
	return nil
}

func (a *Aggregator) fail(res model.RunResult, reason string, count int) {
	a.report.Failed = append(a.report.Failed, Failure{Path: res.Artifact.Path, Reason: reason})
	a.report.Runs++
	a.report.Results = append(a.report.Results, entryFor(res, testparser.Fail, count, reason))
}

// launchCause strips the harness wrapper so the reason names the OS error.
func launchCause(err error) error {
	if cause := stderrors.Unwrap(err); cause != nil {
		return cause
	}
	return err
}

// Finalize freezes and returns the report. Record panics afterwards.
func (a *Aggregator) Finalize() *Report {
	if !a.finalized {
		a.finalized = true
		a.report.Duration = a.now().Sub(a.start)
	}
	return a.report
}
