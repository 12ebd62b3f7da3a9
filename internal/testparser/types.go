// Package testparser classifies toolchain reports and extracts their test counts.
package testparser

// Verdict is the pass/fail classification of one run.
type Verdict int

const (
	Pass Verdict = iota
	Fail
)

// String returns "pass" or "fail".
func (v Verdict) String() string {
	if v == Fail {
		return "fail"
	}
	return "pass"
}

// MarshalText implements encoding.TextMarshaler so reports carry readable verdicts.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Outcome is the classification of one run's report.
type Outcome struct {
	Verdict Verdict
	Count   int    // Number of test cases the toolchain reported executing
	Reason  string // Why the run failed; empty on Pass
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool {
	return o.Verdict == Fail
}
