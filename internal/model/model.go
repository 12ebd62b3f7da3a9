// Package model provides shared data types used across multiple internal packages.
// This package exists to break import cycles between discover, runner and aggregate,
// which all pass artifacts and run results to one another.
package model

import "time"

// Artifact identifies one discovered test file.
type Artifact struct {
	Path string // Path as walked (root joined with the relative path)
	Rel  string // Slash-separated path relative to the discovery root
}

// String returns the artifact path.
func (a Artifact) String() string {
	return a.Path
}

// RunResult is the outcome of executing one artifact.
// The runner fills it in; the aggregator interprets it.
type RunResult struct {
	Artifact Artifact
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration

	// LaunchErr is set when the toolchain could not be started at all.
	// ExitCode, Stdout and Stderr are meaningless in that case.
	LaunchErr error

	// TimedOut is set when the run was killed by the per-run timeout.
	TimedOut bool
}

// Launched reports whether the subprocess actually started.
func (r RunResult) Launched() bool {
	return r.LaunchErr == nil
}
