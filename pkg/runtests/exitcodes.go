// Package runtests provides public constants for external tools
// integrating with the runtests harness.
package runtests

// Exit codes returned by the runtests CLI.
// CI scripts can check these symbolically rather than using magic numbers.
const (
	// ExitSuccess indicates every discovered artifact passed.
	ExitSuccess = 0

	// ExitFailure indicates at least one artifact failed (non-zero exit, FAIL marker,
	// or a toolchain that could not be launched).
	ExitFailure = 1

	// ExitConfigError indicates a configuration error (invalid config, unknown toolchain, etc.).
	ExitConfigError = 2

	// ExitDiscoveryError indicates the test tree could not be walked (missing or unreadable root).
	ExitDiscoveryError = 3

	// ExitAborted indicates the harness aborted because a toolchain report could not be
	// parsed. No final report is printed in this case.
	ExitAborted = 4
)
