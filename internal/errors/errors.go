// Package errors provides the harness error taxonomy and its exit codes.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/emberjson/runtests/pkg/runtests"
)

// Exit codes, mirrored from pkg/runtests for internal callers.
const (
	ExitSuccess        = runtests.ExitSuccess
	ExitFailure        = runtests.ExitFailure
	ExitConfigError    = runtests.ExitConfigError
	ExitDiscoveryError = runtests.ExitDiscoveryError
	ExitAborted        = runtests.ExitAborted
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindDiscovery
	KindLaunch
	KindParse
	KindEnvironment
)

// String returns the kind name used in diagnostics.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindDiscovery:
		return "discovery"
	case KindLaunch:
		return "launch"
	case KindParse:
		return "parse"
	case KindEnvironment:
		return "environment"
	default:
		return "runtime"
	}
}

// HarnessError is the base error type for the harness.
type HarnessError struct {
	Kind     ErrorKind
	Message  string
	Artifact string // Artifact path if applicable
	Cause    error  // Underlying error
}

func (e *HarnessError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Artifact != "" {
		return fmt.Sprintf("[%s] %s", e.Artifact, msg)
	}
	return msg
}

func (e *HarnessError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *HarnessError) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindDiscovery, KindEnvironment:
		return ExitDiscoveryError
	case KindParse:
		return ExitAborted
	default:
		return ExitFailure
	}
}

// Config creates a new configuration error.
func Config(message string) *HarnessError {
	return &HarnessError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *HarnessError {
	return Config(fmt.Sprintf(format, args...))
}

// Discovery creates an error for a test tree that cannot be walked.
func Discovery(root string, cause error) *HarnessError {
	return &HarnessError{
		Kind:    KindDiscovery,
		Message: fmt.Sprintf("cannot discover tests under %s", root),
		Cause:   cause,
	}
}

// Launch creates an error for a toolchain that could not be started for one artifact.
func Launch(artifact string, cause error) *HarnessError {
	return &HarnessError{
		Kind:     KindLaunch,
		Message:  "failed to launch toolchain",
		Artifact: artifact,
		Cause:    cause,
	}
}

// Parse creates an error for a toolchain report whose test count cannot be read.
func Parse(artifact, message string) *HarnessError {
	return &HarnessError{
		Kind:     KindParse,
		Message:  message,
		Artifact: artifact,
	}
}

// Environment creates a new environment error.
func Environment(message string) *HarnessError {
	return &HarnessError{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *HarnessError {
	return &HarnessError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// WithArtifact returns a copy of e attributed to the given artifact.
func (e *HarnessError) WithArtifact(artifact string) *HarnessError {
	c := *e
	c.Artifact = artifact
	return &c
}

// KindOf returns the kind of the first HarnessError in err's chain.
// Errors outside the taxonomy are runtime errors.
func KindOf(err error) ErrorKind {
	var he *HarnessError
	if stderrors.As(err, &he) {
		return he.Kind
	}
	return KindRuntime
}

// IsDiscovery reports whether err is a discovery error.
func IsDiscovery(err error) bool {
	return err != nil && KindOf(err) == KindDiscovery
}

// IsLaunch reports whether err is a launch error.
func IsLaunch(err error) bool {
	return err != nil && KindOf(err) == KindLaunch
}

// IsParse reports whether err is a parse error.
func IsParse(err error) bool {
	return err != nil && KindOf(err) == KindParse
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var he *HarnessError
	if stderrors.As(err, &he) {
		return he.ExitCode()
	}
	return ExitFailure
}
