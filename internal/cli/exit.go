package cli

import (
	stderrors "errors"
	"fmt"

	"github.com/emberjson/runtests/internal/errors"
)

// ExitError carries an exit code out of a command.
// A silent ExitError ends the process without printing a diagnostic,
// for outcomes the command has already reported (failed tests).
type ExitError struct {
	Code    int
	Message string
	Err     error
	Silent  bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// silentExit ends the command with code after output has already been written.
func silentExit(code int) *ExitError {
	return &ExitError{Code: code, Silent: true}
}

// GetExitCode extracts the exit code from an error: an ExitError's own code,
// otherwise the code of the harness error kind.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}
	return errors.GetExitCode(err)
}

// isSilent reports whether err should end the process without a diagnostic.
func isSilent(err error) bool {
	var exitErr *ExitError
	return stderrors.As(err, &exitErr) && exitErr.Silent
}
