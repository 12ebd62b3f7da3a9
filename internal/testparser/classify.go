package testparser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/emberjson/runtests/internal/errors"
)

const (
	// FailureMarker flags a failed assertion anywhere in stdout, even with a zero exit code.
	FailureMarker = "FAIL"

	// CountTokenIndex is the whitespace-delimited token of stdout holding the test count,
	// as in "Ran 42 tests".
	CountTokenIndex = 1

	// maxReasonLen keeps failure reasons to one terminal line in summaries.
	maxReasonLen = 80
)

// Classify derives the verdict and test count of a run from its stdout and exit code.
//
// A run fails if its exit code is non-zero, and independently if stdout contains
// FailureMarker. The count is extracted whatever the verdict; a report whose count
// cannot be read is a parse error, which callers must treat as fatal.
func Classify(stdout string, exitCode int) (Outcome, error) {
	outcome := Outcome{Verdict: Pass}

	var reasons []string
	if exitCode != 0 {
		reasons = append(reasons, fmt.Sprintf("exit code %d", exitCode))
	}
	if strings.Contains(stdout, FailureMarker) {
		reasons = append(reasons, fmt.Sprintf("%s marker: %s", FailureMarker, FailureLine(stdout)))
	}
	if len(reasons) > 0 {
		outcome.Verdict = Fail
		outcome.Reason = strings.Join(reasons, "; ")
	}

	count, err := ExtractCount(stdout)
	if err != nil {
		return outcome, err
	}
	outcome.Count = count

	return outcome, nil
}

// ExtractCount parses the test count from the second whitespace-delimited token of stdout.
func ExtractCount(stdout string) (int, error) {
	fields := strings.Fields(stdout)
	if len(fields) <= CountTokenIndex {
		return 0, errors.Parse("", fmt.Sprintf("report has %d token(s), need at least %d to read the test count", len(fields), CountTokenIndex+1))
	}

	token := fields[CountTokenIndex]
	count, err := strconv.Atoi(token)
	if err != nil {
		return 0, errors.Parse("", fmt.Sprintf("test count token %q is not an integer", token))
	}
	if count < 0 {
		return 0, errors.Parse("", fmt.Sprintf("test count %d is negative", count))
	}

	return count, nil
}

// FailureLine returns the first stdout line containing FailureMarker, trimmed and
// truncated for display. It returns "" when there is no such line.
func FailureLine(stdout string) string {
	for _, line := range strings.Split(stdout, "\n") {
		if strings.Contains(line, FailureMarker) {
			line = strings.TrimSpace(line)
			return truncate(line, maxReasonLen)
		}
	}
	return ""
}

// truncate shortens s to at most n bytes, ending in "..." and never splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
