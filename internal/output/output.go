// Package output provides formatted console output for the harness.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Writer handles CLI output formatting.
// Progress and summaries go to out; diagnostics and warnings go to err.
type Writer struct {
	out     io.Writer
	err     io.Writer
	color   bool
	quiet   bool
	verbose bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(os.Stdout),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// SetVerbose enables or disables debug output.
func (w *Writer) SetVerbose(verbose bool) {
	w.verbose = verbose
}

// SetColor forces colour on or off.
func (w *Writer) SetColor(color bool) {
	w.color = color
}

// Out returns the stdout writer.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Debug prints a diagnostic line to stderr when verbose mode is on.
func (w *Writer) Debug(format string, args ...interface{}) {
	if !w.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%s[debug]%s %s", dim, reset, msg)
	} else {
		w.Errorln("[debug] %s", msg)
	}
}

// Warning prints a warning message.
func (w *Writer) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%swarning:%s %s", yellow, reset, msg)
	} else {
		w.Errorln("warning: %s", msg)
	}
}

// ErrorPrefix prints an error message with the runtests prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%sruntests:%s %s", red, reset, msg)
	} else {
		w.Errorln("runtests: %s", msg)
	}
}

// ArtifactStart prints the header for one artifact run in verbose mode.
// It goes to stderr so the echoed toolchain stdout stays untouched.
func (w *Writer) ArtifactStart(path string) {
	if !w.verbose || w.quiet {
		return
	}
	label := fmt.Sprintf("─── %s ───", path)
	if w.color {
		w.Errorln("%s%s%s", bold+cyan, label, reset)
	} else {
		w.Errorln("%s", label)
	}
}

// ArtifactFailed prints a one-line failure notice for an artifact.
func (w *Writer) ArtifactFailed(path, reason string) {
	if w.color {
		w.Errorln("%s✗ %s%s: %s", red, path, reset, reason)
	} else {
		w.Errorln("x %s: %s", path, reason)
	}
}

// PassthroughStdout echoes captured toolchain stdout verbatim.
func (w *Writer) PassthroughStdout(text string) {
	passthrough(w.out, text)
}

// PassthroughStderr echoes captured toolchain stderr verbatim.
func (w *Writer) PassthroughStderr(text string) {
	passthrough(w.err, text)
}

func passthrough(dst io.Writer, text string) {
	if text == "" {
		return
	}
	io.WriteString(dst, text)
	if !strings.HasSuffix(text, "\n") {
		io.WriteString(dst, "\n")
	}
}

// FailedList prints the failed artifact list, one path per line.
func (w *Writer) FailedList(paths []string) {
	if w.color {
		w.Println("%sFailed tests%s", bold+red, reset)
	} else {
		w.Println("Failed tests")
	}
	for _, p := range paths {
		w.Println("%s", p)
	}
}

// TotalCount prints the accumulated test count of an all-pass run.
func (w *Writer) TotalCount(total int) {
	if w.color {
		w.Println("%s%d%s", green, total, reset)
	} else {
		w.Println("%d", total)
	}
}

// isTerminal returns true if f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)
