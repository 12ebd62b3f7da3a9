package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberjson/runtests/internal/aggregate"
	"github.com/emberjson/runtests/internal/discover"
	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/model"
	"github.com/emberjson/runtests/internal/output"
	"github.com/emberjson/runtests/internal/toolchain"
)

func outputFor(stdout, stderr io.Writer) *output.Writer {
	return output.NewWithWriters(stdout, stderr, false)
}

// shellToolchain runs each artifact as a POSIX shell script.
func shellToolchain(t *testing.T) *toolchain.Toolchain {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	return &toolchain.Toolchain{
		Name:   "sh",
		Binary: "sh",
		Suffix: ".mojo",
		Env:    map[string]string{"RUNTESTS_FAKE": "from-toolchain"},
	}
}

func writeScript(t *testing.T, dir, name, body string) model.Artifact {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return model.Artifact{Path: p, Rel: name}
}

func TestProcessExecutor_CapturesStreams(t *testing.T) {
	t.Parallel()
	tc := shellToolchain(t)
	dir := t.TempDir()
	a := writeScript(t, dir, "a.mojo", `echo "Ran 3 tests"; echo "$RUNTESTS_FAKE"; echo oops >&2; exit 3`)

	res, err := NewProcessExecutor(tc, dir, nil).Execute(context.Background(), a)
	require.NoError(t, err)

	assert.True(t, res.Launched())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "Ran 3 tests\nfrom-toolchain\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, a, res.Artifact)
	assert.False(t, res.TimedOut)
}

func TestProcessExecutor_WorkingDirectory(t *testing.T) {
	t.Parallel()
	tc := shellToolchain(t)
	dir := t.TempDir()
	workdir := t.TempDir()
	a := writeScript(t, dir, "pwd.mojo", `pwd`)

	res, err := NewProcessExecutor(tc, workdir, nil).Execute(context.Background(), a)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(workdir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(res.Stdout))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestProcessExecutor_LaunchError(t *testing.T) {
	t.Parallel()
	tc := &toolchain.Toolchain{Name: "missing", Binary: "runtests-no-such-toolchain"}
	a := model.Artifact{Path: "a.mojo", Rel: "a.mojo"}

	var stderr bytes.Buffer
	w := outputFor(io.Discard, &stderr)
	w.SetVerbose(true)

	res, err := NewProcessExecutor(tc, "", w).Execute(context.Background(), a)
	require.Error(t, err)
	assert.True(t, errors.IsLaunch(err))
	assert.False(t, res.Launched())
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, stderr.String(), "running: runtests-no-such-toolchain a.mojo")
}

func TestProcessExecutor_BackgroundChildHoldsStdout(t *testing.T) {
	t.Parallel()
	tc := shellToolchain(t)
	dir := t.TempDir()
	a := writeScript(t, dir, "bg.mojo", "echo 'Ran 3 tests'\nsleep 5 &\nexit 0\n")

	e := NewProcessExecutor(tc, dir, nil)
	e.waitDelay = 100 * time.Millisecond

	start := time.Now()
	res, err := e.Execute(context.Background(), a)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.True(t, res.Launched())
	assert.Nil(t, res.LaunchErr)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "Ran 3 tests\n", res.Stdout)
	assert.False(t, res.TimedOut)
}

func TestProcessExecutor_Timeout(t *testing.T) {
	t.Parallel()
	tc := shellToolchain(t)
	dir := t.TempDir()
	writeScript(t, dir, "fast.mojo", `echo "Ran 1 test"`)
	writeScript(t, dir, "slow.mojo", `exec sleep 30`)

	var stdout, stderr bytes.Buffer
	agg := aggregate.New(outputFor(&stdout, &stderr))
	seq, err := discover.Discover(dir, discover.Options{})
	require.NoError(t, err)

	start := time.Now()
	report, err := New(NewProcessExecutor(tc, dir, nil), agg, Options{Timeout: 200 * time.Millisecond}, nil).
		Run(context.Background(), seq)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 10*time.Second)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, filepath.Join(dir, "slow.mojo"), report.Failed[0].Path)
	assert.Contains(t, report.Failed[0].Reason, "timed out")
	assert.Equal(t, 1, report.Total)
}

func TestRun_EndToEndWithShell(t *testing.T) {
	t.Parallel()
	tc := shellToolchain(t)
	dir := t.TempDir()
	writeScript(t, dir, "a_test.mojo", `echo "Ran 3 tests"`)
	writeScript(t, dir, "b_test.mojo", `echo "Ran 2 tests"; echo "FAIL: assertion"`)
	writeScript(t, dir, "c_test.mojo", `echo "Ran 1 tests"; echo "boom" >&2; exit 1`)
	writeScript(t, dir, "notes.txt", `exit 1`)

	var stdout, stderr bytes.Buffer
	w := outputFor(&stdout, &stderr)
	agg := aggregate.New(w)
	seq, err := discover.Discover(dir, discover.Options{})
	require.NoError(t, err)

	report, err := New(NewProcessExecutor(tc, dir, nil), agg, Options{}, nil).Run(context.Background(), seq)
	require.NoError(t, err)
	report.Print(w)

	assert.Equal(t,
		"Ran 3 tests\nRan 2 tests\nFAIL: assertion\nRan 1 tests\nFailed tests\n"+
			filepath.Join(dir, "b_test.mojo")+"\n"+filepath.Join(dir, "c_test.mojo")+"\n",
		stdout.String())
	assert.Equal(t, "boom\n", stderr.String())
	assert.Equal(t, errors.ExitFailure, report.ExitCode())
}
