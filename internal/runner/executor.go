package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/model"
	"github.com/emberjson/runtests/internal/output"
	"github.com/emberjson/runtests/internal/toolchain"
)

// Executor runs one artifact to completion.
// A returned error is always a launch error; the result then has LaunchErr set.
type Executor interface {
	Execute(ctx context.Context, a model.Artifact) (model.RunResult, error)
}

// defaultWaitDelay bounds how long Wait blocks on output pipes after the
// process exits or is killed, in case a grandchild still holds them open.
const defaultWaitDelay = 5 * time.Second

// ProcessExecutor launches the toolchain as a subprocess per artifact.
type ProcessExecutor struct {
	tc        *toolchain.Toolchain
	dir       string
	out       *output.Writer
	waitDelay time.Duration
}

// NewProcessExecutor creates an executor for tc running in dir.
// An empty dir means the current working directory. out may be nil.
func NewProcessExecutor(tc *toolchain.Toolchain, dir string, out *output.Writer) *ProcessExecutor {
	return &ProcessExecutor{tc: tc, dir: dir, out: out, waitDelay: defaultWaitDelay}
}

// Execute runs <binary> <flags...> <artifact> and waits for it to exit.
// Stdout and stderr are captured separately. A non-zero exit is reported in
// the result, not as an error.
func (e *ProcessExecutor) Execute(ctx context.Context, a model.Artifact) (model.RunResult, error) {
	argv := e.tc.Command(e.argPath(a.Path))
	res := model.RunResult{Artifact: a}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.dir
	cmd.Env = append(os.Environ(), e.tc.EnvList()...)
	cmd.WaitDelay = e.waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if e.out != nil {
		e.out.Debug("running: %s", strings.Join(argv, " "))
	}

	start := time.Now()
	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err == nil {
		return res, nil
	}

	if cmd.ProcessState == nil {
		// The process never started.
		launchErr := errors.Launch(a.Path, err)
		res.ExitCode = -1
		res.LaunchErr = launchErr
		return res, launchErr
	}

	// The process ran. Wait may still fail with exec.ErrWaitDelay when a
	// background child kept the output pipes open; what was captured stands.
	res.ExitCode = cmd.ProcessState.ExitCode()
	if ctx.Err() != nil {
		res.TimedOut = stderrors.Is(ctx.Err(), context.DeadlineExceeded)
		res.ExitCode = -1
	}
	if stderrors.Is(err, exec.ErrWaitDelay) && e.out != nil {
		e.out.Debug("%s: output pipes still open after exit, keeping captured output", a.Path)
	}
	return res, nil
}

// argPath anchors a relative artifact path to the harness's working directory,
// since the toolchain itself runs in e.dir.
func (e *ProcessExecutor) argPath(p string) string {
	if e.dir == "" || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
