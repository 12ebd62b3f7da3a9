// Package mocks provides shared test doubles for runtests packages.
package mocks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/model"
)

// Reply is the canned outcome of one artifact.
type Reply struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	LaunchErr error
	Delay     time.Duration // Simulated run time; honours context cancellation
}

// Executor implements runner.Executor for testing.
// Use NewExecutor() to create instances with a fluent builder API.
// Artifacts without a reply pass with "Ran 1 test".
type Executor struct {
	replies map[string]Reply

	// Execution tracking (thread-safe)
	execCount     int32
	running       int32
	maxConcurrent int32
	mu            sync.Mutex
	execOrder     []string
}

// NewExecutor creates a new mock executor.
func NewExecutor() *Executor {
	return &Executor{replies: make(map[string]Reply)}
}

// WithReply sets the reply for the artifact with the given relative path.
func (m *Executor) WithReply(rel string, r Reply) *Executor {
	m.replies[rel] = r
	return m
}

// WithOutput sets stdout and exit code for the artifact with the given relative path.
func (m *Executor) WithOutput(rel, stdout string, exitCode int) *Executor {
	return m.WithReply(rel, Reply{Stdout: stdout, ExitCode: exitCode})
}

// WithLaunchError makes the artifact with the given relative path fail to launch.
func (m *Executor) WithLaunchError(rel string, cause error) *Executor {
	return m.WithReply(rel, Reply{LaunchErr: cause})
}

// Execute implements runner.Executor.
func (m *Executor) Execute(ctx context.Context, a model.Artifact) (model.RunResult, error) {
	atomic.AddInt32(&m.execCount, 1)
	m.mu.Lock()
	m.execOrder = append(m.execOrder, a.Rel)
	m.mu.Unlock()

	n := atomic.AddInt32(&m.running, 1)
	defer atomic.AddInt32(&m.running, -1)
	for {
		peak := atomic.LoadInt32(&m.maxConcurrent)
		if n <= peak || atomic.CompareAndSwapInt32(&m.maxConcurrent, peak, n) {
			break
		}
	}

	r, ok := m.replies[a.Rel]
	if !ok {
		r = Reply{Stdout: "Ran 1 test\n"}
	}

	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return model.RunResult{Artifact: a, ExitCode: -1, Duration: r.Delay}, nil
		}
	}

	if r.LaunchErr != nil {
		err := errors.Launch(a.Path, r.LaunchErr)
		return model.RunResult{Artifact: a, ExitCode: -1, LaunchErr: err}, err
	}

	return model.RunResult{
		Artifact: a,
		ExitCode: r.ExitCode,
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
		Duration: r.Delay,
	}, nil
}

// Test inspection methods

// ExecCount returns the number of times Execute was called.
func (m *Executor) ExecCount() int32 {
	return atomic.LoadInt32(&m.execCount)
}

// MaxConcurrent returns the peak number of simultaneous Execute calls.
func (m *Executor) MaxConcurrent() int32 {
	return atomic.LoadInt32(&m.maxConcurrent)
}

// ExecOrder returns the relative paths in the order Execute was called.
func (m *Executor) ExecOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.execOrder))
	copy(result, m.execOrder)
	return result
}

// Reset clears execution tracking state.
func (m *Executor) Reset() {
	atomic.StoreInt32(&m.execCount, 0)
	atomic.StoreInt32(&m.maxConcurrent, 0)
	m.mu.Lock()
	m.execOrder = nil
	m.mu.Unlock()
}
