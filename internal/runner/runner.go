// Package runner executes discovered test artifacts and feeds their results
// to the aggregator in discovery order.
package runner

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emberjson/runtests/internal/aggregate"
	"github.com/emberjson/runtests/internal/discover"
	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/model"
	"github.com/emberjson/runtests/internal/output"
)

const (
	// minParallelWorkers ensures at least one worker even if the requested count is 0.
	minParallelWorkers = 1

	// maxParallelWorkers caps the pool; each worker holds one toolchain subprocess.
	maxParallelWorkers = 256
)

// Options configures execution behavior.
type Options struct {
	// Parallel is the worker count. 0 or 1 runs strictly sequentially.
	Parallel int

	// Timeout bounds each run. Zero disables the timeout.
	Timeout time.Duration
}

// Runner drives one harness run: discover, execute, aggregate.
type Runner struct {
	exec Executor
	agg  *aggregate.Aggregator
	opts Options
	out  *output.Writer
}

// New creates a new Runner. out may be nil.
func New(exec Executor, agg *aggregate.Aggregator, opts Options, out *output.Writer) *Runner {
	return &Runner{exec: exec, agg: agg, opts: opts, out: out}
}

// Run executes every artifact in seq and returns the finalized report.
// A discovery error from the sequence, a parse error from the aggregator, or
// cancellation of ctx stops the run and is returned with a nil report.
func (r *Runner) Run(ctx context.Context, seq *discover.Sequence) (*aggregate.Report, error) {
	var err error
	if workers := r.workers(); workers > 1 {
		err = r.runParallel(ctx, seq, workers)
	} else {
		err = r.runSequential(ctx, seq)
	}
	if err != nil {
		return nil, err
	}
	return r.agg.Finalize(), nil
}

// runSequential executes artifacts one at a time in discovery order.
func (r *Runner) runSequential(ctx context.Context, seq *discover.Sequence) error {
	for a, err := range seq.All() {
		if err != nil {
			return err
		}
		// Early exit if context is canceled before starting the next artifact
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res, err := r.execute(ctx, a)
		if err != nil {
			return err
		}
		// A run killed by cancellation has no meaningful report.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.agg.Record(res); err != nil {
			return err
		}
	}
	return nil
}

// runParallel collects the sequence, executes artifacts on a bounded worker pool,
// and records results in discovery order through a reorder buffer. Console output
// and the failed list are therefore identical to a sequential run.
func (r *Runner) runParallel(ctx context.Context, seq *discover.Sequence, workers int) error {
	artifacts, err := seq.Collect()
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		return nil
	}
	workers = min(workers, len(artifacts))
	r.debug("running %d artifacts on %d workers", len(artifacts), workers)

	// Cancelled on the first fatal error so that queued artifacts never start.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type slot struct {
		res model.RunResult
		err error
	}
	// One buffered channel per artifact: workers never block on delivery.
	slots := make([]chan slot, len(artifacts))
	for i := range slots {
		slots[i] = make(chan slot, 1)
	}

	var g errgroup.Group
	g.SetLimit(workers)

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		for i, a := range artifacts {
			if ctx.Err() != nil {
				return
			}
			g.Go(func() error {
				res, err := r.execute(ctx, a)
				slots[i] <- slot{res: res, err: err}
				return nil
			})
		}
	}()

	var runErr error
	for i := range artifacts {
		var s slot
		select {
		case s = <-slots[i]:
		case <-ctx.Done():
		}
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		if s.err != nil {
			runErr = s.err
			break
		}
		if err := r.agg.Record(s.res); err != nil {
			runErr = err
			break
		}
	}

	cancel()
	<-dispatched
	_ = g.Wait()

	return runErr
}

// execute runs one artifact, applying the per-run timeout. Launch errors are
// folded into the result so the aggregator records them as failures; any other
// error is fatal.
func (r *Runner) execute(ctx context.Context, a model.Artifact) (model.RunResult, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	res, err := r.exec.Execute(ctx, a)
	if err != nil {
		if !errors.IsLaunch(err) {
			return res, err
		}
		res.Artifact = a
		if res.LaunchErr == nil {
			res.LaunchErr = err
		}
	}
	return res, nil
}

// workers returns the bounded worker count for this run.
func (r *Runner) workers() int {
	n := r.opts.Parallel
	if n < minParallelWorkers {
		return minParallelWorkers
	}
	return min(n, maxParallelWorkers)
}

func (r *Runner) debug(format string, args ...interface{}) {
	if r.out != nil {
		r.out.Debug(format, args...)
	}
}

// DefaultWorkerCount returns the worker count suggested for --parallel=0,
// based on the CPU count.
func DefaultWorkerCount() int {
	return max(minParallelWorkers, min(runtime.NumCPU(), maxParallelWorkers))
}
