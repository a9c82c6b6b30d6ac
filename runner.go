package aientity

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultRunner returns a runner allowing one task per CPU.
func DefaultRunner(ctx context.Context) Runner {
	return newErrGroupRunner(ctx, runtime.NumCPU())
}

// NewLimitedRunner creates a runner with bounded concurrency.
func NewLimitedRunner(ctx context.Context, maxConcurrency int) Runner {
	return newErrGroupRunner(ctx, maxConcurrency)
}

// errGroupRunner cancels its shared context on the first failing task, so
// sibling extractions stop early.
type errGroupRunner struct {
	ctx context.Context // derived ctx shared by all tasks
	eg  *errgroup.Group
}

func newErrGroupRunner(parent context.Context, maxConcurrency int) *errGroupRunner {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	eg, ctx := errgroup.WithContext(parent)
	eg.SetLimit(maxConcurrency)
	return &errGroupRunner{ctx: ctx, eg: eg}
}

func (r *errGroupRunner) Go(fn func() error) { r.eg.Go(fn) }

func (r *errGroupRunner) Wait() error { return r.eg.Wait() }

// runnerContext returns the context tasks scheduled on r should use.
func runnerContext(r Runner, fallback context.Context) context.Context {
	if d, ok := r.(*errGroupRunner); ok {
		return d.ctx
	}
	return fallback
}
