package api

import (
	"context"
	"time"

	"github.com/lemonberrylabs/ego/pkg/pipeline"
	"github.com/lemonberrylabs/ego/pkg/store"
)

// DefaultRunTimeout bounds a single hosted run.
const DefaultRunTimeout = 10 * time.Second

// Executor runs programs and records them in a store. It is shared by the
// HTTP and gRPC hosts.
type Executor struct {
	store   *store.Store
	opts    pipeline.Options
	timeout time.Duration
}

// NewExecutor creates an executor. Print output is always captured, never
// written to the host's stdout.
func NewExecutor(s *store.Store, maxSteps, maxCallDepth int) *Executor {
	return &Executor{
		store: s,
		opts: pipeline.Options{
			MaxSteps:     maxSteps,
			MaxCallDepth: maxCallDepth,
		},
		timeout: DefaultRunTimeout,
	}
}

// Store returns the store runs are recorded in.
func (e *Executor) Store() *store.Store {
	return e.store
}

// Execute runs source to completion and returns the finished run. Program
// errors fail the run; they are not returned as errors.
func (e *Executor) Execute(ctx context.Context, source string) (*store.Run, error) {
	run := e.store.CreateRun(source)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := pipeline.Run(ctx, source, e.opts)
	if err != nil {
		if failErr := e.store.FailRun(run.ID, result.Output, result.Steps, err); failErr != nil {
			return nil, failErr
		}
	} else if err := e.store.CompleteRun(run.ID, result.Output, result.Steps); err != nil {
		return nil, err
	}
	return e.store.GetRun(run.ID)
}
