package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diogo-arista/arista-tac-utilities/internal/catalog"
)

// Run is one complete pass over the command battery. Results keep the
// battery order regardless of how the commands were scheduled.
type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Results   []Result      `json:"results"`
}

// ByKey returns the result for a catalog key. A key that never ran comes
// back as a failed Result so parsers stay total.
func (r *Run) ByKey(key string) Result {
	for _, res := range r.Results {
		if res.Key == key {
			return res
		}
	}
	return Result{
		Key:    key,
		Reason: FailTransport,
		Err:    fmt.Sprintf("command %q was not collected", key),
	}
}

// Failures counts results that produced no usable output.
func (r *Run) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// Collector drives the battery through an executor.
type Collector struct {
	executor *Executor
	specs    []catalog.Spec
	workers  int
	logger   *zap.Logger
	now      func() time.Time
}

// NewCollector uses the given battery. workers = 1 keeps collection
// strictly sequential, which is the default because an EOS control plane
// under stress is exactly what this tool gets pointed at.
func NewCollector(executor *Executor, specs []catalog.Spec, workers int, logger *zap.Logger) *Collector {
	if workers < 1 {
		workers = 1
	}
	return &Collector{
		executor: executor,
		specs:    specs,
		workers:  workers,
		logger:   logger.Named("collect"),
		now:      time.Now,
	}
}

// Collect runs every command in the battery. Failures never stop the
// pass; the returned Run always has one Result per spec, in battery
// order.
func (c *Collector) Collect(ctx context.Context) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: c.now().UTC(),
		Results:   make([]Result, len(c.specs)),
	}
	c.logger.Info("collection started",
		zap.String("run_id", run.ID),
		zap.Int("commands", len(c.specs)),
		zap.Int("workers", c.workers))

	if c.workers == 1 {
		for i, spec := range c.specs {
			run.Results[i] = c.executor.Execute(ctx, spec)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.workers)
		for i, spec := range c.specs {
			g.Go(func() error {
				run.Results[i] = c.executor.Execute(gctx, spec)
				return nil
			})
		}
		// Workers never return errors; failures live in the results.
		_ = g.Wait()
	}

	run.Duration = c.now().UTC().Sub(run.StartedAt)
	c.logger.Info("collection finished",
		zap.String("run_id", run.ID),
		zap.Duration("duration", run.Duration),
		zap.Int("failures", run.Failures()))
	return run
}
