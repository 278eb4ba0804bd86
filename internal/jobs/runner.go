package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/siakad/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
}

func New(ctx context.Context) *Runner { return &Runner{ctx: ctx} }

// Every runs fn on each tick until the runner's context is done.
// A panic inside fn is captured and counted as a job error.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.run(name, fn)
			}
		}
	}()
}

func (r *Runner) run(name string, fn Job) {
	start := time.Now()
	result := resultOK
	defer func() {
		if rec := recover(); rec != nil {
			observability.CaptureErr(fmt.Errorf("panic in job %s: %v", name, rec))
			result = resultPanic
		}
		jobRuns.WithLabelValues(name, result).Inc()
		jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if result == resultOK {
			jobLastSuccess.WithLabelValues(name).SetToCurrentTime()
		}
	}()
	if err := fn(r.ctx); err != nil {
		result = resultError
		observability.CaptureErr(fmt.Errorf("job %s: %w", name, err))
	}
}
