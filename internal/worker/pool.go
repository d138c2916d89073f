// Package worker runs independent units of work under a global concurrency cap
// with optional pacing between dispatches.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const meterName = "sitemapcheck/internal/worker"

// Options configure a Pool.
type Options struct {
	// Concurrency is the maximum number of units in flight. Values below 1 are
	// treated as 1.
	Concurrency int
	// Delay is the minimum spacing between two successive dispatches. Zero
	// disables pacing.
	Delay time.Duration
	// MeterProvider supplies the instruments used to export pool activity. A
	// noop provider is used when nil.
	MeterProvider metric.MeterProvider
}

// Pool holds the limits shared by every Map call made with it. The limits are
// per call: two concurrent Map calls on the same Pool each get Concurrency
// slots.
type Pool struct {
	options    Options
	inflight   metric.Int64UpDownCounter
	dispatched metric.Int64Counter
}

// New creates a Pool from opts.
func New(opts Options) (*Pool, error) {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = noop.NewMeterProvider()
	}

	meter := opts.MeterProvider.Meter(meterName)
	inflight, err := meter.Int64UpDownCounter("worker.inflight",
		metric.WithDescription("Units of work currently running."))
	if err != nil {
		return nil, fmt.Errorf("could not create inflight instrument: %w", err)
	}
	dispatched, err := meter.Int64Counter("worker.dispatched",
		metric.WithDescription("Units of work dispatched."))
	if err != nil {
		return nil, fmt.Errorf("could not create dispatched instrument: %w", err)
	}

	return &Pool{options: opts, inflight: inflight, dispatched: dispatched}, nil
}

// Concurrency returns the configured cap.
func (p *Pool) Concurrency() int { return p.options.Concurrency }

func (p *Pool) limiter() *rate.Limiter {
	if p.options.Delay == 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	return rate.NewLimiter(rate.Every(p.options.Delay), 1)
}

// Map applies fn to every item with at most p.Concurrency() calls in flight and
// returns the results in input order. onDone, when non-nil, is called exactly
// once per completed unit; calls are serialized.
//
// When ctx is cancelled no further units are dispatched, the units already
// running are awaited and ctx.Err() is returned together with the partial
// results (zero values for units that never ran).
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) R, onDone func(R)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	var (
		sem     = semaphore.NewWeighted(int64(p.options.Concurrency))
		limiter = p.limiter()
		wg      sync.WaitGroup
		doneMu  sync.Mutex
		err     error
	)

	for i, item := range items {
		// the slot is taken first so pacing spaces out real dispatches rather
		// than goroutines parked on the semaphore.
		if err = sem.Acquire(ctx, 1); err != nil {
			break
		}
		if err = limiter.Wait(ctx); err != nil {
			sem.Release(1)

			break
		}

		p.inflight.Add(ctx, 1)
		p.dispatched.Add(ctx, 1)
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer sem.Release(1)
			defer p.inflight.Add(context.WithoutCancel(ctx), -1)

			res := fn(ctx, item)
			results[i] = res

			if onDone != nil {
				doneMu.Lock()
				onDone(res)
				doneMu.Unlock()
			}
		}(i, item)
	}

	wg.Wait()
	if err != nil {
		return results, fmt.Errorf("could not dispatch all units: %w", ctx.Err())
	}

	return results, nil
}
