// Package checker checks lists of URLs with a prober.Prober and re-checks
// transient failures in bounded retry sweeps.
package checker

import (
	"context"
	"fmt"
	"sitemapcheck/internal/worker"
	"sitemapcheck/pkg/domain"
	"sitemapcheck/pkg/logger"
	"sitemapcheck/pkg/metrics"
	"sitemapcheck/pkg/prober"
	"slices"
	"time"

	"go.uber.org/zap"
)

// DefaultRetryableStatusCodes lists the HTTP statuses retried when no explicit
// list is configured.
var DefaultRetryableStatusCodes = []int{503} //nolint: gochecknoglobals

// Options configure how transient failures are retried.
type Options struct {
	// MaxRetries is the number of retry sweeps after the initial sweep.
	MaxRetries int
	// RetryDelay is waited before every retry sweep.
	RetryDelay time.Duration
	// RetryableStatusCodes are HTTP statuses considered transient. When empty,
	// DefaultRetryableStatusCodes is used.
	RetryableStatusCodes []int
}

// Observer receives progress notifications. Calls are never concurrent.
type Observer interface {
	// CheckCompleted is called once for every finished check, in every sweep.
	CheckCompleted(result domain.CheckResult)
	// RetryStarted is called before a retry sweep over count URLs begins.
	// attempt is the zero-based index of the sweep that produced the failures.
	RetryStarted(attempt, count int)
}

// Checker runs checks through a worker.Pool.
type Checker struct {
	prober  prober.Prober
	pool    *worker.Pool
	options Options
	metrics *metrics.Metrics
}

// New creates a Checker. m may be nil.
func New(p prober.Prober, pool *worker.Pool, opts Options, m *metrics.Metrics) *Checker {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if len(opts.RetryableStatusCodes) == 0 {
		opts.RetryableStatusCodes = DefaultRetryableStatusCodes
	}

	return &Checker{prober: p, pool: pool, options: opts, metrics: m}
}

// IsRetryable reports whether result is a transient failure: a status from
// the configured allow-list, or no response at all because of a timeout or a
// reset connection.
func (c *Checker) IsRetryable(result domain.CheckResult) bool {
	if result.StatusCode == 0 {
		return result.Failure == domain.FailureTimeout || result.Failure == domain.FailureConnectionReset
	}

	return slices.Contains(c.options.RetryableStatusCodes, result.StatusCode)
}

// CheckURLs checks every URL once, then re-checks the retryable subset up to
// MaxRetries times. The returned slice holds the latest outcome for each URL,
// aligned with urls. obs may be nil.
func (c *Checker) CheckURLs(ctx context.Context, urls []string, obs Observer) ([]domain.CheckResult, error) {
	results, err := c.sweep(ctx, urls, obs)
	if err != nil {
		return results, err
	}

	for attempt := 0; attempt < c.options.MaxRetries; attempt++ {
		var pending []int
		for i, res := range results {
			if c.IsRetryable(res) {
				pending = append(pending, i)
			}
		}
		if len(pending) == 0 {
			break
		}

		if obs != nil {
			obs.RetryStarted(attempt, len(pending))
		}
		c.metrics.ObserveRetrySweep(len(pending))
		logger.Info(ctx, "retrying transient failures",
			zap.Int("attempt", attempt+1), zap.Int("count", len(pending)))

		if err := sleep(ctx, c.options.RetryDelay); err != nil {
			return results, fmt.Errorf("could not wait before retry: %w", err)
		}

		subset := make([]string, len(pending))
		for j, i := range pending {
			subset[j] = urls[i]
		}

		retried, err := c.sweep(ctx, subset, obs)
		for j, i := range pending {
			// units that were never dispatched keep their previous outcome.
			if retried[j].URL != "" {
				results[i] = retried[j]
			}
		}
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

// CheckSitemap checks every entry of doc and pairs the results with it.
func (c *Checker) CheckSitemap(ctx context.Context, doc domain.Sitemap, obs Observer) (domain.Report, error) {
	ctx = logger.WithFields(ctx, zap.String("sitemap", doc.Name))

	results, err := c.CheckURLs(ctx, doc.Locs(), obs)
	if err != nil {
		return domain.Report{}, fmt.Errorf("could not check sitemap %s: %w", doc.Name, err)
	}

	return domain.Report{Sitemap: doc, Results: results}, nil
}

func (c *Checker) sweep(ctx context.Context, urls []string, obs Observer) ([]domain.CheckResult, error) {
	results, err := worker.Map(ctx, c.pool, urls, c.prober.Probe, func(res domain.CheckResult) {
		c.metrics.ObserveCheck(res.StatusClass())
		if obs != nil {
			obs.CheckCompleted(res)
		}
	})
	if err != nil {
		return results, fmt.Errorf("could not check URLs: %w", err)
	}

	return results, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
