// Package prober defines the abstraction used to check the reachability of a
// single URL.
package prober

import (
	"context"
	"sitemapcheck/pkg/domain"
)

// Prober checks one URL and always produces a result: failures are reported
// inside the returned domain.CheckResult, never as a separate error.
// Implementations must be safe for concurrent use.
//
//go:generate mockgen -package mockprober -source=interface.go -destination=mock/mockprober.go *
type Prober interface {
	// Probe checks URL and returns its outcome.
	Probe(ctx context.Context, URL string) domain.CheckResult
}
