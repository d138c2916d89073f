package main

import (
	"fmt"
	"io"
	"sitemapcheck/internal/checker"
	"sitemapcheck/pkg/domain"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressObserver renders checker progress for one sitemap as a progress
// bar. Retry sweeps grow the bar by the number of re-checked URLs.
type progressObserver struct {
	name string
	bar  *progressbar.ProgressBar
}

var _ checker.Observer = (*progressObserver)(nil)

func newProgressObserver(w io.Writer, sm domain.Sitemap) *progressObserver {
	return &progressObserver{
		name: sm.Name,
		bar: progressbar.NewOptions(len(sm.URLs),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(sm.Name),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("URLs"),
			progressbar.OptionShowIts(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(w) }),
		),
	}
}

func (p *progressObserver) CheckCompleted(domain.CheckResult) {
	_ = p.bar.Add(1)
}

func (p *progressObserver) RetryStarted(attempt, count int) {
	p.bar.ChangeMax(p.bar.GetMax() + count)
	p.bar.Describe(fmt.Sprintf("%s (retry %d)", p.name, attempt+1))
}

func (p *progressObserver) Finish() {
	_ = p.bar.Finish()
}
