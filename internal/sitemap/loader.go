// Package sitemap fetches sitemap documents and resolves sitemap indexes into
// the leaf documents they reference.
package sitemap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sitemapcheck/pkg/domain"
	"sitemapcheck/pkg/logger"
	"sitemapcheck/pkg/metrics"
	"sitemapcheck/pkg/serrors"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Defaults applied by New to zero-valued Options fields.
const (
	DefaultMaxDepth    = 5
	DefaultConcurrency = 4
	DefaultMaxBytes    = 50 << 20
	DefaultTimeout     = 30 * time.Second
)

// Options configure a Loader.
type Options struct {
	// MaxDepth is how many levels of indexes may sit below the root document.
	MaxDepth int
	// Concurrency bounds the children of one index fetched at the same time.
	Concurrency int
	// MaxBytes bounds the (decompressed) size of a single document.
	MaxBytes int64
	// Timeout applies to each document download.
	Timeout time.Duration
	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// Loader downloads and parses sitemap trees.
type Loader struct {
	httpClient *http.Client
	options    Options
	metrics    *metrics.Metrics
}

// New creates a Loader. m may be nil.
func New(httpClient *http.Client, opts Options, m *metrics.Metrics) *Loader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &Loader{httpClient: httpClient, options: opts, metrics: m}
}

// Load fetches rootURL and returns the leaf documents it resolves to. A
// <urlset> yields exactly one document. A <sitemapindex> yields the documents
// of its children in declared order; children that fail are logged and
// skipped. Any failure of the root document itself is returned.
func (l *Loader) Load(ctx context.Context, rootURL string) ([]domain.Sitemap, error) {
	return l.load(ctx, rootURL, nil)
}

func (l *Loader) load(ctx context.Context, docURL string, ancestors []string) ([]domain.Sitemap, error) {
	sitemaps, outcome, err := l.resolve(ctx, docURL, ancestors)
	if err != nil {
		l.metrics.ObserveSitemap(metrics.OutcomeFailed)

		return nil, err
	}
	l.metrics.ObserveSitemap(outcome)

	return sitemaps, nil
}

func (l *Loader) resolve(ctx context.Context, docURL string, ancestors []string) ([]domain.Sitemap, string, error) {
	key, err := NormalizeURL(docURL)
	if err != nil {
		return nil, "", serrors.Wrap(serrors.ErrFetch, err, "invalid sitemap URL %s", docURL)
	}
	if slices.Contains(ancestors, key) {
		return nil, "", serrors.With(serrors.ErrCycle, "sitemap %s is one of its own ancestors", docURL)
	}
	if len(ancestors) > l.options.MaxDepth {
		return nil, "", serrors.With(serrors.ErrTooDeep,
			"sitemap %s is nested deeper than %d levels", docURL, l.options.MaxDepth)
	}

	data, err := l.fetch(ctx, docURL)
	if err != nil {
		return nil, "", err
	}

	doc, err := Parse(docURL, data)
	if err != nil {
		return nil, "", err
	}
	if doc.Kind == KindURLSet {
		return []domain.Sitemap{doc.Sitemap}, metrics.OutcomeLeaf, nil
	}

	logger.Debug(ctx, "resolving sitemap index", zap.String("url", docURL), zap.Int("children", len(doc.Children)))

	chain := append(slices.Clone(ancestors), key)
	children := make([][]domain.Sitemap, len(doc.Children))

	var g errgroup.Group
	g.SetLimit(l.options.Concurrency)
	for i, child := range doc.Children {
		g.Go(func() error {
			res, err := l.load(ctx, child, chain)
			if err != nil {
				fields := []zap.Field{zap.String("url", child), zap.Error(err)}
				if kind := serrors.KindOf(err); kind != nil {
					fields = append(fields, zap.String("kind", kind.Error()))
				}
				logger.Warn(ctx, "failed to fetch sub-sitemap", fields...)

				return nil
			}
			children[i] = res

			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("could not resolve sitemap index %s: %w", docURL, err)
	}

	return slices.Concat(children...), metrics.OutcomeIndex, nil
}

func (l *Loader) fetch(ctx context.Context, docURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.options.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrFetch, err, "invalid sitemap URL %s", docURL)
	}
	if l.options.UserAgent != "" {
		req.Header.Set("User-Agent", l.options.UserAgent)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrFetch, err, "failed to fetch %s", docURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serrors.With(serrors.ErrFetch, "failed to fetch %s: HTTP %d", docURL, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if isGzipped(docURL) {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrMalformed, err, "could not decompress %s", docURL)
		}
		defer func() { _ = zr.Close() }()
		body = zr
	}

	data, err := io.ReadAll(io.LimitReader(body, l.options.MaxBytes+1))
	if err != nil {
		if body != resp.Body {
			return nil, serrors.Wrap(serrors.ErrMalformed, err, "could not decompress %s", docURL)
		}

		return nil, serrors.Wrap(serrors.ErrFetch, err, "failed to read %s", docURL)
	}
	if int64(len(data)) > l.options.MaxBytes {
		return nil, serrors.With(serrors.ErrTooLarge, "sitemap %s exceeds %d bytes", docURL, l.options.MaxBytes)
	}

	return data, nil
}

// isGzipped reports whether the document itself is a gzip file, judged by the
// path of its URL. Transport-level compression is handled by net/http.
func isGzipped(docURL string) bool {
	u, err := url.Parse(docURL)
	if err != nil {
		return strings.HasSuffix(docURL, ".gz")
	}

	return strings.HasSuffix(u.Path, ".gz")
}
