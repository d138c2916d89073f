// Package httpprober provides a prober.Prober implementation that checks URLs
// with plain HTTP requests, following redirects by hand and falling back from
// HEAD to GET when a server rejects HEAD.
package httpprober

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sitemapcheck/pkg/domain"
	"sitemapcheck/pkg/metrics"
	"sitemapcheck/pkg/prober"
	"time"
)

const (
	// DefaultTimeout is used when Options.Timeout is not positive.
	DefaultTimeout = 10 * time.Second

	// maxDrainBytes bounds how much of a response body is read before closing
	// it so the connection can be reused.
	maxDrainBytes = 64 << 10
)

// Options configure a Client.
type Options struct {
	// Timeout applies to every individual request, including each redirect hop.
	Timeout time.Duration
	// MaxRedirects is the number of redirect hops followed before the last
	// redirect status is returned as the result.
	MaxRedirects int
	// UserAgent is sent with every request when non-empty.
	UserAgent string
	// Metrics receives request latencies. It may be nil.
	Metrics *metrics.Metrics
}

// Client checks URLs over HTTP. It is safe for concurrent use.
type Client struct {
	transport http.RoundTripper
	options   Options
}

// Ensure Client conforms to the prober.Prober interface at compile time.
var _ prober.Prober = (*Client)(nil)

// New constructs a Client. Only the transport of httpClient is used (and
// therefore its proxy configuration); redirects are never followed by the
// http.Client machinery so that every hop is observed and bounded here.
func New(httpClient *http.Client, opts Options) *Client {
	transport := http.DefaultTransport
	if httpClient != nil && httpClient.Transport != nil {
		transport = httpClient.Transport
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &Client{transport: transport, options: opts}
}

// Probe checks URL with HEAD and re-checks it with GET when HEAD is answered
// with 405 Method Not Allowed or 403 Forbidden. Any failure is reported as a
// result with StatusCode 0.
func (c *Client) Probe(ctx context.Context, URL string) domain.CheckResult {
	status, err := c.Resolve(ctx, http.MethodHead, URL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusForbidden) {
		status, err = c.Resolve(ctx, http.MethodGet, URL)
	}
	if err != nil {
		return domain.CheckResult{
			URL:     URL,
			Error:   err.Error(),
			Failure: Classify(err),
		}
	}

	return domain.CheckResult{URL: URL, StatusCode: status}
}

// Resolve issues method against rawURL and follows redirects manually,
// resolving each Location against the URL that produced it. When more than
// MaxRedirects hops are needed, the status of the last redirect response is
// returned. Timeouts and transport failures are returned as errors.
func (c *Client) Resolve(ctx context.Context, method, rawURL string) (int, error) {
	current, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("could not parse URL: %w", err)
	}

	hops := 0
	for {
		status, location, err := c.do(ctx, method, current)
		if err != nil {
			return 0, err
		}
		if location == "" || status < 300 || status >= 400 {
			return status, nil
		}

		hops++
		if hops > c.options.MaxRedirects {
			return status, nil
		}

		next, err := current.Parse(location)
		if err != nil {
			return 0, &RedirectError{From: current.String(), Location: location, Err: err}
		}
		current = next
	}
}

// do performs a single request under its own timeout and returns the status
// and the raw Location header.
func (c *Client) do(ctx context.Context, method string, target *url.URL) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return 0, "", fmt.Errorf("could not create request: %w", err)
	}
	if c.options.UserAgent != "" {
		req.Header.Set("User-Agent", c.options.UserAgent)
	}

	start := time.Now()
	resp, err := c.transport.RoundTrip(req)
	if err != nil {
		c.options.Metrics.ObserveRequest(method, "error", time.Since(start))

		return 0, "", fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		_ = resp.Body.Close()
	}()

	c.options.Metrics.ObserveRequest(method,
		domain.CheckResult{StatusCode: resp.StatusCode}.StatusClass(),
		time.Since(start))

	return resp.StatusCode, resp.Header.Get("Location"), nil
}

// RedirectError reports a Location header that could not be resolved.
type RedirectError struct {
	From     string
	Location string
	Err      error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("invalid redirect from %s to %q: %v", e.From, e.Location, e.Err)
}

func (e *RedirectError) Unwrap() error { return e.Err }
