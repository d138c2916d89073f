// Package transport builds the outbound HTTP client shared by the sitemap
// loader and the URL prober.
package transport

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sitemapcheck/pkg/serrors"
	"time"
)

// Options configure NewHTTPClient.
type Options struct {
	// ProxyURL is the upstream proxy. It is only used when APIKey is set.
	ProxyURL string
	// APIKey authenticates against the proxy as the basic-auth user name with
	// an empty password. Without it, the standard proxy environment variables
	// apply.
	APIKey string
	// MaxConnsPerHost bounds connections per host; zero means no limit.
	MaxConnsPerHost int
	// DialTimeout bounds establishing a TCP connection. Defaults to 10s.
	DialTimeout time.Duration
}

// NewHTTPClient returns a client with pooled keep-alive connections and the
// configured proxy. It never sets a client-wide timeout; callers bound each
// request with a context.
func NewHTTPClient(opts Options) (*http.Client, error) {
	proxy, err := proxyFunc(opts)
	if err != nil {
		return nil, err
	}

	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}

	return &http.Client{
		Transport: &http.Transport{
			Proxy: proxy,
			DialContext: (&net.Dialer{
				Timeout:   dialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			TLSHandshakeTimeout:   15 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   max(opts.MaxConnsPerHost, http.DefaultMaxIdleConnsPerHost),
			MaxConnsPerHost:       opts.MaxConnsPerHost,
			IdleConnTimeout:       90 * time.Second,
		},
	}, nil
}

// ProxyEnabled reports whether opts route traffic through the upstream proxy.
func ProxyEnabled(opts Options) bool { return opts.APIKey != "" }

func proxyFunc(opts Options) (func(*http.Request) (*url.URL, error), error) {
	if !ProxyEnabled(opts) {
		return http.ProxyFromEnvironment, nil
	}

	u, err := url.Parse(opts.ProxyURL)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrInvalidConfig, err, "invalid proxy URL %q", opts.ProxyURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, serrors.With(serrors.ErrInvalidConfig, "invalid proxy URL %q: scheme and host are required", opts.ProxyURL)
	}
	u.User = url.UserPassword(opts.APIKey, "")

	return http.ProxyURL(u), nil
}

// Redacted returns the proxy URL without credentials, for logging.
func Redacted(opts Options) string {
	u, err := url.Parse(opts.ProxyURL)
	if err != nil {
		return fmt.Sprintf("%q", opts.ProxyURL)
	}
	u.User = nil

	return u.String()
}
