package sitemap

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"
)

// NormalizeURL returns a canonical form of a sitemap URL so that an index
// referencing an ancestor through a slightly different spelling is still
// detected as a cycle.
//   - scheme and host are lower-cased, default ports dropped
//   - an empty path becomes "/"; dot-segments and duplicate slashes are removed
//   - a trailing slash is removed except for the root path
//   - query parameters are sorted by key and value
//   - the fragment is removed
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("could not parse URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL %q is not absolute", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = normalizeHost(u.Scheme, u.Host)

	p := path.Clean("/" + u.Path)
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	u.Path = p
	u.RawPath = ""

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			sort.Strings(q[k])
		}
		u.RawQuery = q.Encode()
	}
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

func normalizeHost(scheme, host string) string {
	host = strings.ToLower(host)
	h, port, err := net.SplitHostPort(host)
	if err != nil {
		// no explicit port
		return host
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		if strings.Contains(h, ":") {
			return "[" + h + "]"
		}

		return h
	}

	return net.JoinHostPort(h, port)
}
