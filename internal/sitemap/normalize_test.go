package sitemap_test

import (
	"sitemapcheck/internal/sitemap"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{name: "lowercase scheme and host; add root path", in: "HTTP://Example.COM", out: "http://example.com/", ok: true},
		{name: "remove default http port", in: "http://example.com:80/sitemap.xml", out: "http://example.com/sitemap.xml", ok: true},
		{name: "remove default https port", in: "https://example.com:443/", out: "https://example.com/", ok: true},
		{name: "keep non-default port", in: "http://example.com:8080/", out: "http://example.com:8080/", ok: true},
		{name: "clean path and drop trailing slash", in: "http://example.com//a/./b/../c/", out: "http://example.com/a/c", ok: true},
		{name: "sort query keys and values", in: "http://EXAMPLE.com/s.xml?b=2&a=2&a=1", out: "http://example.com/s.xml?a=1&a=2&b=2", ok: true},
		{name: "remove fragment", in: "https://example.com/s.xml?x=1#top", out: "https://example.com/s.xml?x=1", ok: true},
		{name: "ipv6 host with non-default port", in: "http://[2001:db8::1]:8080/a", out: "http://[2001:db8::1]:8080/a", ok: true},
		{name: "ipv6 host with default port", in: "https://[2001:db8::1]:443/a", out: "https://[2001:db8::1]/a", ok: true},
		{name: "surrounding whitespace", in: "  https://example.com/s.xml\n", out: "https://example.com/s.xml", ok: true},
		{name: "relative URL", in: "/sitemap.xml", ok: false},
		{name: "invalid URL", in: "http://exa mple.com", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sitemap.NormalizeURL(tc.in)
			if !tc.ok {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.out, got)
		})
	}
}
