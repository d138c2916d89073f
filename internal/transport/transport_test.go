package transport_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sitemapcheck/internal/transport"
	"sitemapcheck/pkg/serrors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_proxyCredentials(t *testing.T) {
	var (
		gotAuth string
		gotURI  string
	)
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Proxy-Authorization")
		gotURI = r.RequestURI
		w.WriteHeader(http.StatusNoContent)
	}))
	defer proxy.Close()

	c, err := transport.NewHTTPClient(transport.Options{ProxyURL: proxy.URL, APIKey: "secret"})
	require.NoError(t, err)

	resp, err := c.Get("http://upstream.invalid/page")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "http://upstream.invalid/page", gotURI)
	require.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("secret:")), gotAuth)
}

func TestNewHTTPClient_noKeyUsesEnvironment(t *testing.T) {
	t.Setenv("HTTP_PROXY", "")
	t.Setenv("http_proxy", "")

	c, err := transport.NewHTTPClient(transport.Options{ProxyURL: "http://proxy.invalid:8011"})
	require.NoError(t, err)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	u, err := tr.Proxy(req)
	require.NoError(t, err)
	require.Nil(t, u)
	require.Zero(t, c.Timeout)
}

func TestNewHTTPClient_invalidProxyURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "unparseable", url: "http://[::1"},
		{name: "no scheme", url: "proxy.zyte.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transport.NewHTTPClient(transport.Options{ProxyURL: tt.url, APIKey: "k"})
			require.ErrorIs(t, err, serrors.ErrInvalidConfig)
		})
	}
}

func TestRedacted(t *testing.T) {
	require.Equal(t, "http://proxy.zyte.com:8011",
		transport.Redacted(transport.Options{ProxyURL: "http://key:@proxy.zyte.com:8011", APIKey: "key"}))
	require.True(t, transport.ProxyEnabled(transport.Options{APIKey: "key"}))
	require.False(t, transport.ProxyEnabled(transport.Options{}))
}
