package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sitemapcheck/internal/api"
	"sitemapcheck/internal/worker"
	"testing"

	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint: noctx
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestNewServer(t *testing.T) {
	tel, err := api.NewTelemetry()
	require.NoError(t, err)

	tel.Metrics.ObserveCheck("2xx")

	pool, err := worker.New(worker.Options{Concurrency: 2, MeterProvider: tel.MeterProvider})
	require.NoError(t, err)
	_, err = worker.Map(context.Background(), pool, []int{1, 2}, func(_ context.Context, i int) int { return i }, nil)
	require.NoError(t, err)

	srv := api.NewServer(tel, api.Options{Addr: ":0", MetricsPath: "/metrics"})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	status, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `sitemapcheck_checks_total{status_class="2xx"} 1`)
	require.Contains(t, body, "worker_dispatched")
	require.Contains(t, body, "go_goroutines")

	status, _ = get(t, ts.URL+"/debug/pprof/cmdline")
	require.Equal(t, http.StatusOK, status)

	status, _ = get(t, ts.URL+"/nope")
	require.Equal(t, http.StatusNotFound, status)
}
