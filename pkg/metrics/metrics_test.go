package metrics_test

import (
	"sitemapcheck/pkg/metrics"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveCheck("2xx")
	m.ObserveCheck("2xx")
	m.ObserveCheck("error")
	m.ObserveRetrySweep(3)
	m.ObserveSitemap(metrics.OutcomeLeaf)
	m.ObserveRequest("HEAD", "2xx", 20*time.Millisecond)

	series, err := testutil.GatherAndCount(reg, "sitemapcheck_checks_total")
	require.NoError(t, err)
	require.Equal(t, 2, series)
	series, err = testutil.GatherAndCount(reg, "sitemapcheck_http_request_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, series)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[mf.GetName()] += c.GetValue()
			}
		}
	}
	require.InDelta(t, 3, values["sitemapcheck_checks_total"], 0)
	require.InDelta(t, 1, values["sitemapcheck_retry_sweeps_total"], 0)
	require.InDelta(t, 3, values["sitemapcheck_retried_urls_total"], 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	require.NotPanics(t, func() {
		m.ObserveCheck("2xx")
		m.ObserveRequest("GET", "4xx", time.Second)
		m.ObserveRetrySweep(1)
		m.ObserveSitemap(metrics.OutcomeFailed)
	})
}
