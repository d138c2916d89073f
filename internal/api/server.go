// Package api configures and exposes the optional HTTP server publishing
// Prometheus metrics and pprof endpoints while a check runs.
package api

import (
	"fmt"
	"net/http"
	"sitemapcheck/internal/config"
	"sitemapcheck/pkg/controller"
	"sitemapcheck/pkg/metrics"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Options holds configuration for the HTTP server.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":9090".
	Addr string
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MetricsPath:       cfg.HTTP.MetricsPath,
	}
}

// Telemetry bundles the process registry, the Prometheus collectors
// registered on it and an OpenTelemetry meter provider exporting into the same
// registry.
type Telemetry struct {
	Registry      *prometheus.Registry
	Metrics       *metrics.Metrics
	MeterProvider *sdkmetric.MeterProvider
}

// NewTelemetry creates a registry with Go runtime and process collectors,
// the application collectors and an OpenTelemetry meter provider.
func NewTelemetry() (*Telemetry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return &Telemetry{
		Registry:      reg,
		Metrics:       metrics.New(reg),
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)),
	}, nil
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It sets up:
// - Prometheus metrics endpoint (MetricsPath) backed by t.Registry
// - pprof endpoints for profiling
// It also wraps the mux with the logging middleware.
func NewServer(t *Telemetry, opts Options) *http.Server {
	mux := http.NewServeMux()

	mux.Handle(opts.MetricsPath, promhttp.HandlerFor(t.Registry, promhttp.HandlerOpts{Registry: t.Registry}))
	mux.Handle(controller.PprofPrefix, controller.PprofMux())

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           controller.WithLogger(mux),
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
	}
}
