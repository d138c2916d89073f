package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sitemapcheck/internal/api"
	"sitemapcheck/internal/checker"
	"sitemapcheck/internal/config"
	"sitemapcheck/internal/report"
	"sitemapcheck/internal/sitemap"
	"sitemapcheck/internal/transport"
	"sitemapcheck/internal/worker"
	"sitemapcheck/pkg/domain"
	"sitemapcheck/pkg/logger"
	"sitemapcheck/pkg/prober/httpprober"
	"sitemapcheck/pkg/serrors"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const defaultProxyURL = "http://proxy.zyte.com:8011"

// checkFlags holds the check command flags. Flags override the
// configuration only when set explicitly.
type checkFlags struct {
	verbose      bool
	csvPath      string
	xlsxPath     string
	concurrency  int
	timeout      time.Duration
	maxRedirects int
	delay        time.Duration
	maxRetries   int
	retryDelay   time.Duration
	proxyURL     string
	metricsAddr  string
}

func (f *checkFlags) register(flags *pflag.FlagSet) {
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "show full URL listing instead of summary counts")
	flags.StringVar(&f.csvPath, "csv", "", "write results to a CSV file")
	flags.StringVar(&f.xlsxPath, "xlsx", "", "write results to an XLSX file")
	flags.IntVarP(&f.concurrency, "concurrency", "c", 10, "max concurrent requests")
	flags.DurationVarP(&f.timeout, "timeout", "t", 10*time.Second, "per-request timeout")
	flags.IntVarP(&f.maxRedirects, "max-redirects", "r", 3, "max redirects to follow per URL")
	flags.DurationVarP(&f.delay, "delay", "d", 10*time.Millisecond, "delay between requests")
	flags.IntVar(&f.maxRetries, "max-retries", 2, "retry sweeps over transient failures")
	flags.DurationVar(&f.retryDelay, "retry-delay", time.Second, "wait before each retry sweep")
	flags.StringVarP(&f.proxyURL, "proxy-url", "p", defaultProxyURL, "proxy URL, used when ZYTE_API_KEY is set")
	flags.Lookup("proxy-url").NoOptDefVal = defaultProxyURL
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics and pprof on this address")
}

// apply copies explicitly set flags over cfg.
func (f *checkFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("concurrency") {
		cfg.Checker.Concurrency = f.concurrency
	}
	if flags.Changed("timeout") {
		cfg.Checker.Timeout = f.timeout
	}
	if flags.Changed("max-redirects") {
		cfg.Checker.MaxRedirects = f.maxRedirects
	}
	if flags.Changed("delay") {
		cfg.Checker.Delay = f.delay
	}
	if flags.Changed("max-retries") {
		cfg.Checker.MaxRetries = f.maxRetries
	}
	if flags.Changed("retry-delay") {
		cfg.Checker.RetryDelay = f.retryDelay
	}
	if flags.Changed("proxy-url") {
		cfg.Proxy.URL = f.proxyURL
	}
	if flags.Changed("metrics-addr") {
		cfg.HTTP.Addr = f.metricsAddr
	}
}

func checkCommand(cfg *config.Config) *cobra.Command {
	var f checkFlags

	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Fetches a sitemap or sitemap index and checks the HTTP status of every URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = logger.WithFields(ctx, zap.String("runID", uuid.NewString()))

			return runCheck(ctx, cfg, f, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f.register(cmd.Flags())

	return cmd
}

func runCheck(ctx context.Context, cfg *config.Config, f checkFlags, rootURL string, stdout, stderr io.Writer) error {
	tel, err := api.NewTelemetry()
	if err != nil {
		return fmt.Errorf("could not set up telemetry: %w", err)
	}
	if cfg.HTTP.Addr != "" {
		stopServer := startServer(ctx, tel, cfg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.GracefulShutdownTimeout)
			defer cancel()
			stopServer(shutdownCtx)
		}()
	}

	transportOpts := transport.Options{
		ProxyURL:        cfg.Proxy.URL,
		APIKey:          cfg.Proxy.APIKey,
		MaxConnsPerHost: cfg.Checker.Concurrency,
	}
	httpClient, err := transport.NewHTTPClient(transportOpts)
	if err != nil {
		return fmt.Errorf("could not create http client: %w", err)
	}
	if transport.ProxyEnabled(transportOpts) {
		logger.Info(ctx, "proxy active", zap.String("proxy", transport.Redacted(transportOpts)))
	}

	logger.Info(ctx, "fetching sitemap", zap.String("url", rootURL))
	loader := sitemap.New(httpClient, sitemap.Options{
		MaxDepth:    cfg.Sitemap.MaxDepth,
		Concurrency: cfg.Sitemap.Concurrency,
		MaxBytes:    cfg.Sitemap.MaxBytes,
		Timeout:     cfg.Sitemap.Timeout,
		UserAgent:   cfg.Checker.UserAgent,
	}, tel.Metrics)
	sitemaps, err := loader.Load(ctx, rootURL)
	if err != nil {
		logger.Error(ctx, "could not load sitemap", zap.String("url", rootURL), zap.Error(err))

		return fmt.Errorf("could not load sitemap: %w", err)
	}
	if len(sitemaps) == 0 {
		return serrors.With(serrors.ErrNoSitemaps, "no sitemaps found at %s", rootURL)
	}
	logger.Info(ctx, "sitemaps resolved",
		zap.Int("sitemaps", len(sitemaps)), zap.Int("urls", domain.TotalURLs(sitemaps)))

	pool, err := worker.New(worker.Options{
		Concurrency:   cfg.Checker.Concurrency,
		Delay:         cfg.Checker.Delay,
		MeterProvider: tel.MeterProvider,
	})
	if err != nil {
		return fmt.Errorf("could not create worker pool: %w", err)
	}
	probe := httpprober.New(httpClient, httpprober.Options{
		Timeout:      cfg.Checker.Timeout,
		MaxRedirects: cfg.Checker.MaxRedirects,
		UserAgent:    cfg.Checker.UserAgent,
		Metrics:      tel.Metrics,
	})
	chk := checker.New(probe, pool, checker.Options{
		MaxRetries:           cfg.Checker.MaxRetries,
		RetryDelay:           cfg.Checker.RetryDelay,
		RetryableStatusCodes: cfg.Checker.RetryableStatusCodes,
	}, tel.Metrics)

	reports := make([]domain.Report, 0, len(sitemaps))
	for _, sm := range sitemaps {
		progress := newProgressObserver(stderr, sm)
		rep, err := chk.CheckSitemap(ctx, sm, progress)
		progress.Finish()
		if err != nil {
			return err
		}
		reports = append(reports, rep)
	}

	if err := report.Print(stdout, reports, f.verbose); err != nil {
		return err
	}
	if f.csvPath != "" {
		if err := writeFile(f.csvPath, reports, report.WriteCSV); err != nil {
			return err
		}
		logger.Info(ctx, "CSV report written", zap.String("path", f.csvPath))
	}
	if f.xlsxPath != "" {
		if err := writeFile(f.xlsxPath, reports, report.WriteXLSX); err != nil {
			return err
		}
		logger.Info(ctx, "XLSX report written", zap.String("path", f.xlsxPath))
	}

	return nil
}

func writeFile(path string, reports []domain.Report, write func(io.Writer, []domain.Report) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close %s: %w", path, cerr)
		}
	}()

	return write(file, reports)
}

func startServer(ctx context.Context, tel *api.Telemetry, cfg *config.Config) func(ctx context.Context) {
	server := api.NewServer(tel, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting metrics server...", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start metrics server", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping metrics server...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop metrics server", zap.Error(err))
		}
		if err := tel.MeterProvider.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not stop meter provider", zap.Error(err))
		}
	}
}
