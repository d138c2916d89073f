package config

import (
	"errors"
	"fmt"
	"os"
	"sitemapcheck/pkg/serrors"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, URL checking, sitemap loading,
// the upstream proxy and the optional metrics endpoint.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// Checker contains settings for checking sitemap URLs
	Checker struct {
		// Concurrency is the maximum number of URL checks in flight
		Concurrency int `env:"CHECKER_CONCURRENCY" env-default:"10" yaml:"concurrency"`
		// Timeout applies to every individual request, including each redirect hop
		Timeout time.Duration `env:"CHECKER_TIMEOUT" env-default:"10s" yaml:"timeout"`
		// MaxRedirects is the number of redirect hops followed per URL
		MaxRedirects int `env:"CHECKER_MAX_REDIRECTS" env-default:"3" yaml:"maxRedirects"`
		// MaxRetries is the number of retry sweeps over transient failures
		MaxRetries int `env:"CHECKER_MAX_RETRIES" env-default:"2" yaml:"maxRetries"`
		// Delay is the minimum spacing between two dispatched checks
		Delay time.Duration `env:"CHECKER_DELAY" env-default:"10ms" yaml:"delay"`
		// RetryDelay is waited before every retry sweep
		RetryDelay time.Duration `env:"CHECKER_RETRY_DELAY" env-default:"1s" yaml:"retryDelay"`
		// RetryableStatusCodes are HTTP statuses treated as transient
		RetryableStatusCodes []int `env:"CHECKER_RETRYABLE_STATUS_CODES" env-default:"503" env-separator:"," yaml:"retryableStatusCodes"` //nolint: lll
		// UserAgent is sent with every request
		UserAgent string `env:"CHECKER_USER_AGENT" env-default:"sitemapcheck/1.0" yaml:"userAgent"`
	} `yaml:"checker"`

	// Sitemap contains settings for downloading sitemap documents
	Sitemap struct {
		// MaxDepth is how many levels of sitemap indexes may sit below the root
		MaxDepth int `env:"SITEMAP_MAX_DEPTH" env-default:"5" yaml:"maxDepth"`
		// Concurrency bounds the children of one index fetched at the same time
		Concurrency int `env:"SITEMAP_CONCURRENCY" env-default:"4" yaml:"concurrency"`
		// MaxBytes bounds the decompressed size of a single document
		MaxBytes int64 `env:"SITEMAP_MAX_BYTES" env-default:"52428800" yaml:"maxBytes"`
		// Timeout applies to each document download
		Timeout time.Duration `env:"SITEMAP_TIMEOUT" env-default:"30s" yaml:"timeout"`
	} `yaml:"sitemap"`

	// Proxy contains the upstream proxy settings
	Proxy struct {
		// URL is the proxy address
		URL string `env:"PROXY_URL" env-default:"http://proxy.zyte.com:8011" yaml:"url"`
		// APIKey enables the proxy when set
		APIKey string `env:"ZYTE_API_KEY" yaml:"apiKey"`
	} `yaml:"proxy"`

	// HTTP contains the metrics endpoint configuration
	HTTP struct {
		// Addr is the address and port the metrics server will listen on; empty disables it
		Addr string `env:"HTTP_ADDR" yaml:"addr"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// GracefulShutdownTimeout is the maximum duration to wait for the metrics server to stop
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load reads the configuration. Variables from a .env file in the working
// directory are loaded into the environment first. When configPath names an
// existing file it is read and then overridden by the environment; otherwise
// only the environment and defaults are used.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env file: %w", err)
	}

	var cfg Config
	if configPath != "" && fileExists(configPath) {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read config from environment: %w", err)
	}

	return &cfg, nil
}

// Validate rejects out of range values.
func (c *Config) Validate() error {
	switch {
	case c.Checker.Concurrency < 1:
		return serrors.With(serrors.ErrInvalidConfig, "concurrency must be at least 1, got %d", c.Checker.Concurrency)
	case c.Checker.Timeout <= 0:
		return serrors.With(serrors.ErrInvalidConfig, "timeout must be positive, got %s", c.Checker.Timeout)
	case c.Checker.MaxRedirects < 1:
		return serrors.With(serrors.ErrInvalidConfig, "max redirects must be at least 1, got %d", c.Checker.MaxRedirects)
	case c.Checker.MaxRetries < 0:
		return serrors.With(serrors.ErrInvalidConfig, "max retries must not be negative, got %d", c.Checker.MaxRetries)
	case c.Checker.Delay < 0:
		return serrors.With(serrors.ErrInvalidConfig, "delay must not be negative, got %s", c.Checker.Delay)
	case c.Checker.RetryDelay < 0:
		return serrors.With(serrors.ErrInvalidConfig, "retry delay must not be negative, got %s", c.Checker.RetryDelay)
	case c.Sitemap.MaxDepth < 1:
		return serrors.With(serrors.ErrInvalidConfig, "sitemap max depth must be at least 1, got %d", c.Sitemap.MaxDepth)
	case c.Sitemap.Concurrency < 1:
		return serrors.With(serrors.ErrInvalidConfig, "sitemap concurrency must be at least 1, got %d", c.Sitemap.Concurrency)
	}

	for _, code := range c.Checker.RetryableStatusCodes {
		if code < 100 || code > 599 {
			return serrors.With(serrors.ErrInvalidConfig, "retryable status code %d is not an HTTP status", code)
		}
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
