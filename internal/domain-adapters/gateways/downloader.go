package gateways

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/ochairo/pbs-scraper/internal/domain/entities"
	"github.com/ochairo/pbs-scraper/internal/domain/interfaces"
)

const (
	// Initial backoff duration
	initialBackoff = 1 * time.Second
	// Max backoff duration
	maxBackoff = 32 * time.Second
	// Upper bound for checksum sidecars and manifests
	maxTextSize = 1 << 20
)

// HTTPDownloader implements gateways.ArtifactFetcher using a plain HTTP client
type HTTPDownloader struct {
	httpClient      *http.Client
	userAgent       string
	maxRetries      int
	initialInterval time.Duration
	logger          interfaces.Logger
}

// DownloaderOption configures an HTTPDownloader
type DownloaderOption func(*HTTPDownloader)

// WithRetryInterval sets the first backoff interval between retries
func WithRetryInterval(d time.Duration) DownloaderOption {
	return func(dl *HTTPDownloader) {
		dl.initialInterval = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(dl *HTTPDownloader) {
		dl.httpClient = c
	}
}

// NewDownloader creates a new downloader
func NewDownloader(cfg entities.DownloadConfig, logger interfaces.Logger, opts ...DownloaderOption) *HTTPDownloader {
	d := &HTTPDownloader{
		httpClient: &http.Client{
			Timeout: cfg.Timeout, // whole-body timeout, archives are tens of MB
		},
		userAgent:       cfg.UserAgent,
		maxRetries:      cfg.MaxRetries,
		initialInterval: initialBackoff,
		logger:          logger,
	}
	if d.userAgent == "" {
		d.userAgent = entities.DefaultUserAgent
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// FetchText downloads a small text resource and returns it trimmed
func (d *HTTPDownloader) FetchText(ctx context.Context, url string) (string, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch %s", url)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTextSize))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", url)
	}

	return strings.TrimSpace(string(body)), nil
}

// ComputeSHA256 streams the body at url through SHA-256
func (d *HTTPDownloader) ComputeSHA256(ctx context.Context, url string) (string, error) {
	d.logger.Info("Downloading asset to compute checksum", interfaces.F("url", url))

	resp, err := d.get(ctx, url)
	if err != nil {
		return "", errors.Wrapf(err, "failed to download %s", url)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	sum, written, err := HashReader(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "failed to hash %s", url)
	}

	d.logger.Debug("Downloaded asset",
		interfaces.F("file", path.Base(url)),
		interfaces.F("size", humanize.Bytes(uint64(written))),
	)

	return sum, nil
}

// get issues a GET with exponential backoff on transient failures.
// The caller owns the body of the returned response.
func (d *HTTPDownloader) get(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "failed to create request"))
		}
		req.Header.Set("User-Agent", d.userAgent)

		r, err := d.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			// Network errors are retryable
			return errors.Wrap(err, "HTTP request failed")
		}

		if r.StatusCode == http.StatusOK {
			resp = r
			return nil
		}

		//nolint:errcheck,gosec // G104: Best effort close before retry
		r.Body.Close()

		statusErr := errors.Errorf("HTTP %d: %s", r.StatusCode, http.StatusText(r.StatusCode))
		if !isRetryableError(r.StatusCode) {
			return backoff.Permanent(statusErr)
		}
		return statusErr
	}

	notify := func(err error, wait time.Duration) {
		d.logger.Warn("Retrying download",
			interfaces.F("url", url),
			interfaces.F("error", err),
			interfaces.F("wait", wait),
		)
	}

	if err := backoff.RetryNotify(operation, d.newBackOff(ctx), notify); err != nil {
		return nil, err
	}

	return resp, nil
}

func (d *HTTPDownloader) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = d.initialInterval
	eb.MaxInterval = maxBackoff
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0

	retries := d.maxRetries
	if retries < 0 {
		retries = 0
	}

	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

// isRetryableError checks if an HTTP status code is retryable
func isRetryableError(statusCode int) bool {
	switch statusCode {
	case http.StatusForbidden, // 403 - rate limit
		http.StatusTooManyRequests,     // 429
		http.StatusInternalServerError, // 500
		http.StatusBadGateway,          // 502
		http.StatusServiceUnavailable,  // 503
		http.StatusGatewayTimeout:      // 504
		return true
	default:
		return false
	}
}
