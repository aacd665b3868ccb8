// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests with sensible defaults for clipping, retries
// mirror pages that answer 404 while they are still being generated, and
// turns images into data URIs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/obsidit/core"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultUserAgent     = "obsidit/1.0 (https://github.com/gaurav-prasanna/obsidit)"
	defaultMaxPageBytes  = 10 * 1024 * 1024
	defaultMaxImageBytes = 10 * 1024 * 1024

	// MaxAttempts bounds FetchWithRetry.
	MaxAttempts = 10
)

var (
	// ErrNotFound is returned once every attempt of FetchWithRetry got a 404.
	ErrNotFound = errors.New("not found")
	// ErrTooLarge is returned when a response body exceeds its size limit.
	ErrTooLarge = errors.New("response body too large")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Config configures the fetcher.
type Config struct {
	Timeout       time.Duration // HTTP timeout. Default: 30s.
	UserAgent     string
	MaxPageBytes  int64 // Max page body size. Default: 10MB.
	MaxImageBytes int64 // Max image body size. Default: 10MB.
	Logger        *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxPageBytes <= 0 {
		c.MaxPageBytes = defaultMaxPageBytes
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = defaultMaxImageBytes
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client *http.Client
	config Config
	logger *slog.Logger
}

// New creates an HTTPFetcher with a sensible timeout.
func New(cfg Config) *HTTPFetcher {
	cfg.defaults()
	return &HTTPFetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		logger: cfg.Logger,
	}
}

// Fetch retrieves the HTML content of the given URL.
// A non-2xx response is returned as a *StatusError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	resp, err := f.get(ctx, url, "text/html,application/xhtml+xml", f.config.MaxPageBytes)
	if err != nil {
		return nil, err
	}
	return &core.FetchResult{
		URL:        url,
		StatusCode: resp.statusCode,
		HTML:       string(resp.body),
	}, nil
}

// FetchWithRetry fetches url up to MaxAttempts times, one attempt after the
// other with no delay. Only a 404 triggers another attempt; any other failure
// is returned at once. ErrNotFound is returned when every attempt got a 404.
func (f *HTTPFetcher) FetchWithRetry(ctx context.Context, url string) (string, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		result, err := f.Fetch(ctx, url)
		if err == nil {
			f.logger.Debug("fetch: attempt succeeded", "url", url, "attempt", attempt)
			return result.HTML, nil
		}
		if !IsNotFound(err) {
			f.logger.Debug("fetch: attempt failed", "url", url, "attempt", attempt, "error", err)
			return "", err
		}
		f.logger.Debug("fetch: 404, retrying", "url", url, "attempt", attempt)
	}
	return "", fmt.Errorf("%w: %s after %d attempts", ErrNotFound, url, MaxAttempts)
}

// response is a successful, fully read response.
type response struct {
	statusCode  int
	contentType string
	body        []byte
}

// get performs a GET and reads at most limit bytes of the body. A longer
// body is an ErrTooLarge error rather than a truncated result.
func (f *HTTPFetcher) get(ctx context.Context, url, accept string, limit int64) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, limit)
	}
	return &response{
		statusCode:  resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}
