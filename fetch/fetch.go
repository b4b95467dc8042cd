// Package fetch retrieves HTML fragments from the server. Under js/wasm the
// standard net/http client is backed by the browser Fetch API.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/console"
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// Fetcher issues fragment requests. It holds no navigation state.
type Fetcher struct {
	client  *http.Client
	base    *url.URL
	header  string
	value   string
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithBaseURL resolves relative targets against base.
func WithBaseURL(base *url.URL) Option {
	return func(f *Fetcher) { f.base = base }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher tagging requests with the configured header.
func New(cfg config.RequestConfig, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  http.DefaultClient,
		header:  cfg.Header,
		value:   cfg.HeaderValue,
		timeout: cfg.Timeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = console.OrNop(f.logger).Named("fetch")
	return f
}

// Fetch performs GET target and returns the body on a 2xx response.
// Any other status, or a transport failure, is returned as an error.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	u, err := f.resolve(target)
	if err != nil {
		return "", err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", target, err)
	}
	req.Header.Set(f.header, f.value)
	req.Header.Set("Accept", "text/html")

	f.logger.Debug("requesting fragment", zap.String("url", u))
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{URL: target, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", target, err)
	}
	f.logger.Debug("fragment received", zap.String("url", u), zap.Int("bytes", len(body)))
	return string(body), nil
}

func (f *Fetcher) resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", target, err)
	}
	if f.base == nil {
		return ref.String(), nil
	}
	return f.base.ResolveReference(ref).String(), nil
}
