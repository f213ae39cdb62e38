package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultUserAgent is sent with every probe. The endpoint serves error pages
// to clients without a browser-like User-Agent, so this is load-bearing.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148"

// Options configures the HTTP client.
type Options struct {
	// Timeout for individual requests.
	// Default: 10s
	Timeout time.Duration

	// UserAgent is sent with every request.
	// Default: DefaultUserAgent
	UserAgent string

	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 100
	MaxIdleConnsPerHost int
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:             10 * time.Second,
		UserAgent:           DefaultUserAgent,
		MaxIdleConnsPerHost: 100,
	}
}

// Client is an HTTP client for probing the download endpoint. All probes
// share one connection pool; the client is safe for concurrent use.
type Client struct {
	client *http.Client
	opts   Options
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = 100
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}
}

// Get performs a single GET request with the configured User-Agent.
// The caller owns the response body. Status codes are not interpreted here;
// classification is the caller's concern.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	return c.client.Do(req)
}

// ParseDispositionFilename extracts the filename= parameter from a
// Content-Disposition header value, with surrounding quotes stripped.
// Returns false when the header carries no usable filename.
func ParseDispositionFilename(header string) (string, bool) {
	_, value, found := strings.Cut(header, "filename=")
	if !found {
		return "", false
	}

	// The value may be followed by further parameters.
	if i := strings.IndexByte(value, ';'); i >= 0 {
		value = value[:i]
	}
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"`)

	if value == "" {
		return "", false
	}
	return value, true
}
