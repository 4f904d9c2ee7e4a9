// Package fetch downloads the remote images embedded in documents.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRetries  = 2
	defaultDelay    = 500 * time.Millisecond
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 10 << 20
)

// Options configures a new Client. Zero values select defaults.
type Options struct {
	UserAgent  string
	Verbose    bool
	MaxRetries int
	BaseDelay  time.Duration
	Timeout    time.Duration
	MaxBytes   int64
}

// Client fetches images over HTTP with retries on transient failures.
type Client struct {
	http      *http.Client
	userAgent string
	maxBytes  int64
}

// New builds a Client with retry transport and optional verbose logging.
func New(opts Options) *Client {
	ua := opts.UserAgent
	if ua == "" {
		ua = "tungsten-cli/dev"
	}

	retries := opts.MaxRetries
	if retries <= 0 {
		retries = defaultRetries
	}

	delay := opts.BaseDelay
	if delay <= 0 {
		delay = defaultDelay
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	var transport http.RoundTripper = &retryTransport{
		base:       http.DefaultTransport,
		maxRetries: retries,
		baseDelay:  delay,
	}

	if opts.Verbose {
		transport = &loggingTransport{base: transport}
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		userAgent: ua,
		maxBytes:  maxBytes,
	}
}

// Image downloads rawURL and returns its bytes. The URL must be http(s)
// and the response must declare an image content type.
func (c *Client) Image(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrScheme, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(rawURL, resp); err != nil {
		return nil, err
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, _ := mime.ParseMediaType(ct)
		if !strings.HasPrefix(mt, "image/") {
			return nil, fmt.Errorf("%w: %s is %s", ErrNotImage, rawURL, ct)
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s (max %d bytes)", ErrTooLarge, rawURL, c.maxBytes)
	}

	return data, nil
}

type clientCtxKey struct{}

// WithClient stores a Client in the context.
func WithClient(ctx context.Context, cl *Client) context.Context {
	return context.WithValue(ctx, clientCtxKey{}, cl)
}

// FromContext retrieves the Client from the context.
func FromContext(ctx context.Context) *Client {
	if v := ctx.Value(clientCtxKey{}); v != nil {
		if cl, ok := v.(*Client); ok {
			return cl
		}
	}

	return nil
}
