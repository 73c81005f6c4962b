package pageinsight

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// FetchResult is the outcome of a single GET or HEAD request.
type FetchResult struct {
	StatusCode int
	Headers    http.Header
	Body       string
	FinalURL   string
}

// Fetcher performs a single HTTP request and reports status, headers and body.
type Fetcher interface {
	Fetch(ctx context.Context, method, targetURL string) (*FetchResult, error)
}

// HTTPClient implements Fetcher using a real HTTP client.
type HTTPClient struct {
	client       *http.Client
	headers      RequestHeaders
	maxBodyBytes int64
}

const (
	maxRedirects        = 10
	defaultMaxBodyBytes = 10 << 20
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
)

// ClientOptions configures an HTTPClient.
type ClientOptions struct {
	Headers      RequestHeaders
	MaxBodyBytes int64
	// AllowPrivateNetworks disables the dial-time private address guard.
	AllowPrivateNetworks bool
}

// NewHTTPClient returns a Fetcher backed by an http.Client with a dedicated
// transport that blocks connections to private/reserved IP ranges, and
// redirect validation that prevents SSRF via redirect chains. Per-request
// deadlines come from the caller's context.
func NewHTTPClient(opts ClientOptions) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if !opts.AllowPrivateNetworks {
		transport.DialContext = safeDialer().DialContext
	}
	return newHTTPClient(opts, transport)
}

func newHTTPClient(opts ClientOptions, transport http.RoundTripper) *HTTPClient {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &HTTPClient{
		client: &http.Client{
			Transport:     transport,
			CheckRedirect: safeRedirectPolicy,
		},
		headers:      opts.Headers,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// safeRedirectPolicy validates redirect targets and limits the redirect chain length.
func safeRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Fetch issues method against targetURL, following redirects, and returns
// the decoded body. Non-2xx statuses are not errors.
func (c *HTTPClient) Fetch(ctx context.Context, method, targetURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, method, targetURL, nil)
	if err != nil {
		return nil, err
	}
	c.headers.apply(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var body string
	if method != http.MethodHead {
		body, err = c.readBody(resp)
		if err != nil {
			return nil, err
		}
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &FetchResult{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		Body:       body,
		FinalURL:   finalURL,
	}, nil
}

// readBody decodes the response body according to Content-Encoding and
// limits it to maxBodyBytes to prevent memory exhaustion from extremely
// large or infinite responses. Oversized bodies are truncated.
func (c *HTTPClient) readBody(resp *http.Response) (string, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("gzip decode: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer func() { _ = fl.Close() }()
		reader = fl
	}

	data, err := io.ReadAll(io.LimitReader(reader, c.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}
