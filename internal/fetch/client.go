package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

const (
	// DefaultTimeout bounds a request including the body read.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBodySize is the number of body bytes read before truncating.
	DefaultMaxBodySize = 16 * 1024 * 1024

	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "topwords"

	// maxRedirects stops redirect loops.
	maxRedirects = 10
)

// Page is a downloaded document.
type Page struct {
	// Body is the response body decoded to UTF-8. At most the configured
	// maximum size of raw bytes is read.
	Body []byte

	// Charset is the name of the encoding Body was decoded from.
	Charset string

	// ContentType is the Content-Type header of the response.
	ContentType string

	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// FinalURL is the URL after redirects.
	FinalURL string

	// Truncated reports whether Body was cut at the maximum size.
	Truncated bool
}

// Client downloads documents over HTTP.
type Client struct {
	httpClient   *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodySize  int64
	proxyAddress string
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read.
// Non-positive values are ignored.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithProxy routes requests through the SOCKS5 proxy at address ("host:port").
// An empty address means a direct connection.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithHTTPClient replaces the underlying HTTP client.
// The proxy option is ignored when an HTTP client is given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client.
// It returns ErrInvalidProxyAddress if a malformed proxy address is configured.
// The proxy is not contacted until the first request.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		return c, nil
	}

	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	if c.proxyAddress != "" {
		dial, err := socks5DialContext(c.proxyAddress)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dial
	}

	c.httpClient = &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return c, nil
}

// Fetch performs one GET request for rawURL and returns the page.
//
// A non-2xx response yields a *StatusError. Bodies longer than the maximum
// size are truncated and a warning is logged. The body is decoded to UTF-8
// using its byte order mark, the Content-Type charset or an HTML meta tag,
// whichever is found first.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if err := validateURL(rawURL); err != nil {
		return Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/plain,text/html;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return Page{}, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	// Read one byte past the limit to detect truncation.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return Page{}, fmt.Errorf("failed to read body: %w", err)
	}

	page := Page{
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
	}
	if int64(len(body)) > c.maxBodySize {
		body = body[:c.maxBodySize]
		page.Truncated = true
		c.logger.Warn("response body truncated", "url", rawURL, "limit", c.maxBodySize)
	}

	body, page.Charset, err = decodeBody(body, page.ContentType, page.Truncated)
	if err != nil {
		return Page{}, err
	}
	page.Body = body
	return page, nil
}

// decodeBody converts body to UTF-8 and returns the name of its encoding.
// Without a declared charset a body that is valid UTF-8 is kept as is.
func decodeBody(body []byte, contentType string, truncated bool) ([]byte, string, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return body, name, nil
	}
	if !certain {
		tail := body
		if truncated {
			tail = trimPartialRune(body)
		}
		if utf8.Valid(tail) {
			return body, "utf-8", nil
		}
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, name, fmt.Errorf("failed to decode %s body: %w", name, err)
	}
	return decoded, name, nil
}

// Acquire downloads rawURL and reports whether text is available.
// On failure it logs exactly one error and returns false; callers must
// not log the failure again.
func (c *Client) Acquire(ctx context.Context, rawURL string) (Page, bool) {
	c.logger.Info("downloading text from URL", "url", rawURL)

	start := time.Now()
	page, err := c.Fetch(ctx, rawURL)
	if err != nil {
		c.logger.Error("failed to fetch text", "url", rawURL, "error", err)
		return Page{}, false
	}

	c.logger.Info("text successfully downloaded",
		"bytes", len(page.Body),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return page, true
}

// Timeout returns the request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// UserAgent returns the User-Agent header value.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// trimPartialRune drops an incomplete UTF-8 sequence at the end of b.
func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			break
		}
	}
	return b
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}

