package api

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/rickgao/kalshi-highs/internal/version"
)

// Client provides access to the Kalshi REST API.
type Client struct {
	baseURL    string
	apiKey     string
	signer     RequestSigner
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
	maxPages     int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// RequestSigner authenticates outgoing requests.
type RequestSigner interface {
	Sign(req *http.Request) error
}

// NewClient creates a new REST API client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:      rate.NewLimiter(rate.Limit(10), 10),
		userAgent:    version.UserAgent(),
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
		maxPages:     DefaultMaxPages,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithRateLimit caps outbound requests per second. A non-positive rps
// disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxPages bounds cursor pagination.
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSigner signs every request. It takes precedence over the bearer key.
func WithSigner(s RequestSigner) ClientOption {
	return func(c *Client) {
		c.signer = s
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
