package mesowest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/rickgao/kalshi-highs/internal/model"
	"github.com/rickgao/kalshi-highs/internal/series"
	"github.com/rickgao/kalshi-highs/internal/version"
)

const (
	// DefaultBaseURL is the public MesoWest API host.
	DefaultBaseURL = "https://api.mesowest.net"

	// DefaultLookback matches the three days the feed keeps for recent queries.
	DefaultLookback = 72 * time.Hour

	timeseriesPath = "/v2/stations/timeseries"
)

// Client fetches station timeseries.
type Client struct {
	baseURL    string
	token      string
	unit       model.Unit
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client authenticating with token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		unit:    model.Celsius,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:      rate.NewLimiter(rate.Limit(2), 2),
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithUnit selects the temperature unit requested from the API.
func WithUnit(u model.Unit) ClientOption {
	return func(c *Client) {
		c.unit = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets custom rate limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// FetchSeries returns the station's air temperature readings for the last
// lookback, rounded down to whole minutes. A non-positive lookback uses
// DefaultLookback.
func (c *Client) FetchSeries(ctx context.Context, stationID string, lookback time.Duration) (series.RawSeries, error) {
	if lookback <= 0 {
		lookback = DefaultLookback
	}

	query := url.Values{}
	query.Set("STID", stationID)
	query.Set("recent", strconv.Itoa(int(lookback/time.Minute)))
	query.Set("units", "temp|"+c.unit.String())
	query.Set("obtimezone", "local")
	query.Set("complete", "1")
	query.Set("showemptystations", "1")
	query.Set("token", c.token)

	body, err := c.getWithRetry(ctx, query)
	if err != nil {
		return series.RawSeries{}, fmt.Errorf("fetch %s: %w", stationID, err)
	}

	var resp TimeseriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return series.RawSeries{}, fmt.Errorf("unmarshal timeseries: %w", err)
	}

	if resp.Summary.ResponseCode != responseOK {
		return series.RawSeries{}, &APIError{
			StatusCode:   http.StatusOK,
			ResponseCode: resp.Summary.ResponseCode,
			Message:      resp.Summary.ResponseMessage,
		}
	}
	if len(resp.Station) == 0 {
		return series.RawSeries{}, fmt.Errorf("%w: no station %s in response", series.ErrDataUnavailable, stationID)
	}

	st := resp.Station[0]
	raw := series.RawSeries{
		Station:    st.STID,
		Timezone:   st.Timezone,
		Unit:       c.unit,
		Timestamps: st.Observations.DateTime,
		Readings:   readings(st.Observations.AirTemp),
	}
	if raw.Station == "" {
		raw.Station = stationID
	}

	c.logger.Debug("fetched timeseries",
		"station", raw.Station,
		"timezone", raw.Timezone,
		"readings", len(raw.Readings),
	)
	return raw, nil
}

// readings converts raw JSON values to decimal text. JSON null becomes nil;
// quoted numbers lose their quotes.
func readings(values []json.RawMessage) []*string {
	out := make([]*string, len(values))
	for i, v := range values {
		v = bytes.TrimSpace(v)
		if len(v) == 0 || bytes.Equal(v, []byte("null")) {
			continue
		}
		s := string(bytes.Trim(v, `"`))
		out[i] = &s
	}
	return out
}

func (c *Client) getWithRetry(ctx context.Context, query url.Values) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			jitter := backoff/2 + time.Duration(rand.Int63n(int64(backoff)+1))
			c.logger.Debug("retrying timeseries request",
				"attempt", attempt,
				"backoff", jitter,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.get(ctx, query)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) get(ctx context.Context, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+timeseriesPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}
	return body, nil
}
