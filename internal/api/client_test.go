package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient points a fast-retrying, unthrottled client at handler.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	base := []ClientOption{WithRetries(2, time.Millisecond), WithRateLimit(0, 0)}
	return NewClient(server.URL, "test-key", append(base, opts...)...)
}

func TestNewClient(t *testing.T) {
	c := NewClient("https://api.example.com", "test-key")

	if c.httpClient.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", c.httpClient.Timeout)
	}
	if c.maxRetries != 3 || c.retryBackoff != time.Second {
		t.Errorf("retries = %d/%v, want 3/1s", c.maxRetries, c.retryBackoff)
	}
	if c.maxPages != DefaultMaxPages {
		t.Errorf("maxPages = %d, want %d", c.maxPages, DefaultMaxPages)
	}
	if float64(c.limiter.Limit()) != 10 {
		t.Errorf("Limit = %v, want 10", c.limiter.Limit())
	}
	if !strings.HasPrefix(c.userAgent, "kalshi-highs/") {
		t.Errorf("userAgent = %q, want kalshi-highs/ prefix", c.userAgent)
	}

	c = NewClient("https://api.example.com", "",
		WithTimeout(5*time.Second),
		WithRetries(5, 2*time.Second),
		WithRateLimit(2, 4),
		WithMaxPages(7),
	)
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.httpClient.Timeout)
	}
	if c.maxRetries != 5 || c.retryBackoff != 2*time.Second {
		t.Errorf("retries = %d/%v, want 5/2s", c.maxRetries, c.retryBackoff)
	}
	if float64(c.limiter.Limit()) != 2 || c.limiter.Burst() != 4 {
		t.Errorf("limiter = %v/%d, want 2/4", c.limiter.Limit(), c.limiter.Burst())
	}
	if c.maxPages != 7 {
		t.Errorf("maxPages = %d, want 7", c.maxPages)
	}

	if c := NewClient("x", "", WithMaxPages(0)); c.maxPages != DefaultMaxPages {
		t.Errorf("WithMaxPages(0) maxPages = %d, want default", c.maxPages)
	}
}

func TestAPIError_IsRetryable(t *testing.T) {
	for code, want := range map[int]bool{500: true, 503: true, 429: true, 400: false, 404: false, 499: false} {
		if got := (&APIError{StatusCode: code}).IsRetryable(); got != want {
			t.Errorf("IsRetryable(%d) = %v, want %v", code, got, want)
		}
	}
	if got := (&APIError{StatusCode: 404, Message: "Not Found"}).Error(); got != "kalshi api error 404: Not Found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestDoRequest_Headers(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		signer   RequestSigner
		wantAuth string
		wantSig  string
	}{
		{name: "bearer key", apiKey: "test-key", wantAuth: "Bearer test-key"},
		{name: "anonymous"},
		{
			name:   "signer replaces bearer key",
			apiKey: "test-key",
			signer: signerFunc(func(req *http.Request) error {
				req.Header.Set("X-Signed-Path", req.URL.Path)
				return nil
			}),
			wantSig: "/markets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != tt.wantAuth {
					t.Errorf("Authorization = %q, want %q", got, tt.wantAuth)
				}
				if got := r.Header.Get("X-Signed-Path"); got != tt.wantSig {
					t.Errorf("X-Signed-Path = %q, want %q", got, tt.wantSig)
				}
				if r.Header.Get("Accept") != "application/json" {
					t.Errorf("Accept = %q", r.Header.Get("Accept"))
				}
				if !strings.HasPrefix(r.Header.Get("User-Agent"), "kalshi-highs/") {
					t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
				}
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			opts := []ClientOption{}
			if tt.signer != nil {
				opts = append(opts, WithSigner(tt.signer))
			}
			c := NewClient(server.URL, tt.apiKey, opts...)
			if _, err := c.doRequest(context.Background(), http.MethodGet, "/markets", nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDoRequest_SignerError(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) },
		WithSigner(signerFunc(func(*http.Request) error { return errors.New("no key") })))

	_, err := c.doRequest(context.Background(), http.MethodGet, "/markets", nil)
	if err == nil || !strings.Contains(err.Error(), "sign request") {
		t.Fatalf("error = %v, want sign request error", err)
	}
	if hits.Load() != 0 {
		t.Error("unsigned request reached the server")
	}
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int // per attempt; the last repeats
		wantErr      string
		wantAttempts int32
	}{
		{name: "first try", statuses: []int{200}, wantAttempts: 1},
		{name: "5xx then ok", statuses: []int{500, 502, 200}, wantAttempts: 3},
		{name: "429 then ok", statuses: []int{429, 200}, wantAttempts: 2},
		{name: "4xx not retried", statuses: []int{400}, wantErr: "kalshi api error 400", wantAttempts: 1},
		{name: "gives up", statuses: []int{503}, wantErr: "max retries exceeded", wantAttempts: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				n := int(attempts.Add(1))
				status := tt.statuses[min(n, len(tt.statuses))-1]
				w.WriteHeader(status)
				w.Write([]byte(`{"ok": true}`))
			})

			body, err := c.doWithRetry(context.Background(), http.MethodGet, "/markets", nil)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
			} else if err != nil || string(body) != `{"ok": true}` {
				t.Fatalf("body, err = %q, %v", body, err)
			}
			if got := attempts.Load(); got != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", got, tt.wantAttempts)
			}
		})
	}
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetries(5, 50*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	_, err := c.doWithRetry(ctx, http.MethodGet, "/markets", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestGetMarkets_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("path = %q, want /markets", r.URL.Path)
		}
		want := map[string]string{
			"limit":         "100",
			"cursor":        "c1",
			"series_ticker": "KXHIGHNY",
			"status":        "open",
			"tickers":       "A,B",
		}
		for k, v := range want {
			if got := r.URL.Query().Get(k); got != v {
				t.Errorf("%s = %q, want %q", k, got, v)
			}
		}
		json.NewEncoder(w).Encode(MarketsResponse{Markets: []APIMarket{{Ticker: "KXHIGHNY-25JUN13-B75.5"}}})
	})

	resp, err := c.GetMarkets(context.Background(), GetMarketsOptions{
		Limit:        100,
		Cursor:       "c1",
		SeriesTicker: "KXHIGHNY",
		Status:       "open",
		Tickers:      []string{"A", "B"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Markets) != 1 || resp.Markets[0].Ticker != "KXHIGHNY-25JUN13-B75.5" {
		t.Errorf("Markets = %+v", resp.Markets)
	}
}

func TestGetMarkets_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"markets": [`))
	})

	_, err := c.GetMarkets(context.Background(), GetMarketsOptions{})
	if err == nil || !strings.Contains(err.Error(), "unmarshal response") {
		t.Errorf("error = %v, want unmarshal error", err)
	}
}

// pagedHandler serves pages of one market each, linked by cursor.
func pagedHandler(t *testing.T, pages int, calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))

		wantCursor := ""
		if n > 1 {
			wantCursor = fmt.Sprintf("p%d", n-1)
		}
		if got := r.URL.Query().Get("cursor"); got != wantCursor {
			t.Errorf("page %d cursor = %q, want %q", n, got, wantCursor)
		}
		if got := r.URL.Query().Get("limit"); got != "1000" {
			t.Errorf("limit = %q, want 1000", got)
		}

		resp := MarketsResponse{Markets: []APIMarket{{Ticker: fmt.Sprintf("M%d", n)}}}
		if n < pages {
			resp.Cursor = fmt.Sprintf("p%d", n)
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestGetAllMarketsWithOptions(t *testing.T) {
	t.Run("follows cursor", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, pagedHandler(t, 3, &calls))

		markets, err := c.GetAllMarketsWithOptions(context.Background(), GetMarketsOptions{SeriesTicker: "KXHIGHNY"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(markets) != 3 || calls.Load() != 3 {
			t.Errorf("got %d markets in %d calls, want 3 in 3", len(markets), calls.Load())
		}
	})

	t.Run("stops at page cap", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, pagedHandler(t, 9, &calls), WithMaxPages(2))

		markets, err := c.GetAllMarketsWithOptions(context.Background(), GetMarketsOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(markets) != 2 || calls.Load() != 2 {
			t.Errorf("got %d markets in %d calls, want 2 in 2", len(markets), calls.Load())
		}
	})

	t.Run("error aborts", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		var apiErr *APIError
		_, err := c.GetAllMarketsWithOptions(context.Background(), GetMarketsOptions{})
		if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
			t.Errorf("error = %v, want 404 APIError", err)
		}
	})
}

func TestGetMarket(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/KXHIGHNY-25JUN13-B75.5" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(SingleMarketResponse{Market: APIMarket{
			Ticker:      "KXHIGHNY-25JUN13-B75.5",
			YesSubTitle: "75° to 76°",
			NoAsk:       cents(40),
		}})
	})

	m, err := c.GetMarket(context.Background(), "KXHIGHNY-25JUN13-B75.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.YesSubTitle != "75° to 76°" || m.NoAsk == nil || *m.NoAsk != 40 {
		t.Errorf("market = %+v", m)
	}

	if _, err := c.GetMarket(context.Background(), "NOPE"); err == nil || !strings.Contains(err.Error(), "get market NOPE") {
		t.Errorf("error = %v, want wrapped not found", err)
	}
}

type signerFunc func(*http.Request) error

func (f signerFunc) Sign(req *http.Request) error { return f(req) }
