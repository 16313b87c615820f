package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "markets.json")

	in := []APIMarket{
		{Ticker: "KXHIGHNY-25JUN13-B81.5", YesSubTitle: "81° to 82°", NoAsk: cents(90)},
		{Ticker: "KXHIGHNY-25JUN13-T83", YesSubTitle: "83° or above", NoAsk: cents(97)},
	}
	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("snapshot is not a JSON object: %v", err)
	}
	if _, ok := raw["markets"]; !ok {
		t.Error("snapshot missing \"markets\" key")
	}

	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(out) != 2 || out[1].Ticker != in[1].Ticker || out[1].NoAsk == nil || *out[1].NoAsk != 97 {
		t.Errorf("ReadSnapshot = %+v", out)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("snapshot dir has %d entries, want 1 (no temp files left)", len(entries))
	}
}

func TestReadSnapshotErrors(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{"), 0o644)
	if _, err := ReadSnapshot(path); err == nil {
		t.Error("expected error for malformed file")
	}
}

func newMarketServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Query().Get("series_ticker") != "KXHIGHNY" {
			t.Errorf("series_ticker = %q", r.URL.Query().Get("series_ticker"))
		}
		if r.URL.Query().Get("status") != "open" {
			t.Errorf("status = %q", r.URL.Query().Get("status"))
		}
		json.NewEncoder(w).Encode(MarketsResponse{
			Markets: []APIMarket{
				{Ticker: "KXHIGHNY-25JUN13-B81.5", YesSubTitle: "81° to 82°", NoAsk: cents(90)},
			},
		})
	}))
}

func TestMarketFeedWriteThenRead(t *testing.T) {
	var hits int32
	server := newMarketServer(t, &hits)
	defer server.Close()

	path := filepath.Join(t.TempDir(), "markets.json")
	client := NewClient(server.URL, "")

	writer := NewMarketFeed(client, "KXHIGHNY", WithSnapshot(path, SnapshotWrite))
	markets, err := writer.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("FetchMarkets: %v", err)
	}
	if len(markets) != 1 || markets[0].DateToken != "25JUN13" {
		t.Fatalf("markets = %+v", markets)
	}

	reader := NewMarketFeed(nil, "KXHIGHNY", WithSnapshot(path, SnapshotRead))
	replayed, err := reader.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("FetchMarkets(read): %v", err)
	}
	if len(replayed) != 1 || replayed[0] != markets[0] {
		t.Errorf("replayed = %+v, want %+v", replayed, markets)
	}
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

func TestMarketFeedErrors(t *testing.T) {
	feed := NewMarketFeed(nil, "KXHIGHNY")
	if _, err := feed.FetchMarkets(context.Background()); err == nil {
		t.Error("expected error without client")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	feed = NewMarketFeed(NewClient(server.URL, ""), "KXHIGHNY")
	if _, err := feed.FetchMarkets(context.Background()); err == nil {
		t.Error("expected error from API")
	}
}
