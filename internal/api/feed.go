package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/kalshi-highs/internal/model"
)

// SnapshotMode controls how MarketFeed uses the snapshot file.
type SnapshotMode string

const (
	SnapshotOff   SnapshotMode = "off"   // network only
	SnapshotWrite SnapshotMode = "write" // network, then save
	SnapshotRead  SnapshotMode = "read"  // file only
)

// MarketFeed lists the open markets of one series.
type MarketFeed struct {
	client       *Client
	seriesTicker string
	status       string
	snapshotPath string
	mode         SnapshotMode
	logger       *slog.Logger
}

// FeedOption configures a MarketFeed.
type FeedOption func(*MarketFeed)

// WithSnapshot sets the snapshot file and how it is used.
func WithSnapshot(path string, mode SnapshotMode) FeedOption {
	return func(f *MarketFeed) {
		f.snapshotPath = path
		f.mode = mode
	}
}

// WithStatus overrides the market status filter (default "open").
func WithStatus(status string) FeedOption {
	return func(f *MarketFeed) {
		f.status = status
	}
}

// WithFeedLogger sets the logger.
func WithFeedLogger(logger *slog.Logger) FeedOption {
	return func(f *MarketFeed) {
		f.logger = logger
	}
}

// NewMarketFeed creates a feed for seriesTicker. client may be nil when the
// feed only reads snapshots.
func NewMarketFeed(client *Client, seriesTicker string, opts ...FeedOption) *MarketFeed {
	f := &MarketFeed{
		client:       client,
		seriesTicker: seriesTicker,
		status:       "open",
		mode:         SnapshotOff,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchMarkets returns the series' markets. A snapshot write failure is
// logged and does not fail the fetch.
func (f *MarketFeed) FetchMarkets(ctx context.Context) ([]model.Market, error) {
	var raw []APIMarket

	switch f.mode {
	case SnapshotRead:
		markets, err := ReadSnapshot(f.snapshotPath)
		if err != nil {
			return nil, err
		}
		raw = markets

	default:
		if f.client == nil {
			return nil, fmt.Errorf("market feed for %s has no client", f.seriesTicker)
		}
		markets, err := f.client.GetAllMarketsWithOptions(ctx, GetMarketsOptions{
			SeriesTicker: f.seriesTicker,
			Status:       f.status,
		})
		if err != nil {
			return nil, err
		}
		raw = markets

		if f.mode == SnapshotWrite && f.snapshotPath != "" {
			if err := WriteSnapshot(f.snapshotPath, raw); err != nil {
				f.logger.Warn("failed to write market snapshot",
					"path", f.snapshotPath,
					"error", err,
				)
			}
		}
	}

	out := make([]model.Market, 0, len(raw))
	for i := range raw {
		out = append(out, raw[i].ToModel())
	}

	f.logger.Debug("fetched markets",
		"series", f.seriesTicker,
		"count", len(out),
		"mode", f.mode,
	)
	return out, nil
}
