package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxPages bounds GetAllMarketsWithOptions.
	DefaultMaxPages = 1500

	// DefaultPaginationTimeout applies when the caller's context has no deadline.
	DefaultPaginationTimeout = 10 * time.Minute

	maxPageSize = 1000
)

// GetMarkets fetches a page of markets.
func (c *Client) GetMarkets(ctx context.Context, opts GetMarketsOptions) (*MarketsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.EventTicker != "" {
		query.Set("event_ticker", opts.EventTicker)
	}
	if opts.SeriesTicker != "" {
		query.Set("series_ticker", opts.SeriesTicker)
	}
	if len(opts.Tickers) > 0 {
		query.Set("tickers", strings.Join(opts.Tickers, ","))
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var resp MarketsResponse
	if err := c.get(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return &resp, nil
}

// GetAllMarketsWithOptions fetches all markets matching the given options by
// following the cursor. It stops after the client's page cap and returns what
// it has, logging a warning.
func (c *Client) GetAllMarketsWithOptions(ctx context.Context, opts GetMarketsOptions) ([]APIMarket, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPaginationTimeout)
		defer cancel()
	}

	var allMarkets []APIMarket
	if opts.Limit <= 0 || opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}

	for page := 1; ; page++ {
		resp, err := c.GetMarkets(ctx, opts)
		if err != nil {
			return nil, err
		}

		allMarkets = append(allMarkets, resp.Markets...)

		if resp.Cursor == "" {
			break
		}
		if page >= c.maxPages {
			c.logger.Warn("market pagination capped",
				"pages", page,
				"markets", len(allMarkets),
			)
			break
		}
		opts.Cursor = resp.Cursor
	}

	return allMarkets, nil
}

// GetMarket fetches a single market by ticker.
func (c *Client) GetMarket(ctx context.Context, ticker string) (*APIMarket, error) {
	var resp SingleMarketResponse
	if err := c.get(ctx, "/markets/"+ticker, nil, &resp); err != nil {
		return nil, fmt.Errorf("get market %s: %w", ticker, err)
	}
	return &resp.Market, nil
}
