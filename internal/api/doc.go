// Package api is a read-only client for the Kalshi trade REST API, scoped to
// what the scanner needs: listing the open markets of one series.
//
// REST endpoints:
//   - Production: https://api.elections.kalshi.com/trade-api/v2
//   - Demo: https://demo-api.kalshi.co/trade-api/v2
//
// MarketFeed wraps the client with the on-disk snapshot so a run can be
// replayed without network access.
package api
