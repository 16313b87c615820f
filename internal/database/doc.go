// Package database provides the PostgreSQL connection pool for the decision
// journal.
//
// The journal is optional. When enabled, every evaluated market of a run is
// recorded in market_decisions keyed by (run_id, ticker).
package database
