// Package scanner runs one pass of the pipeline: fetch the station series,
// correct it, find the day's maximum, then score every open market of the
// configured series for that day.
//
// A missing temperature feed halts the run before any market is touched.
// Per-market problems (unparseable conditions, invalid prices) skip that
// market only. Journal and notification failures are logged and never fail
// the run.
package scanner
