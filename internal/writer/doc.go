// Package writer records scan decisions in PostgreSQL.
//
// Writes are append-only: a decision already recorded for (run_id, ticker)
// is left alone.
package writer
