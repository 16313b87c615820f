// Package metrics provides Prometheus metrics for the scanner.
//
// Key metrics:
//   - Scan runs by status and their duration
//   - Markets evaluated, skipped, and signalled
//   - Day maximum as reported and as officially rounded
//   - Notification and journal failures
package metrics
