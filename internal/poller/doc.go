// Package poller runs a job immediately and then on a fixed interval.
//
// Each run gets its own timeout. A failed run is logged and counted; the
// next tick runs the job again.
package poller
