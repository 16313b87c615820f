package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Config holds poller configuration.
type Config struct {
	Interval   time.Duration // Time between runs (default: 5m)
	RunTimeout time.Duration // Per-run deadline (default: 2m)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:   5 * time.Minute,
		RunTimeout: 2 * time.Minute,
	}
}

// Stats are cumulative run counters.
type Stats struct {
	Runs     int64
	Failures int64
}

// Poller runs a Job on an interval.
type Poller struct {
	cfg    Config
	job    Job
	logger *slog.Logger

	runs     atomic.Int64
	failures atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. Zero config fields take their defaults.
func New(cfg Config, job Job, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = def.RunTimeout
	}
	return &Poller{
		cfg:    cfg,
		job:    job,
		logger: logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started",
		"interval", p.cfg.Interval,
		"run_timeout", p.cfg.RunTimeout,
	)

	return nil
}

// Stop cancels the loop and any in-flight run, then waits for it to exit.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped", "runs", p.runs.Load(), "failures", p.failures.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the run counters.
func (p *Poller) Stats() Stats {
	return Stats{
		Runs:     p.runs.Load(),
		Failures: p.failures.Load(),
	}
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.runOnce()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.runOnce()
		}
	}
}

// RunOnce executes the job once with the configured timeout.
func (p *Poller) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.RunTimeout)
	defer cancel()

	p.runs.Add(1)
	if err := p.job(ctx); err != nil {
		p.failures.Add(1)
		return err
	}
	return nil
}

func (p *Poller) runOnce() {
	start := time.Now()
	if err := p.RunOnce(p.ctx); err != nil {
		if p.ctx.Err() != nil {
			return
		}
		p.logger.Warn("run failed", "error", err, "duration", time.Since(start))
		return
	}
	p.logger.Debug("run complete", "duration", time.Since(start))
}
