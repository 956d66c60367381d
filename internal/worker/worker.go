package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper removes expired password-reset tokens and reports how many went.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

type Config struct {
	PollInterval time.Duration
	SweepTimeout time.Duration
	MaxBackoff   time.Duration
}

type Worker struct {
	cfg     Config
	sweeper Sweeper
	log     *slog.Logger

	readyMu sync.RWMutex
	ready   bool

	stats Stats

	// tick is swapped in tests
	after func(d time.Duration) <-chan time.Time
}

func New(cfg Config, sweeper Sweeper, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = 5 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:     cfg,
		sweeper: sweeper,
		log:     log,
		after:   time.After,
	}
}

// Run sweeps once immediately, then every PollInterval until ctx is done.
// Consecutive failures push the next attempt out with exponential backoff.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	w.log.Info("janitor started", "interval", w.cfg.PollInterval.String())

	failures := 0
	for {
		if err := w.SweepOnce(ctx); err != nil {
			failures++
		} else {
			failures = 0
		}

		wait := w.cfg.PollInterval
		if failures > 0 {
			wait = ExponentialBackoff(failures-1, time.Second, w.cfg.MaxBackoff)
			w.log.Warn("sweep failed, backing off", "failures", failures, "retry_in", wait.String())
		}

		select {
		case <-ctx.Done():
			w.log.Info("janitor received shutdown signal")
			return nil
		case <-w.after(wait):
		}
	}
}

// SweepOnce runs a single bounded sweep.
func (w *Worker) SweepOnce(ctx context.Context) error {
	sctx, cancel := context.WithTimeout(ctx, w.cfg.SweepTimeout)
	defer cancel()

	start := time.Now()
	n, err := w.sweeper.SweepExpired(sctx)
	if err != nil {
		w.stats.recordFailure()
		w.log.Error("reset token sweep failed", "err", err)
		return err
	}

	w.stats.recordSuccess(n)
	if n > 0 {
		w.log.Info("reset tokens swept", "count", n, "took_ms", time.Since(start).Milliseconds())
	}
	return nil
}

func (w *Worker) Stats() StatsSnapshot {
	return w.stats.Snapshot()
}

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
