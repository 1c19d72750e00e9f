package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TicketSweeper drops expired delete-confirmation tickets
type TicketSweeper interface {
	Sweep() int
	Pending() int
}

// SweeperStats is a snapshot of the sweeper's counters
type SweeperStats struct {
	Runs      int       `json:"runs"`
	Removed   int       `json:"removed"`
	LastSweep time.Time `json:"last_sweep"`
}

// TicketSweepWorker periodically removes expired delete tickets so an
// abandoned delete request does not linger in memory
type TicketSweepWorker struct {
	interval time.Duration
	sweeper  TicketSweeper
	logger   *zap.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	stats     SweeperStats
}

// NewTicketSweepWorker creates the sweeper. A non-positive interval defaults to one minute.
func NewTicketSweepWorker(interval time.Duration, sweeper TicketSweeper, logger *zap.Logger) *TicketSweepWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &TicketSweepWorker{
		interval: interval,
		sweeper:  sweeper,
		logger:   logger,
	}
}

// Start begins the sweep loop in the background
func (w *TicketSweepWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("ticket sweeper already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	go w.loop(loopCtx, w.done)

	w.logger.Info("TicketSweepWorker started", zap.Duration("interval", w.interval))
	return nil
}

// Stop ends the loop and waits for it to exit
func (w *TicketSweepWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	stats := w.Stats()
	w.logger.Info("TicketSweepWorker stopped", zap.Int("runs", stats.Runs), zap.Int("removed", stats.Removed))
	return nil
}

// Name returns the worker name for identification
func (w *TicketSweepWorker) Name() string {
	return "TicketSweepWorker"
}

// Stats returns a copy of the counters
func (w *TicketSweepWorker) Stats() SweeperStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// SweepOnce runs a single sweep and records it
func (w *TicketSweepWorker) SweepOnce() int {
	removed := w.sweeper.Sweep()

	w.mu.Lock()
	w.stats.Runs++
	w.stats.Removed += removed
	w.stats.LastSweep = time.Now()
	w.mu.Unlock()

	if removed > 0 {
		w.logger.Info("Expired delete tickets removed",
			zap.Int("removed", removed),
			zap.Int("pending", w.sweeper.Pending()))
	}
	return removed
}

func (w *TicketSweepWorker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SweepOnce()
		}
	}
}
