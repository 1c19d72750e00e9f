package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/event-finance/internal/application/service"
)

type countingSweeper struct {
	mu      sync.Mutex
	calls   int
	removed int
}

func (s *countingSweeper) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.removed
}

func (s *countingSweeper) Pending() int { return 0 }

func (s *countingSweeper) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubWorker struct {
	name     string
	startErr error
	started  bool
	stopped  bool
}

func (w *stubWorker) Start(ctx context.Context) error {
	w.started = w.startErr == nil
	return w.startErr
}

func (w *stubWorker) Stop() error {
	w.stopped = true
	return nil
}

func (w *stubWorker) Name() string { return w.name }

func TestTicketSweepWorker_RunsPeriodically(t *testing.T) {
	sweeper := &countingSweeper{removed: 2}
	w := NewTicketSweepWorker(5*time.Millisecond, sweeper, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()), "second start is rejected")

	require.Eventually(t, func() bool { return sweeper.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	calls := sweeper.callCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, sweeper.callCount(), "no sweeps after Stop")

	stats := w.Stats()
	assert.Equal(t, calls, stats.Runs)
	assert.Equal(t, 2*calls, stats.Removed)
}

func TestTicketSweepWorker_RemovesExpiredTickets(t *testing.T) {
	registry := service.NewDeletionRegistry(time.Millisecond)
	registry.Request(1, 1, "u")
	registry.Request(1, 2, "u")
	time.Sleep(5 * time.Millisecond)

	w := NewTicketSweepWorker(time.Hour, registry, zap.NewNop())

	assert.Equal(t, 2, w.SweepOnce())
	assert.Equal(t, 0, registry.Pending())
}

func TestNewTicketSweepWorker_DefaultInterval(t *testing.T) {
	w := NewTicketSweepWorker(0, &countingSweeper{}, zap.NewNop())
	assert.Equal(t, time.Minute, w.interval)
	assert.Equal(t, "TicketSweepWorker", w.Name())
}

func TestWorkerManager(t *testing.T) {
	m := NewWorkerManager(zap.NewNop())
	good := &stubWorker{name: "good"}
	bad := &stubWorker{name: "bad", startErr: errors.New("no")}
	m.Register(good)
	m.Register(bad)
	assert.Equal(t, 2, m.GetWorkerCount())

	err := m.StartAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.True(t, good.started)
	assert.True(t, m.IsRunning())

	assert.Error(t, m.StartAll(context.Background()))

	require.NoError(t, m.StopAll())
	assert.True(t, good.stopped)
	assert.False(t, m.IsRunning())
	require.NoError(t, m.StopAll())
}
