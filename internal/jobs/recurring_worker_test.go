package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type recordingMaterializer struct {
	mu    sync.Mutex
	dates []time.Time
	err   error
}

func (m *recordingMaterializer) MaterializeDueRecurring(_ context.Context, asOf time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dates = append(m.dates, asOf)
	return 1, m.err
}

func (m *recordingMaterializer) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dates)
}

type recordingSweeper struct {
	mu    sync.Mutex
	dates []time.Time
}

func (s *recordingSweeper) RunReminderSweep(_ context.Context, today time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dates = append(s.dates, today)
}

func (s *recordingSweeper) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dates)
}

func TestRunCycleUsesInjectedClock(t *testing.T) {
	today := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	materializer := &recordingMaterializer{}
	sweeper := &recordingSweeper{}

	worker := NewRecurringWorker(materializer, sweeper, fixedClock{now: today}, time.Minute)
	worker.RunCycle(context.Background())

	require.Len(t, materializer.dates, 1)
	assert.Equal(t, today, materializer.dates[0])
	require.Len(t, sweeper.dates, 1)
	assert.Equal(t, today, sweeper.dates[0])
}

func TestRunCycleSweepsEvenWhenMaterializationFails(t *testing.T) {
	materializer := &recordingMaterializer{err: errors.New("store down")}
	sweeper := &recordingSweeper{}

	worker := NewRecurringWorker(materializer, sweeper, fixedClock{now: time.Now()}, time.Minute)
	worker.RunCycle(context.Background())

	assert.Equal(t, 1, sweeper.calls(), "a failed materialization must not skip the reminder sweep")
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	materializer := &recordingMaterializer{}
	sweeper := &recordingSweeper{}

	worker := NewRecurringWorker(materializer, sweeper, fixedClock{now: time.Now()}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	// Let a few cycles run, then cancel.
	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}

	assert.GreaterOrEqual(t, materializer.calls(), 1)
	assert.Equal(t, materializer.calls(), sweeper.calls())
}

func TestNewRecurringWorkerDefaults(t *testing.T) {
	worker := NewRecurringWorker(&recordingMaterializer{}, &recordingSweeper{}, nil, 0)
	assert.Equal(t, time.Minute, worker.interval)
	assert.NotNil(t, worker.clock)
}
