package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Clock supplies "today" to the worker so cycles are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Materializer turns due recurring templates into posted transactions.
type Materializer interface {
	MaterializeDueRecurring(ctx context.Context, asOf time.Time) (int, error)
}

// Sweeper runs the bill reminder passes. It swallows its own errors.
type Sweeper interface {
	RunReminderSweep(ctx context.Context, today time.Time)
}

// RecurringWorker is the single background loop driving recurring
// materialization and bill reminders. Run one instance per deployment:
// replicas would double-fire reminders, there is no cross-node guard.
type RecurringWorker struct {
	materializer Materializer
	sweeper      Sweeper
	clock        Clock
	interval     time.Duration
}

func NewRecurringWorker(materializer Materializer, sweeper Sweeper, clock Clock, interval time.Duration) *RecurringWorker {
	if clock == nil {
		clock = SystemClock{}
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &RecurringWorker{
		materializer: materializer,
		sweeper:      sweeper,
		clock:        clock,
		interval:     interval,
	}
}

// Run executes cycles until the context is cancelled. Cancellation is
// observed at the cycle boundary; a cycle in flight finishes first.
func (w *RecurringWorker) Run(ctx context.Context) {
	logrus.WithField("interval", w.interval.String()).Info("Recurring worker started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.RunCycle(ctx)
		select {
		case <-ctx.Done():
			logrus.Info("Recurring worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunCycle runs one materialization plus reminder sweep for "today".
// Failures are logged and never stop the loop.
func (w *RecurringWorker) RunCycle(ctx context.Context) {
	today := w.clock.Now()

	if created, err := w.materializer.MaterializeDueRecurring(ctx, today); err != nil {
		logrus.WithError(err).Error("Recurring materialization failed")
	} else if created > 0 {
		logrus.WithField("created", created).Info("Recurring materialization cycle completed")
	}

	w.sweeper.RunReminderSweep(ctx, today)
}
