package executor

import (
	"sync"
	"time"

	"github.com/sells-group/scaling-cli/internal/model"
)

// Tracker accumulates process-lifetime performance counters across cycles.
// Safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	counters model.PerformanceCounters
}

// NewTracker returns a zeroed Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record folds one batch report into the counters. Executed actions and
// cumulative return accumulate; the success rate is overwritten with the
// latest cycle's rate.
func (t *Tracker) Record(report *model.ExecutionReport) model.PerformanceCounters {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counters.ActionsExecuted += report.ExecutedActions
	t.counters.SuccessRate = report.SuccessRate
	t.counters.CumulativeReturn += report.ExpectedReturn
	t.counters.LastCycle = time.Now().UTC()
	return t.counters
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() model.PerformanceCounters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters
}

// Restore replaces the counters, typically with values loaded from the store
// at startup.
func (t *Tracker) Restore(c model.PerformanceCounters) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counters = c
}
