// Package monitoring builds point-in-time health views over persisted cycles
// and evaluates them against configured thresholds.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scaling-cli/internal/model"
	"github.com/sells-group/scaling-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of system health.
type MetricsSnapshot struct {
	// Cycle metrics (within lookback window).
	CyclesTotal         int       `json:"cycles_total"`
	CyclesComplete      int       `json:"cycles_complete"`
	CyclesFailed        int       `json:"cycles_failed"`
	CyclesNoOpportunity int       `json:"cycles_no_opportunity"`
	CyclesRunning       int       `json:"cycles_running"`
	CycleFailRate       float64   `json:"cycle_fail_rate"`
	ActionsExecuted     int       `json:"actions_executed"`
	ActionsFailed       int       `json:"actions_failed"`
	TotalInvestment     float64   `json:"total_investment"`
	TotalExpectedReturn float64   `json:"total_expected_return"`
	AvgSuccessRate      float64   `json:"avg_success_rate"`
	LastCycleAt         time.Time `json:"last_cycle_at"`

	// Process-lifetime counters, if saved.
	Counters *model.PerformanceCounters `json:"counters,omitempty"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of cycle metrics over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	cycles, err := c.store.ListCycles(ctx, store.CycleFilter{
		CreatedAfter: cutoff,
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list cycles")
	}

	snap.CyclesTotal = len(cycles)
	var successRateSum float64
	var reported int

	for _, cy := range cycles {
		switch cy.Status {
		case model.CycleStatusComplete:
			snap.CyclesComplete++
		case model.CycleStatusFailed:
			snap.CyclesFailed++
		case model.CycleStatusNoOpportunities:
			snap.CyclesNoOpportunity++
		case model.CycleStatusRunning:
			snap.CyclesRunning++
		}
		if cy.CreatedAt.After(snap.LastCycleAt) {
			snap.LastCycleAt = cy.CreatedAt
		}
		if cy.Summary == nil || cy.Summary.Report == nil {
			continue
		}
		r := cy.Summary.Report
		snap.ActionsExecuted += r.ExecutedActions
		snap.ActionsFailed += r.FailedActions
		snap.TotalInvestment += r.TotalInvestment
		snap.TotalExpectedReturn += r.ExpectedReturn
		successRateSum += r.SuccessRate
		reported++
	}

	if finished := snap.CyclesComplete + snap.CyclesFailed; finished > 0 {
		snap.CycleFailRate = float64(snap.CyclesFailed) / float64(finished)
	}
	if reported > 0 {
		snap.AvgSuccessRate = successRateSum / float64(reported)
	}

	counters, err := c.store.LoadCounters(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: load counters")
	}
	snap.Counters = counters

	return snap, nil
}
