package store

import (
	"context"
	"time"

	"github.com/sells-group/scaling-cli/internal/model"
)

// CycleFilter specifies criteria for listing cycles.
type CycleFilter struct {
	Status       model.CycleStatus `json:"status,omitempty"`
	CreatedAfter time.Time         `json:"created_after,omitempty"`
	Limit        int               `json:"limit,omitempty"`
	Offset       int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for scaling cycles and the
// process-lifetime performance counters.
type Store interface {
	// Cycles
	CreateCycle(ctx context.Context, candidates int) (*model.CycleRecord, error)
	CompleteCycle(ctx context.Context, cycleID string, summary *model.CycleSummary) error
	FailCycle(ctx context.Context, cycleID string, cause string) error
	GetCycle(ctx context.Context, cycleID string) (*model.CycleRecord, error)
	ListCycles(ctx context.Context, filter CycleFilter) ([]model.CycleRecord, error)

	// Counters
	SaveCounters(ctx context.Context, counters model.PerformanceCounters) error
	LoadCounters(ctx context.Context) (*model.PerformanceCounters, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
