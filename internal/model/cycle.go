package model

import "time"

// CycleStatus represents the state of a persisted scaling cycle.
type CycleStatus string

const (
	CycleStatusRunning         CycleStatus = "running"
	CycleStatusComplete        CycleStatus = "complete"
	CycleStatusNoOpportunities CycleStatus = "no_opportunities"
	CycleStatusFailed          CycleStatus = "failed"
)

// CycleSummary is the outcome of one RunCycle invocation.
type CycleSummary struct {
	Status            CycleStatus         `json:"status"`
	Message           string              `json:"message"`
	CandidatesScored  int                 `json:"candidates_scored"`
	ScalingCandidates int                 `json:"scaling_candidates"`
	Report            *ExecutionReport    `json:"execution_results,omitempty"`
	Counters          PerformanceCounters `json:"performance_metrics"`
	ExecutionTime     float64             `json:"execution_time"` // seconds
}

// CycleRecord is a persisted scaling cycle.
type CycleRecord struct {
	ID         string        `json:"id"`
	Status     CycleStatus   `json:"status"`
	Candidates int           `json:"candidates"`
	Summary    *CycleSummary `json:"summary,omitempty"`
	Error      string        `json:"error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
