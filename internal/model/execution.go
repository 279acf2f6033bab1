package model

import "time"

// ExecutionStatus is the outcome of a single execution unit.
type ExecutionStatus string

const (
	StatusSuccess       ExecutionStatus = "success"
	StatusFailed        ExecutionStatus = "failed"
	StatusTimeout       ExecutionStatus = "timeout"
	StatusUnknownAction ExecutionStatus = "unknown_action"
)

// ExecutionResult is the per-action outcome within one cycle's batch.
type ExecutionResult struct {
	CandidateID    string          `json:"candidate_id"`
	Kind           ActionKind      `json:"action_type"`
	Investment     float64         `json:"investment"`
	ExpectedReturn float64         `json:"expected_return"`
	Status         ExecutionStatus `json:"status"`
	Detail         string          `json:"detail,omitempty"`
}

// ExecutionReport aggregates one batch of execution units.
type ExecutionReport struct {
	ExecutedActions int               `json:"executed_actions"`
	FailedActions   int               `json:"failed_actions"`
	TotalInvestment float64           `json:"total_investment"`
	ExpectedReturn  float64           `json:"expected_return"`
	SuccessRate     float64           `json:"success_rate"` // percent
	ExecutionTime   float64           `json:"execution_time"` // seconds
	Results         []ExecutionResult `json:"results,omitempty"`
}

// TotalUnits returns the number of units the report covers.
func (r *ExecutionReport) TotalUnits() int {
	return r.ExecutedActions + r.FailedActions
}

// PerformanceCounters are process-lifetime running totals, written by the
// executor after each cycle's aggregation. SuccessRate is the last cycle's
// rate, overwritten rather than averaged.
type PerformanceCounters struct {
	ActionsExecuted  int       `json:"actions_executed"`
	SuccessRate      float64   `json:"success_rate"` // percent, last cycle
	CumulativeReturn float64   `json:"cumulative_return"`
	LastCycle        time.Time `json:"last_cycle"`
}
