// Package executor fans a ranked batch of scaling plans out to effectors
// under a shared deadline and aggregates the outcomes into a report.
package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/scaling-cli/internal/effector"
	"github.com/sells-group/scaling-cli/internal/model"
)

// Executor runs one execution unit per (candidate, action) pair concurrently.
// The batch shares a single deadline: units still pending when it expires are
// reported as timed out with zero investment and zero return.
type Executor struct {
	registry *effector.Registry
	timeout  time.Duration
}

// New returns an Executor. timeout <= 0 falls back to 30 seconds.
func New(registry *effector.Registry, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Executor{registry: registry, timeout: timeout}
}

// unit is one schedulable (candidate, action) pair.
type unit struct {
	candidate model.Candidate
	action    model.Action
}

// indexed carries a finished unit's result back to the collector.
type indexed struct {
	i   int
	res model.ExecutionResult
}

// Execute runs every action of every ranked candidate and aggregates the
// results. It always returns a well-formed report; a batch-level failure is
// reported as a single failed action with no per-unit results.
func (e *Executor) Execute(ctx context.Context, ranked []model.RankedCandidate) *model.ExecutionReport {
	start := time.Now()

	if e.registry == nil {
		zap.L().Error("executor: no effector registry configured")
		return &model.ExecutionReport{FailedActions: 1, ExecutionTime: time.Since(start).Seconds()}
	}

	var units []unit
	for _, rc := range ranked {
		for _, action := range rc.Plan.Actions {
			units = append(units, unit{candidate: rc.Candidate, action: action})
		}
	}
	if len(units) == 0 {
		return &model.ExecutionReport{SuccessRate: 0, ExecutionTime: time.Since(start).Seconds()}
	}

	unitCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// Buffered so stragglers finishing after the deadline never block;
	// their sends land in the channel and are discarded.
	done := make(chan indexed, len(units))
	for i, u := range units {
		go func(i int, u unit) {
			done <- indexed{i: i, res: e.runUnit(unitCtx, u)}
		}(i, u)
	}

	results := make([]model.ExecutionResult, len(units))
	received := make([]bool, len(units))
	deadline := time.NewTimer(e.timeout)
	defer deadline.Stop()

	pending := len(units)
collect:
	for pending > 0 {
		select {
		case d := <-done:
			results[d.i] = d.res
			received[d.i] = true
			pending--
		case <-deadline.C:
			break collect
		case <-ctx.Done():
			break collect
		}
	}
	for i, u := range units {
		if !received[i] {
			results[i] = model.ExecutionResult{
				CandidateID: u.candidate.ID,
				Kind:        u.action.Kind,
				Status:      model.StatusTimeout,
				Detail:      "deadline exceeded",
			}
		}
	}

	report := aggregate(results)
	report.ExecutionTime = time.Since(start).Seconds()

	zap.L().Info("executor: batch complete",
		zap.Int("executed", report.ExecutedActions),
		zap.Int("failed", report.FailedActions),
		zap.Float64("success_rate", report.SuccessRate),
		zap.Float64("investment", report.TotalInvestment),
	)
	return report
}

// runUnit applies one action to one candidate, containing panics and mapping
// every failure mode onto an ExecutionResult.
func (e *Executor) runUnit(ctx context.Context, u unit) (res model.ExecutionResult) {
	res = model.ExecutionResult{
		CandidateID: u.candidate.ID,
		Kind:        u.action.Kind,
	}
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("executor: effector panicked",
				zap.String("action", string(u.action.Kind)),
				zap.String("candidate", u.candidate.ID),
				zap.Any("panic", r),
			)
			res.Status = model.StatusFailed
			res.Detail = fmt.Sprintf("panic: %v", r)
			res.Investment = 0
			res.ExpectedReturn = 0
		}
	}()

	eff, ok := e.registry.Lookup(u.action.Kind)
	if !ok {
		res.Status = model.StatusUnknownAction
		res.Detail = "no effector registered"
		return res
	}

	out, err := eff.Apply(ctx, u.action, u.candidate)
	if err != nil {
		zap.L().Warn("executor: action failed",
			zap.String("action", string(u.action.Kind)),
			zap.String("candidate", u.candidate.ID),
			zap.Error(err),
		)
		res.Status = model.StatusFailed
		res.Detail = err.Error()
		return res
	}
	if out.Status != model.StatusSuccess {
		res.Status = model.StatusFailed
		res.Detail = out.Detail
		return res
	}

	res.Status = model.StatusSuccess
	res.Detail = out.Detail
	res.Investment = u.action.Budget
	res.ExpectedReturn = u.action.ExpectedReturn
	return res
}

// aggregate folds per-unit results into batch totals. Only successful units
// contribute investment and return.
func aggregate(results []model.ExecutionResult) *model.ExecutionReport {
	report := &model.ExecutionReport{Results: results}
	for _, r := range results {
		if r.Status == model.StatusSuccess {
			report.ExecutedActions++
			report.TotalInvestment += r.Investment
			report.ExpectedReturn += r.ExpectedReturn
		} else {
			report.FailedActions++
		}
	}
	if total := report.TotalUnits(); total > 0 {
		report.SuccessRate = float64(report.ExecutedActions) / float64(total) * 100
	}
	return report
}
