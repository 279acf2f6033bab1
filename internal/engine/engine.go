// Package engine orchestrates one scaling cycle: score candidates, execute
// the ranked plans, fold the results into the performance counters and
// persist the outcome.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scaling-cli/internal/config"
	"github.com/sells-group/scaling-cli/internal/executor"
	"github.com/sells-group/scaling-cli/internal/model"
	"github.com/sells-group/scaling-cli/internal/scorer"
	"github.com/sells-group/scaling-cli/internal/source"
	"github.com/sells-group/scaling-cli/internal/store"
)

// ErrCycleRunning is returned when RunCycle is invoked while a cycle is
// already in flight. Cycles never overlap.
var ErrCycleRunning = eris.New("engine: a cycle is already running")

// Engine runs scaling cycles. Safe for concurrent use; at most one cycle
// executes at a time.
type Engine struct {
	cfg     *config.Config
	store   store.Store
	exec    *executor.Executor
	tracker *executor.Tracker

	mu sync.Mutex
}

// New assembles an Engine. st may be nil, in which case cycles are not
// persisted.
func New(cfg *config.Config, st store.Store, exec *executor.Executor, tracker *executor.Tracker) *Engine {
	if tracker == nil {
		tracker = executor.NewTracker()
	}
	return &Engine{cfg: cfg, store: st, exec: exec, tracker: tracker}
}

// Counters returns the current performance counters.
func (e *Engine) Counters() model.PerformanceCounters {
	return e.tracker.Snapshot()
}

// RestoreCounters loads previously saved counters from the store, if any.
func (e *Engine) RestoreCounters(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	counters, err := e.store.LoadCounters(ctx)
	if err != nil {
		return eris.Wrap(err, "engine: restore counters")
	}
	if counters != nil {
		e.tracker.Restore(*counters)
	}
	return nil
}

// RunCycle scores the given candidates, executes the ranked plans and returns
// a summary. A second concurrent invocation fails fast with ErrCycleRunning.
// Persistence is best effort: store failures are logged and do not fail the
// cycle.
func (e *Engine) RunCycle(ctx context.Context, candidates []model.Candidate) (*model.CycleSummary, error) {
	if !e.mu.TryLock() {
		return nil, ErrCycleRunning
	}
	defer e.mu.Unlock()

	start := time.Now()
	rec := e.createRecord(ctx, len(candidates))

	if err := source.Validate(candidates); err != nil {
		summary := &model.CycleSummary{
			Status:        model.CycleStatusFailed,
			Message:       err.Error(),
			Report:        &model.ExecutionReport{FailedActions: 1},
			Counters:      e.tracker.Snapshot(),
			ExecutionTime: time.Since(start).Seconds(),
		}
		e.failRecord(ctx, rec, err)
		return summary, err
	}

	ranked := scorer.ScoreCandidates(candidates, e.cfg.Scorer)
	if len(ranked) == 0 {
		summary := &model.CycleSummary{
			Status:           model.CycleStatusNoOpportunities,
			Message:          "no candidates met the scaling criteria",
			CandidatesScored: len(candidates),
			Counters:         e.tracker.Snapshot(),
			ExecutionTime:    time.Since(start).Seconds(),
		}
		e.completeRecord(ctx, rec, summary)
		zap.L().Info("engine: cycle found no opportunities",
			zap.Int("candidates", len(candidates)),
		)
		return summary, nil
	}

	report := e.exec.Execute(ctx, ranked)
	counters := e.tracker.Record(report)
	e.saveCounters(ctx, counters)

	summary := &model.CycleSummary{
		Status:            model.CycleStatusComplete,
		Message:           fmt.Sprintf("executed %d of %d scaling actions", report.ExecutedActions, report.TotalUnits()),
		CandidatesScored:  len(candidates),
		ScalingCandidates: len(ranked),
		Report:            report,
		Counters:          counters,
		ExecutionTime:     time.Since(start).Seconds(),
	}
	e.completeRecord(ctx, rec, summary)

	zap.L().Info("engine: cycle complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(ranked)),
		zap.Int("executed", report.ExecutedActions),
		zap.Int("failed", report.FailedActions),
		zap.Float64("investment", report.TotalInvestment),
		zap.Float64("expected_return", report.ExpectedReturn),
	)
	return summary, nil
}

func (e *Engine) createRecord(ctx context.Context, candidates int) *model.CycleRecord {
	if e.store == nil {
		return nil
	}
	rec, err := e.store.CreateCycle(ctx, candidates)
	if err != nil {
		zap.L().Warn("engine: create cycle record", zap.Error(err))
		return nil
	}
	return rec
}

func (e *Engine) completeRecord(ctx context.Context, rec *model.CycleRecord, summary *model.CycleSummary) {
	if e.store == nil || rec == nil {
		return
	}
	if err := e.store.CompleteCycle(ctx, rec.ID, summary); err != nil {
		zap.L().Warn("engine: complete cycle record",
			zap.String("cycle_id", rec.ID),
			zap.Error(err),
		)
	}
}

func (e *Engine) failRecord(ctx context.Context, rec *model.CycleRecord, cause error) {
	if e.store == nil || rec == nil {
		return
	}
	if err := e.store.FailCycle(ctx, rec.ID, cause.Error()); err != nil {
		zap.L().Warn("engine: fail cycle record",
			zap.String("cycle_id", rec.ID),
			zap.Error(err),
		)
	}
}

func (e *Engine) saveCounters(ctx context.Context, counters model.PerformanceCounters) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveCounters(ctx, counters); err != nil {
		zap.L().Warn("engine: save counters", zap.Error(err))
	}
}
