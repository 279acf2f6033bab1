package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scaling-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "scaling.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_CycleLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	rec, err := s.CreateCycle(ctx, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, model.CycleStatusRunning, rec.Status)
	assert.Equal(t, 3, rec.Candidates)

	summary := &model.CycleSummary{
		Status:            model.CycleStatusComplete,
		CandidatesScored:  3,
		ScalingCandidates: 2,
		Report: &model.ExecutionReport{
			ExecutedActions: 5,
			SuccessRate:     100,
			TotalInvestment: 780,
			ExpectedReturn:  2040,
		},
		ExecutionTime: 0.42,
	}
	require.NoError(t, s.CompleteCycle(ctx, rec.ID, summary))

	got, err := s.GetCycle(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CycleStatusComplete, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 5, got.Summary.Report.ExecutedActions)
	assert.InDelta(t, 2040.0, got.Summary.Report.ExpectedReturn, 0.001)
}

func TestSQLite_FailCycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	rec, err := s.CreateCycle(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, s.FailCycle(ctx, rec.ID, "candidate source unavailable"))

	got, err := s.GetCycle(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CycleStatusFailed, got.Status)
	assert.Equal(t, "candidate source unavailable", got.Error)
	assert.Nil(t, got.Summary)
}

func TestSQLite_UpdateMissingCycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	err := s.CompleteCycle(ctx, "no-such-id", &model.CycleSummary{Status: model.CycleStatusComplete})
	assert.Error(t, err)
	assert.Error(t, s.FailCycle(ctx, "no-such-id", "boom"))

	_, err = s.GetCycle(ctx, "no-such-id")
	assert.Error(t, err)
}

func TestSQLite_ListCycles(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first, err := s.CreateCycle(ctx, 1)
	require.NoError(t, err)
	second, err := s.CreateCycle(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, s.FailCycle(ctx, first.ID, "boom"))

	all, err := s.ListCycles(ctx, CycleFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := s.ListCycles(ctx, CycleFilter{Status: model.CycleStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, first.ID, failed[0].ID)

	running, err := s.ListCycles(ctx, CycleFilter{Status: model.CycleStatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, second.ID, running[0].ID)

	limited, err := s.ListCycles(ctx, CycleFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := s.ListCycles(ctx, CycleFilter{CreatedAfter: time.Now().UTC().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_CountersRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	loaded, err := s.LoadCounters(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded, "no counters saved yet")

	counters := model.PerformanceCounters{
		ActionsExecuted:  12,
		SuccessRate:      91.7,
		CumulativeReturn: 5400,
		LastCycle:        time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveCounters(ctx, counters))

	loaded, err = s.LoadCounters(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, counters, *loaded)

	counters.ActionsExecuted = 15
	counters.SuccessRate = 80
	require.NoError(t, s.SaveCounters(ctx, counters))

	loaded, err = s.LoadCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, loaded.ActionsExecuted)
	assert.InDelta(t, 80.0, loaded.SuccessRate, 0.001)
}
