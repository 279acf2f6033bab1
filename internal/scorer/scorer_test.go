package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scaling-cli/internal/model"
)

func TestDeriveMetrics_NoHistoryDefaults(t *testing.T) {
	m := DeriveMetrics(model.Candidate{ID: "p1", DailyRevenue: 100})

	assert.InDelta(t, 100.0, m.CurrentRevenue, 0.001)
	assert.InDelta(t, 25.0, m.GrowthRate, 0.001)
	assert.InDelta(t, 2.5, m.ConversionRate, 0.001)
	assert.InDelta(t, 1000.0, m.TrafficVolume, 0.001)
	assert.InDelta(t, 0.7, m.ProfitMargin, 0.001)
	assert.InDelta(t, 50.0, m.AcquisitionCost, 0.001)
	assert.InDelta(t, 200.0, m.LifetimeValue, 0.001)
}

func TestDeriveMetrics_SnapshotOverrides(t *testing.T) {
	m := DeriveMetrics(model.Candidate{
		ID:             "p1",
		DailyRevenue:   750,
		ConversionRate: 3.2,
		ProfitMargin:   0.8,
		CAC:            40,
		LTV:            400,
	})

	assert.InDelta(t, 3.2, m.ConversionRate, 0.001)
	assert.InDelta(t, 0.8, m.ProfitMargin, 0.001)
	assert.InDelta(t, 40.0, m.AcquisitionCost, 0.001)
	assert.InDelta(t, 400.0, m.LifetimeValue, 0.001)
}

func TestDeriveMetrics_GrowthFromHistory(t *testing.T) {
	// 11 samples: recent window [700..1000] avg 850, preceding [500..650] avg 575.
	history := []float64{500, 550, 600, 650, 700, 750, 800, 850, 900, 950, 1000}
	m := DeriveMetrics(model.Candidate{ID: "p1", DailyRevenue: 750, History: history})

	assert.InDelta(t, (850.0-575.0)/575.0*100, m.GrowthRate, 0.001)
}

func TestDeriveMetrics_ShortHistoryFallsBack(t *testing.T) {
	// Two samples leave no preceding window, so the default rate applies.
	m := DeriveMetrics(model.Candidate{ID: "p1", DailyRevenue: 100, History: []float64{90, 100}})
	assert.InDelta(t, 25.0, m.GrowthRate, 0.001)

	// Preceding window present but all zeros: same fallback.
	m = DeriveMetrics(model.Candidate{
		ID:           "p2",
		DailyRevenue: 100,
		History:      []float64{0, 0, 0, 0, 0, 0, 0, 10, 20, 30, 40, 50, 60, 70},
	})
	assert.InDelta(t, 25.0, m.GrowthRate, 0.001)
}

func TestDeriveMetrics_DecliningHistory(t *testing.T) {
	history := []float64{100, 100, 100, 100, 100, 100, 100, 50, 50, 50, 50, 50, 50, 50}
	m := DeriveMetrics(model.Candidate{ID: "p1", DailyRevenue: 50, History: history})
	assert.InDelta(t, -50.0, m.GrowthRate, 0.001)
}

func TestOpportunityScore_Bounds(t *testing.T) {
	cfg := DefaultConfig()

	extremes := []model.MetricSet{
		{},
		{CurrentRevenue: 1e12, GrowthRate: 1e9, ConversionRate: 1e6, ProfitMargin: 50, AcquisitionCost: 0.0001, LifetimeValue: 1e9},
		{CurrentRevenue: -1000, GrowthRate: -500, ConversionRate: -10, ProfitMargin: -1, AcquisitionCost: -5, LifetimeValue: -100},
		{CurrentRevenue: 500, GrowthRate: 100, ConversionRate: 10, ProfitMargin: 1, AcquisitionCost: 40, LifetimeValue: 200},
	}
	for _, m := range extremes {
		score := OpportunityScore(m, cfg)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestOpportunityScore_PerfectCandidate(t *testing.T) {
	cfg := DefaultConfig()
	m := model.MetricSet{
		CurrentRevenue:  500,  // at threshold: full revenue factor
		GrowthRate:      100,  // full growth factor
		ConversionRate:  10,   // full conversion factor
		ProfitMargin:    1,    // full profit factor
		AcquisitionCost: 40,   // LTV/CAC = 5: full efficiency factor
		LifetimeValue:   200,
	}
	assert.InDelta(t, 1.0, OpportunityScore(m, cfg), 0.001)
}

func TestOpportunityScore_ZeroCACGivesZeroEfficiency(t *testing.T) {
	cfg := DefaultConfig()
	m := model.MetricSet{AcquisitionCost: 0, LifetimeValue: 1e9}
	// Only the efficiency factor could contribute; a zero denominator maps to
	// zero, not a fault.
	assert.InDelta(t, 0.0, OpportunityScore(m, cfg), 0.001)
}

func TestScoreCandidates_EmptyInput(t *testing.T) {
	ranked := ScoreCandidates(nil, DefaultConfig())
	assert.Empty(t, ranked)
}

func TestScoreCandidates_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	candidates := []model.Candidate{
		{ID: "a", DailyRevenue: 750, ConversionRate: 3.2, ProfitMargin: 0.8,
			History: []float64{500, 550, 600, 650, 700, 750, 800, 850, 900, 950, 1000}},
		{ID: "b", DailyRevenue: 1200, ConversionRate: 2.8, ProfitMargin: 0.9,
			History: []float64{800, 850, 900, 950, 1000, 1050, 1100, 1150, 1200, 1250, 1300}},
		{ID: "c", DailyRevenue: 90},
	}

	first := ScoreCandidates(candidates, cfg)
	second := ScoreCandidates(candidates, cfg)
	require.Equal(t, first, second)
}

func TestScoreCandidates_TruncatesToTopK(t *testing.T) {
	cfg := DefaultConfig()
	var candidates []model.Candidate
	for i, rev := range []float64{100, 900, 300, 1200, 50, 700, 450, 1500} {
		candidates = append(candidates, model.Candidate{
			ID:           string(rune('a' + i)),
			DailyRevenue: rev,
		})
	}

	// Full ranking without truncation for comparison.
	unbounded := cfg
	unbounded.MaxConcurrent = 0
	full := ScoreCandidates(candidates, unbounded)
	require.Len(t, full, len(candidates))

	ranked := ScoreCandidates(candidates, cfg)
	require.Len(t, ranked, cfg.MaxConcurrent)

	for i, rc := range ranked {
		assert.Equal(t, full[i].Candidate.ID, rc.Candidate.ID)
	}
	// Results are ordered by score x ROI descending.
	for i := 1; i < len(ranked); i++ {
		prev := ranked[i-1].Score * ranked[i-1].EstimatedROI
		cur := ranked[i].Score * ranked[i].EstimatedROI
		assert.GreaterOrEqual(t, prev, cur)
	}
}

func TestScoreCandidates_MinScoreGate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScore = 0.8

	ranked := ScoreCandidates([]model.Candidate{{ID: "weak", DailyRevenue: 10}}, cfg)
	assert.Empty(t, ranked)
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, ValidateConfig(DefaultConfig()))

	bad := DefaultConfig()
	bad.Weights.Revenue = -0.3
	err := ValidateConfig(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights.revenue must be >= 0")

	bad = DefaultConfig()
	bad.Weights.Revenue = 0.6 // sum now 1.3
	err = ValidateConfig(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1.0")

	bad = DefaultConfig()
	bad.RevenueThreshold = 0
	err = ValidateConfig(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revenue_threshold")

	bad = DefaultConfig()
	bad.MinScore = 1.5
	assert.Error(t, ValidateConfig(bad))
}

func TestWeightSum(t *testing.T) {
	assert.InDelta(t, 1.0, WeightSum(DefaultConfig()), 0.001)
}
