package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scaling-cli/internal/model"
)

func findAction(t *testing.T, plan model.ActionPlan, kind model.ActionKind) model.Action {
	t.Helper()
	for _, a := range plan.Actions {
		if a.Kind == kind {
			return a
		}
	}
	t.Fatalf("plan has no %s action", kind)
	return model.Action{}
}

func hasAction(plan model.ActionPlan, kind model.ActionKind) bool {
	for _, a := range plan.Actions {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

func TestBuildPlan_AboveRevenueThreshold(t *testing.T) {
	cfg := DefaultConfig()

	for _, tc := range []struct {
		revenue    float64
		wantBudget float64
		wantReturn float64
	}{
		{750, 225, 375},
		{1200, 360, 600},
	} {
		plan := BuildPlan(model.MetricSet{CurrentRevenue: tc.revenue}, cfg)

		ad := findAction(t, plan, model.ActionAdSpendIncrease)
		assert.InDelta(t, tc.wantBudget, ad.Budget, 0.001)
		assert.InDelta(t, tc.wantReturn, ad.ExpectedReturn, 0.001)

		price := findAction(t, plan, model.ActionPriceOptimization)
		assert.InDelta(t, tc.revenue*0.1, price.Budget, 0.001)
		assert.InDelta(t, tc.revenue*0.3, price.ExpectedReturn, 0.001)
	}
}

func TestBuildPlan_AdSpendCappedByMaxSpend(t *testing.T) {
	cfg := DefaultConfig()
	plan := BuildPlan(model.MetricSet{CurrentRevenue: 10_000}, cfg)

	ad := findAction(t, plan, model.ActionAdSpendIncrease)
	assert.InDelta(t, cfg.MaxAdSpend, ad.Budget, 0.001)
}

func TestBuildPlan_ThresholdGates(t *testing.T) {
	cfg := DefaultConfig()

	// Below every gate: only the always-on price optimization.
	plan := BuildPlan(model.MetricSet{CurrentRevenue: 100, GrowthRate: 5, ConversionRate: 1}, cfg)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, model.ActionPriceOptimization, plan.Actions[0].Kind)

	// High growth adds audience expansion.
	plan = BuildPlan(model.MetricSet{CurrentRevenue: 100, GrowthRate: 30, ConversionRate: 1}, cfg)
	assert.True(t, hasAction(plan, model.ActionAudienceExpansion))
	assert.False(t, hasAction(plan, model.ActionPlatformExpansion))

	// High conversion adds platform expansion.
	plan = BuildPlan(model.MetricSet{CurrentRevenue: 100, GrowthRate: 5, ConversionRate: 4}, cfg)
	assert.True(t, hasAction(plan, model.ActionPlatformExpansion))
	assert.False(t, hasAction(plan, model.ActionAudienceExpansion))
}

func TestBuildPlan_ROIZeroWhenBudgetZero(t *testing.T) {
	plan := BuildPlan(model.MetricSet{CurrentRevenue: 0, GrowthRate: 5, ConversionRate: 1}, DefaultConfig())
	assert.InDelta(t, 0.0, plan.ExpectedROI, 0.001)
}

func TestBuildPlan_PlanROI(t *testing.T) {
	// Revenue 100 below threshold, growth 30, conversion 1:
	// audience (20, 80) + price opt (10, 30) -> (110/30 - 1) * 100.
	plan := BuildPlan(model.MetricSet{CurrentRevenue: 100, GrowthRate: 30, ConversionRate: 1}, DefaultConfig())
	assert.InDelta(t, (110.0/30.0-1)*100, plan.ExpectedROI, 0.001)
}

func TestEstimateROI_BoostMonotonicity(t *testing.T) {
	plan := model.ActionPlan{RiskLevel: model.RiskMedium, ExpectedROI: 100}

	base := EstimateROI(model.MetricSet{GrowthRate: 40, ConversionRate: 4}, plan)
	boosted := EstimateROI(model.MetricSet{GrowthRate: 60, ConversionRate: 6}, plan)

	assert.GreaterOrEqual(t, boosted, base)
	assert.InDelta(t, 100.0, base, 0.001)
	assert.InDelta(t, 100*1.3*1.2, boosted, 0.001)
}

func TestEstimateROI_RiskAdjustment(t *testing.T) {
	m := model.MetricSet{GrowthRate: 10, ConversionRate: 2}

	medium := EstimateROI(m, model.ActionPlan{RiskLevel: model.RiskMedium, ExpectedROI: 100})
	high := EstimateROI(m, model.ActionPlan{RiskLevel: model.RiskHigh, ExpectedROI: 100})
	low := EstimateROI(m, model.ActionPlan{RiskLevel: model.RiskLow, ExpectedROI: 100})

	assert.InDelta(t, 100.0, medium, 0.001)
	assert.InDelta(t, 80.0, high, 0.001)
	assert.InDelta(t, 110.0, low, 0.001)
}

func TestEstimateROI_Clamped(t *testing.T) {
	m := model.MetricSet{GrowthRate: 200, ConversionRate: 50}

	huge := EstimateROI(m, model.ActionPlan{RiskLevel: model.RiskLow, ExpectedROI: 1e9})
	assert.InDelta(t, 500.0, huge, 0.001)

	negative := EstimateROI(m, model.ActionPlan{RiskLevel: model.RiskHigh, ExpectedROI: -300})
	assert.InDelta(t, 0.0, negative, 0.001)
}

func TestEstimateROI_NeverExceedsBoundsAcrossInputs(t *testing.T) {
	for _, roi := range []float64{-1e9, -100, 0, 50, 400, 499, 1e12} {
		for _, risk := range []model.RiskLevel{model.RiskLow, model.RiskMedium, model.RiskHigh} {
			got := EstimateROI(
				model.MetricSet{GrowthRate: 1e6, ConversionRate: 1e6},
				model.ActionPlan{RiskLevel: risk, ExpectedROI: roi},
			)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 500.0)
		}
	}
}
