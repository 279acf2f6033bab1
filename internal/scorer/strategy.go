package scorer

import (
	"math"

	"github.com/sells-group/scaling-cli/internal/config"
	"github.com/sells-group/scaling-cli/internal/model"
)

// Per-kind budget fractions and return multiples of current revenue. These
// are declared policy constants, not fitted values.
const (
	adSpendBudgetFraction  = 0.30
	adSpendReturnMultiple  = 0.50
	audienceBudgetFraction = 0.20
	audienceReturnMultiple = 0.80
	platformBudgetFraction = 0.40
	platformReturnMultiple = 1.20
	priceOptBudgetFraction = 0.10
	priceOptReturnMultiple = 0.30
)

// Scaling multipliers carried on each action for downstream effectors.
const (
	adSpendMultiplier  = 1.5
	audienceMultiplier = 2.0
	platformMultiplier = 2.5
	priceOptMultiplier = 1.3
)

// ROI boost and risk-adjustment factors.
const (
	highGrowthBoostThreshold     = 50.0
	highGrowthBoost              = 1.3
	highConversionBoostThreshold = 5.0
	highConversionBoost          = 1.2
	highRiskAdjustment           = 0.8
	lowRiskAdjustment            = 1.1
	maxROI                       = 500.0
)

// BuildPlan derives the action plan for a candidate from its metrics. Rules
// are deterministic: each threshold the candidate clears adds one action, and
// a price-optimization action is always appended.
func BuildPlan(m model.MetricSet, cfg config.ScorerConfig) model.ActionPlan {
	plan := model.ActionPlan{
		Timeline:  "immediate",
		RiskLevel: model.RiskMedium,
	}
	rev := m.CurrentRevenue

	if rev >= cfg.RevenueThreshold {
		plan.Actions = append(plan.Actions, model.Action{
			Kind:           model.ActionAdSpendIncrease,
			Budget:         math.Min(rev*adSpendBudgetFraction, cfg.MaxAdSpend),
			ExpectedReturn: rev * adSpendReturnMultiple,
			Multiplier:     adSpendMultiplier,
		})
	}
	if m.GrowthRate > cfg.GrowthRateThreshold {
		plan.Actions = append(plan.Actions, model.Action{
			Kind:           model.ActionAudienceExpansion,
			Budget:         rev * audienceBudgetFraction,
			ExpectedReturn: rev * audienceReturnMultiple,
			Multiplier:     audienceMultiplier,
		})
	}
	if m.ConversionRate > cfg.ConversionThreshold {
		plan.Actions = append(plan.Actions, model.Action{
			Kind:           model.ActionPlatformExpansion,
			Budget:         rev * platformBudgetFraction,
			ExpectedReturn: rev * platformReturnMultiple,
			Multiplier:     platformMultiplier,
		})
	}

	// Price optimization applies to every existing stream.
	plan.Actions = append(plan.Actions, model.Action{
		Kind:           model.ActionPriceOptimization,
		Budget:         rev * priceOptBudgetFraction,
		ExpectedReturn: rev * priceOptReturnMultiple,
		Multiplier:     priceOptMultiplier,
	})

	if budget := plan.TotalBudget(); budget > 0 {
		plan.ExpectedROI = (plan.TotalReturn()/budget - 1) * 100
	}
	return plan
}

// EstimateROI refines a plan's base ROI with performance boosts and a risk
// adjustment, clamped to [0, maxROI] for any input.
func EstimateROI(m model.MetricSet, plan model.ActionPlan) float64 {
	roi := plan.ExpectedROI

	if m.GrowthRate > highGrowthBoostThreshold {
		roi *= highGrowthBoost
	}
	if m.ConversionRate > highConversionBoostThreshold {
		roi *= highConversionBoost
	}

	switch plan.RiskLevel {
	case model.RiskHigh:
		roi *= highRiskAdjustment
	case model.RiskLow:
		roi *= lowRiskAdjustment
	}

	return math.Max(0, math.Min(maxROI, roi))
}
