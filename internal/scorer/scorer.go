// Package scorer converts raw candidate metrics into bounded opportunity
// scores and budgeted scaling plans, ranked for execution.
package scorer

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/scaling-cli/internal/config"
	"github.com/sells-group/scaling-cli/internal/model"
)

// Defaults applied when a candidate carries no snapshot value for a metric.
const (
	defaultGrowthRate     = 25.0
	defaultConversionRate = 2.5
	defaultTrafficVolume  = 1000.0
	defaultProfitMargin   = 0.7
	defaultCAC            = 50.0
	defaultLTV            = 200.0
)

// growthWindow is the number of trailing samples in each growth-rate window.
const growthWindow = 7

// ScoreCandidates derives metrics, scores and plans for each candidate, ranks
// the results by score x estimated ROI and truncates to cfg.MaxConcurrent.
// Purely functional: identical inputs and config yield identical output.
// An empty input yields an empty (nil) result, not an error.
func ScoreCandidates(candidates []model.Candidate, cfg config.ScorerConfig) []model.RankedCandidate {
	var ranked []model.RankedCandidate

	for _, c := range candidates {
		metrics := DeriveMetrics(c)
		score := OpportunityScore(metrics, cfg)
		if cfg.MinScore > 0 && score < cfg.MinScore {
			continue
		}

		plan := BuildPlan(metrics, cfg)
		ranked = append(ranked, model.RankedCandidate{
			Candidate:    c,
			Metrics:      metrics,
			Score:        score,
			Plan:         plan,
			EstimatedROI: EstimateROI(metrics, plan),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score*ranked[i].EstimatedROI > ranked[j].Score*ranked[j].EstimatedROI
	})

	limit := cfg.MaxConcurrent
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	zap.L().Debug("scorer: candidates ranked",
		zap.Int("scored", len(candidates)),
		zap.Int("selected", len(ranked)),
	)
	return ranked
}

// DeriveMetrics computes a MetricSet from a candidate's raw data. Fields with
// no snapshot value fall back to fixed defaults; the growth rate comes from
// revenue history when at least two samples exist, otherwise it defaults to
// an optimistic 25% (deliberate new-stream policy, not a gap).
func DeriveMetrics(c model.Candidate) model.MetricSet {
	m := model.MetricSet{
		CurrentRevenue:  c.DailyRevenue,
		GrowthRate:      defaultGrowthRate,
		ConversionRate:  orDefault(c.ConversionRate, defaultConversionRate),
		TrafficVolume:   orDefault(c.TrafficVolume, defaultTrafficVolume),
		ProfitMargin:    orDefault(c.ProfitMargin, defaultProfitMargin),
		AcquisitionCost: orDefault(c.CAC, defaultCAC),
		LifetimeValue:   orDefault(c.LTV, defaultLTV),
	}

	if len(c.History) >= 2 {
		m.GrowthRate = growthRate(c.History)
	}
	return m
}

// growthRate compares the mean of the last growthWindow samples against the
// mean of the up-to-growthWindow samples preceding them. A zero or missing
// preceding window falls back to the default rate.
func growthRate(history []float64) float64 {
	recent := history[max(0, len(history)-growthWindow):]
	older := history[max(0, len(history)-2*growthWindow):max(0, len(history)-growthWindow)]

	olderAvg := mean(older)
	if olderAvg <= 0 {
		return defaultGrowthRate
	}
	return (mean(recent) - olderAvg) / olderAvg * 100
}

// OpportunityScore combines five clamped sub-scores via the configured weight
// vector. The result is always within [0,1] regardless of input extremes.
func OpportunityScore(m model.MetricSet, cfg config.ScorerConfig) float64 {
	revenueScore := 0.0
	if cfg.RevenueThreshold > 0 {
		revenueScore = clamp01(m.CurrentRevenue / cfg.RevenueThreshold)
	}
	growthScore := clamp01(m.GrowthRate / 100)
	conversionScore := clamp01(m.ConversionRate / 10)
	profitScore := clamp01(m.ProfitMargin)

	efficiencyScore := 0.0
	if m.AcquisitionCost > 0 {
		efficiencyScore = clamp01(m.LifetimeValue / m.AcquisitionCost / 5)
	}

	w := cfg.Weights
	total := revenueScore*w.Revenue +
		growthScore*w.Growth +
		conversionScore*w.Conversion +
		profitScore*w.Profit +
		efficiencyScore*w.Efficiency

	return clamp01(total)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
