package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scaling-cli/internal/config"
)

// DefaultConfig returns a config.ScorerConfig with documented defaults.
// Weights sum to 1.0.
func DefaultConfig() config.ScorerConfig {
	return config.ScorerConfig{
		RevenueThreshold:    500,
		GrowthRateThreshold: 20,
		ConversionThreshold: 2,
		MinScore:            0,
		MaxConcurrent:       5,
		MaxAdSpend:          1000,
		RiskTolerance:       0.7,
		Weights: config.Weights{
			Revenue:    0.30,
			Growth:     0.25,
			Conversion: 0.20,
			Profit:     0.15,
			Efficiency: 0.10,
		},
	}
}

// WeightSum returns the sum of all factor weights.
func WeightSum(c config.ScorerConfig) float64 {
	w := c.Weights
	return w.Revenue + w.Growth + w.Conversion + w.Profit + w.Efficiency
}

// ValidateConfig checks that a ScorerConfig is internally consistent.
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	weights := map[string]float64{
		"weights.revenue":    c.Weights.Revenue,
		"weights.growth":     c.Weights.Growth,
		"weights.conversion": c.Weights.Conversion,
		"weights.profit":     c.Weights.Profit,
		"weights.efficiency": c.Weights.Efficiency,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	sum := WeightSum(c)
	if sum <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}
	// Allow tolerance for floating-point.
	if math.Abs(sum-1.0) > 0.01 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.2f", sum))
	}

	if c.RevenueThreshold <= 0 {
		errs = append(errs, "revenue_threshold must be > 0")
	}
	if c.GrowthRateThreshold < 0 {
		errs = append(errs, "growth_rate_threshold must be >= 0")
	}
	if c.ConversionThreshold < 0 {
		errs = append(errs, "conversion_threshold must be >= 0")
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		errs = append(errs, "min_score must be between 0 and 1")
	}
	if c.MaxConcurrent < 0 {
		errs = append(errs, "max_concurrent must be >= 0")
	}
	if c.MaxAdSpend < 0 {
		errs = append(errs, "max_ad_spend must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
