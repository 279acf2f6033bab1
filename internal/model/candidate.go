package model

// Candidate is a revenue stream under consideration for scaling. Raw metrics
// come from the caller; History holds daily revenue samples, oldest first.
type Candidate struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	DailyRevenue   float64   `json:"daily_revenue" yaml:"daily_revenue"`
	History        []float64 `json:"historical_data,omitempty" yaml:"historical_data"`
	ConversionRate float64   `json:"conversion_rate,omitempty" yaml:"conversion_rate"`
	TrafficVolume  float64   `json:"traffic_volume,omitempty" yaml:"traffic_volume"`
	ProfitMargin   float64   `json:"profit_margin,omitempty" yaml:"profit_margin"`
	CAC            float64   `json:"cac,omitempty" yaml:"cac"`
	LTV            float64   `json:"ltv,omitempty" yaml:"ltv"`
}

// MetricSet holds the derived metrics a scoring decision is based on.
// Computed once per candidate per cycle and discarded afterwards.
type MetricSet struct {
	CurrentRevenue  float64 `json:"current_revenue"`
	GrowthRate      float64 `json:"growth_rate"`      // percent
	ConversionRate  float64 `json:"conversion_rate"`  // percent
	TrafficVolume   float64 `json:"traffic_volume"`
	ProfitMargin    float64 `json:"profit_margin"`    // fraction 0-1
	AcquisitionCost float64 `json:"acquisition_cost"`
	LifetimeValue   float64 `json:"lifetime_value"`
}

// RankedCandidate pairs a candidate with its computed score, plan and ROI
// estimate, selected for execution.
type RankedCandidate struct {
	Candidate    Candidate  `json:"candidate"`
	Metrics      MetricSet  `json:"metrics"`
	Score        float64    `json:"opportunity_score"` // [0,1]
	Plan         ActionPlan `json:"scaling_strategy"`
	EstimatedROI float64    `json:"estimated_roi"` // percent, [0,500]
}
