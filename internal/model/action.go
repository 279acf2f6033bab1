package model

// ActionKind identifies a scaling intervention. Dispatch over kinds is
// closed; anything else resolves to StatusUnknownAction at execution time.
type ActionKind string

const (
	ActionAdSpendIncrease   ActionKind = "ad_spend_increase"
	ActionAudienceExpansion ActionKind = "audience_expansion"
	ActionPlatformExpansion ActionKind = "platform_expansion"
	ActionPriceOptimization ActionKind = "price_optimization"
)

// KnownActionKinds lists every kind the planner can emit.
var KnownActionKinds = []ActionKind{
	ActionAdSpendIncrease,
	ActionAudienceExpansion,
	ActionPlatformExpansion,
	ActionPriceOptimization,
}

// RiskLevel qualifies a plan's risk profile and adjusts its ROI estimate.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Action is a proposed budgeted intervention with an expected return.
type Action struct {
	Kind           ActionKind `json:"type"`
	Budget         float64    `json:"budget"`
	ExpectedReturn float64    `json:"expected_return"`
	Multiplier     float64    `json:"multiplier"`
}

// ActionPlan is the ordered set of actions proposed for one candidate in
// one cycle. Immutable once produced.
type ActionPlan struct {
	Actions     []Action  `json:"actions"`
	Timeline    string    `json:"timeline"`
	RiskLevel   RiskLevel `json:"risk_level"`
	ExpectedROI float64   `json:"expected_roi"` // percent, before boosts/risk adjustment
}

// TotalBudget returns the summed budget across all actions in the plan.
func (p ActionPlan) TotalBudget() float64 {
	var total float64
	for _, a := range p.Actions {
		total += a.Budget
	}
	return total
}

// TotalReturn returns the summed expected return across all actions.
func (p ActionPlan) TotalReturn() float64 {
	var total float64
	for _, a := range p.Actions {
		total += a.ExpectedReturn
	}
	return total
}
