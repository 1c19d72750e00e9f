package budget

// Tier thresholds in percent. Each bound is exclusive: exactly 90 is
// still At Risk and exactly 75 is still On Track.
const (
	OverBudgetThreshold = 90.0
	AtRiskThreshold     = 75.0
)

// Tier classifies budget utilization
type Tier string

const (
	TierOnTrack    Tier = "On Track"
	TierAtRisk     Tier = "At Risk"
	TierOverBudget Tier = "Over Budget"
)

// Status is a tier plus the attributes a client needs to render it
type Status struct {
	Tier Tier   `json:"tier"`
	Tone string `json:"tone"`
}

// GetBudgetStatus classifies a utilization percentage
func GetBudgetStatus(percentage float64) Status {
	switch {
	case percentage > OverBudgetThreshold:
		return Status{Tier: TierOverBudget, Tone: "danger"}
	case percentage > AtRiskThreshold:
		return Status{Tier: TierAtRisk, Tone: "warning"}
	default:
		return Status{Tier: TierOnTrack, Tone: "success"}
	}
}
