package model

import "time"

// AssessmentStatus reflects how much history backed an assessment run.
// States like "processing" or "error" belong to the workflow that owns the
// persisted record, not to the scoring engine, and are never emitted here.
type AssessmentStatus string

const (
	AssessmentPreliminary AssessmentStatus = "preliminary"
	AssessmentComplete    AssessmentStatus = "complete"
)

// Readiness is the three-tier tokenization-readiness classification.
type Readiness string

const (
	ReadinessReady       Readiness = "ready"
	ReadinessConditional Readiness = "conditional"
	ReadinessNotReady    Readiness = "not_ready"
)

// Severity tags a red flag by how strongly it should gate readiness.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Category names the six scoring dimensions.
type Category string

const (
	CategoryPortfolioPerformance Category = "portfolio_performance"
	CategoryCashFlowQuality      Category = "cash_flow_quality"
	CategoryDocumentation        Category = "documentation"
	CategoryCollateralCoverage   Category = "collateral_coverage"
	CategoryDiversification      Category = "diversification"
	CategoryRegulatoryReadiness  Category = "regulatory_readiness"
)

// PortfolioMetrics is the derived snapshot computed once per assessment.
// All fraction fields lie in [0,1] except WeightedAvgRate and WeightedAvgLTV,
// which are percentages (0-100) because the category-scoring thresholds are
// defined against that scale.
type PortfolioMetrics struct {
	PortfolioSize          float64            `json:"portfolio_size"`
	LoanCount              int                `json:"loan_count"`
	AvgLoanSize            float64            `json:"avg_loan_size"`
	WeightedAvgRate        float64            `json:"weighted_avg_rate"` // percent
	WeightedAvgLTV         float64            `json:"weighted_avg_ltv"`  // percent
	WeightedAvgDSCR        float64            `json:"weighted_avg_dscr"`
	DefaultRate            float64            `json:"default_rate"`
	Delinquency30Rate      float64            `json:"delinquency_30_rate"`
	Delinquency60Rate      float64            `json:"delinquency_60_rate"`
	Delinquency90Rate      float64            `json:"delinquency_90_rate"`
	CurrentRate            float64            `json:"current_rate"`
	AvgLoanAgeMonths       float64            `json:"avg_loan_age_months"`
	AvgRemainingTermMonths float64            `json:"avg_remaining_term_months"`
	LargestExposure        float64            `json:"largest_exposure"`   // fraction of portfolio
	Top10Concentration     float64            `json:"top10_concentration"` // fraction of portfolio
	StateConcentration     map[string]float64 `json:"state_concentration"`
	PropertyConcentration  map[string]float64 `json:"property_concentration"`
}

// CategoryScore is the result of one scoring dimension.
type CategoryScore struct {
	Category      Category       `json:"category"`
	Score         int            `json:"score"` // 0-100
	Grade         string         `json:"grade"`
	Weight        float64        `json:"weight"`
	WeightedScore float64        `json:"weighted_score"`
	Details       map[string]any `json:"details,omitempty"`
}

// RedFlag is a rule-triggered condition surfaced alongside the numeric score.
type RedFlag struct {
	Type     string         `json:"type"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

// ReadinessSplit is the fixed percentage breakdown per readiness tier.
// The three components always sum to 100.
type ReadinessSplit struct {
	Ready       int `json:"ready"`
	Conditional int `json:"conditional"`
	NotReady    int `json:"not_ready"`
}

// AssessmentResult is the engine's sole output entity. It is created once
// per scoring invocation and never mutated; persistence and history tracking
// belong to the caller.
type AssessmentResult struct {
	ID              string           `json:"id"`
	DealID          string           `json:"deal_id,omitempty"`
	OverallScore    int              `json:"overall_score"`
	Grade           string           `json:"grade"`
	Status          AssessmentStatus `json:"status"`
	Categories      []CategoryScore  `json:"categories"`
	Metrics         PortfolioMetrics `json:"metrics"`
	RedFlags        []RedFlag        `json:"red_flags"`
	Readiness       Readiness        `json:"readiness"`
	ReadinessSplit  ReadinessSplit   `json:"readiness_split"`
	Timeline        string           `json:"timeline"`
	Summary         string           `json:"summary,omitempty"`
	Strengths       []string         `json:"strengths,omitempty"`
	Concerns        []string         `json:"concerns,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// CategoryByName returns the category score with the given name, or nil.
func (r *AssessmentResult) CategoryByName(c Category) *CategoryScore {
	for i := range r.Categories {
		if r.Categories[i].Category == c {
			return &r.Categories[i]
		}
	}
	return nil
}
