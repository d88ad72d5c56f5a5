package scoring

import (
	"fmt"

	"github.com/stonebridge/assess-cli/internal/model"
)

// Baseline narrative: canned strengths, concerns, and recommendations
// generated from score and metric thresholds. The narrative overlay merges
// on top of this; it always exists even when no generator is configured.

const (
	strongCategoryScore = 80
	weakCategoryScore   = 65
)

func applyBaseline(r *model.AssessmentResult) {
	r.Summary = baselineSummary(r)
	r.Strengths = baselineStrengths(r)
	r.Concerns = baselineConcerns(r)
	r.Recommendations = baselineRecommendations(r)
}

func baselineSummary(r *model.AssessmentResult) string {
	return fmt.Sprintf(
		"Portfolio of %d loans scored %d (%s) across six categories; tokenization readiness is %s with an estimated timeline of %s.",
		r.Metrics.LoanCount, r.OverallScore, r.Grade, r.Readiness, r.Timeline,
	)
}

func baselineStrengths(r *model.AssessmentResult) []string {
	var out []string
	m := r.Metrics

	if c := r.CategoryByName(model.CategoryPortfolioPerformance); c != nil && c.Score >= strongCategoryScore {
		out = append(out, fmt.Sprintf("Strong portfolio performance with a %.1f%% default rate and %.1f%% of loans current", m.DefaultRate*100, m.CurrentRate*100))
	}
	if c := r.CategoryByName(model.CategoryCashFlowQuality); c != nil && c.Score >= strongCategoryScore {
		out = append(out, fmt.Sprintf("Strong debt-service coverage of %.2fx across the portfolio", m.WeightedAvgDSCR))
	}
	if c := r.CategoryByName(model.CategoryCollateralCoverage); c != nil && c.Score >= strongCategoryScore {
		out = append(out, fmt.Sprintf("Conservative collateral position with a weighted average LTV of %.1f%%", m.WeightedAvgLTV))
	}
	if c := r.CategoryByName(model.CategoryDiversification); c != nil && c.Score >= strongCategoryScore {
		out = append(out, fmt.Sprintf("Well-diversified portfolio: largest single exposure is %.1f%% across %d states", m.LargestExposure*100, len(m.StateConcentration)))
	}
	if c := r.CategoryByName(model.CategoryDocumentation); c != nil && c.Score >= strongCategoryScore {
		out = append(out, "Complete loan-level documentation and performance reporting")
	}
	return out
}

func baselineConcerns(r *model.AssessmentResult) []string {
	var out []string
	m := r.Metrics

	for _, f := range r.RedFlags {
		out = append(out, f.Message)
	}
	if c := r.CategoryByName(model.CategoryPortfolioPerformance); c != nil && c.Score < weakCategoryScore {
		out = append(out, fmt.Sprintf("Elevated delinquency: %.1f%% of active loans are past due", (m.Delinquency30Rate+m.Delinquency60Rate+m.Delinquency90Rate)*100))
	}
	if c := r.CategoryByName(model.CategoryDocumentation); c != nil && c.Score < weakCategoryScore {
		out = append(out, "Documentation gaps limit assessment confidence")
	}
	return out
}

func baselineRecommendations(r *model.AssessmentResult) []string {
	var out []string

	switch r.Readiness {
	case model.ReadinessReady:
		out = append(out, "Proceed to structuring: the portfolio meets readiness criteria without remediation")
	case model.ReadinessConditional:
		out = append(out, "Address medium-severity findings before structuring to move from conditional to ready")
	case model.ReadinessNotReady:
		out = append(out, "Remediate high-severity findings before reconsidering tokenization")
	}

	if len(r.Metrics.StateConcentration) > 0 && r.Metrics.LargestExposure > 0.10 {
		out = append(out, "Reduce single-name concentration below 10% of portfolio balance")
	}
	if len(r.Categories) > 0 {
		if c := r.CategoryByName(model.CategoryDocumentation); c != nil && c.Score < strongCategoryScore {
			out = append(out, "Provide at least 12 months of monthly performance history and supporting loan documents")
		}
	}
	if c := r.CategoryByName(model.CategoryRegulatoryReadiness); c != nil && c.Score < strongCategoryScore {
		out = append(out, "Supply deal-structure information to complete the regulatory readiness review")
	}
	return out
}
