package scoring

import (
	"math"

	"go.uber.org/zap"

	"github.com/stonebridge/assess-cli/internal/model"
)

// readinessSplits and readinessTimelines are fixed lookups per tier. The
// split constants are published numbers; preserve them exactly.
var readinessSplits = map[model.Readiness]model.ReadinessSplit{
	model.ReadinessReady:       {Ready: 100, Conditional: 0, NotReady: 0},
	model.ReadinessConditional: {Ready: 70, Conditional: 30, NotReady: 0},
	model.ReadinessNotReady:    {Ready: 30, Conditional: 0, NotReady: 70},
}

var readinessTimelines = map[model.Readiness]string{
	model.ReadinessReady:       "2-4 weeks",
	model.ReadinessConditional: "4-8 weeks",
	model.ReadinessNotReady:    "8+ weeks",
}

// conditionalScoreFloor is the overall score below which a portfolio with no
// high-severity flags is still only conditionally ready.
const conditionalScoreFloor = 70

// Assess aggregates the six category scores into an overall result, runs the
// red-flag battery, derives the readiness tier, and attaches the baseline
// narrative. ID, deal, and timestamps belong to the caller.
func Assess(in Input, th Thresholds) *model.AssessmentResult {
	categories := ScoreCategories(in, th)

	var weighted float64
	for _, c := range categories {
		weighted += c.WeightedScore
	}
	overall := int(math.Round(weighted))

	status := model.AssessmentPreliminary
	if len(in.History) >= model.MinHistoryMonths {
		status = model.AssessmentComplete
	}

	flags := DetectRedFlags(in, th)
	readiness := deriveReadiness(overall, flags)

	result := &model.AssessmentResult{
		OverallScore:   overall,
		Grade:          Grade(overall),
		Status:         status,
		Categories:     categories,
		Metrics:        in.Metrics,
		RedFlags:       flags,
		Readiness:      readiness,
		ReadinessSplit: readinessSplits[readiness],
		Timeline:       readinessTimelines[readiness],
	}
	applyBaseline(result)

	zap.L().Info("scoring: assessment complete",
		zap.Int("overall_score", overall),
		zap.String("grade", result.Grade),
		zap.String("readiness", string(readiness)),
		zap.Int("red_flags", len(flags)),
	)
	return result
}

// deriveReadiness maps score and flag severities onto the three-tier
// classification. Any high-severity flag forces not_ready regardless of
// score.
func deriveReadiness(overall int, flags []model.RedFlag) model.Readiness {
	var hasHigh, hasMedium bool
	for _, f := range flags {
		switch f.Severity {
		case model.SeverityHigh:
			hasHigh = true
		case model.SeverityMedium:
			hasMedium = true
		}
	}
	switch {
	case hasHigh:
		return model.ReadinessNotReady
	case hasMedium || overall < conditionalScoreFloor:
		return model.ReadinessConditional
	default:
		return model.ReadinessReady
	}
}
