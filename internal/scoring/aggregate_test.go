package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonebridge/assess-cli/internal/model"
)

func TestAssessHealthyPortfolio(t *testing.T) {
	in := healthyInput()
	in.Records = []model.LoanRecord{
		{LoanID: "L1", CurrentBalance: 400000, PaymentStatus: model.StatusCurrent, InterestRate: ptrFloat64(9), LienPosition: "1st",
			AppraisalDate: ptrTime(testNow.AddDate(0, -6, 0)), CurrentLTV: ptrFloat64(55), DSCR: ptrFloat64(1.6),
			OriginationDate: ptrTime(testNow.AddDate(-2, 0, 0)), MaturityDate: ptrTime(testNow.AddDate(3, 0, 0)),
			PropertyType: "multifamily", PropertyState: "TX"},
	}
	in.History = monthlyHistory(make([]float64, 12)...)
	in.Options.HasSupportingDocs = true
	in.Options.HasStructureInfo = true

	result := Assess(in, DefaultThresholds())

	require.NotNil(t, result)
	assert.Equal(t, model.AssessmentComplete, result.Status)
	assert.Equal(t, model.ReadinessReady, result.Readiness)
	assert.Equal(t, model.ReadinessSplit{Ready: 100, Conditional: 0, NotReady: 0}, result.ReadinessSplit)
	assert.Equal(t, "2-4 weeks", result.Timeline)
	assert.Empty(t, result.RedFlags)
	assert.Len(t, result.Categories, 6)
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.Strengths)
}

func TestAssessOverallIsRoundedWeightedSum(t *testing.T) {
	in := healthyInput()
	in.History = monthlyHistory(make([]float64, 12)...)

	result := Assess(in, DefaultThresholds())

	var weighted float64
	for _, c := range result.Categories {
		weighted += c.WeightedScore
	}
	assert.Equal(t, int(math.Round(weighted)), result.OverallScore)
	assert.Equal(t, Grade(result.OverallScore), result.Grade)
}

func TestAssessHighSeverityOverridesScore(t *testing.T) {
	// A portfolio can ace every category and still be not_ready when a
	// high-severity flag fires.
	in := healthyInput()
	in.History = monthlyHistory(make([]float64, 12)...)
	in.Metrics.DefaultRate = 0.15

	result := Assess(in, DefaultThresholds())

	assert.GreaterOrEqual(t, result.OverallScore, 70)
	assert.Equal(t, model.ReadinessNotReady, result.Readiness)
	assert.Equal(t, model.ReadinessSplit{Ready: 30, Conditional: 0, NotReady: 70}, result.ReadinessSplit)
	assert.Equal(t, "8+ weeks", result.Timeline)
}

func TestAssessMediumSeverityIsConditional(t *testing.T) {
	in := healthyInput()
	in.History = monthlyHistory(make([]float64, 12)...)
	in.Metrics.WeightedAvgLTV = 85

	result := Assess(in, DefaultThresholds())

	assert.Equal(t, model.ReadinessConditional, result.Readiness)
	assert.Equal(t, model.ReadinessSplit{Ready: 70, Conditional: 30, NotReady: 0}, result.ReadinessSplit)
	assert.Equal(t, "4-8 weeks", result.Timeline)
}

func TestAssessShortHistoryIsPreliminary(t *testing.T) {
	in := healthyInput()
	in.History = monthlyHistory(0, 0, 0)

	result := Assess(in, DefaultThresholds())

	assert.Equal(t, model.AssessmentPreliminary, result.Status)

	in.History = monthlyHistory(make([]float64, 6)...)
	result = Assess(in, DefaultThresholds())
	assert.Equal(t, model.AssessmentComplete, result.Status)
}

func TestDeriveReadiness(t *testing.T) {
	high := model.RedFlag{Severity: model.SeverityHigh}
	medium := model.RedFlag{Severity: model.SeverityMedium}
	low := model.RedFlag{Severity: model.SeverityLow}

	tests := []struct {
		name    string
		overall int
		flags   []model.RedFlag
		want    model.Readiness
	}{
		{"clean high score", 85, nil, model.ReadinessReady},
		{"low flag only", 85, []model.RedFlag{low}, model.ReadinessReady},
		{"medium flag", 85, []model.RedFlag{medium}, model.ReadinessConditional},
		{"score below floor", 65, nil, model.ReadinessConditional},
		{"at the floor", 70, nil, model.ReadinessReady},
		{"high flag beats score", 95, []model.RedFlag{high}, model.ReadinessNotReady},
		{"high beats medium", 95, []model.RedFlag{medium, high}, model.ReadinessNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveReadiness(tt.overall, tt.flags))
		})
	}
}

func TestBaselineNarrative(t *testing.T) {
	in := healthyInput()
	in.History = monthlyHistory(make([]float64, 12)...)
	in.Metrics.WeightedAvgDSCR = 1.55

	result := Assess(in, DefaultThresholds())

	assert.Contains(t, result.Summary, result.Grade)
	assert.Contains(t, result.Strengths, "Strong debt-service coverage of 1.55x across the portfolio")
	require.NotEmpty(t, result.Recommendations)
}

func TestBaselineConcernsIncludeFlagMessages(t *testing.T) {
	in := healthyInput()
	in.History = monthlyHistory(make([]float64, 12)...)
	in.Metrics.WeightedAvgLTV = 85

	result := Assess(in, DefaultThresholds())

	require.NotEmpty(t, result.RedFlags)
	assert.Contains(t, result.Concerns, result.RedFlags[0].Message)
}
