package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonebridge/assess-cli/internal/model"
)

func ptrFloat64(v float64) *float64 { return &v }

func ptrTime(t time.Time) *time.Time { return &t }

var testNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

// healthyInput builds a portfolio snapshot that clears every top band.
func healthyInput() Input {
	return Input{
		Metrics: model.PortfolioMetrics{
			PortfolioSize:      10_000_000,
			LoanCount:          50,
			WeightedAvgRate:    9.5,
			WeightedAvgLTV:     55,
			WeightedAvgDSCR:    1.6,
			CurrentRate:        0.97,
			DefaultRate:        0.005,
			LargestExposure:    0.04,
			Top10Concentration: 0.25,
			StateConcentration: map[string]float64{
				"TX": 0.1, "CA": 0.1, "FL": 0.1, "NY": 0.1, "GA": 0.1,
				"OH": 0.1, "WA": 0.1, "CO": 0.1, "AZ": 0.1, "NC": 0.1,
			},
			PropertyConcentration: map[string]float64{
				"multifamily": 0.4, "retail": 0.3, "office": 0.2, "industrial": 0.1,
			},
		},
		Options: Options{Now: testNow},
	}
}

func monthlyHistory(defaults ...float64) []model.PerformanceRecord {
	out := make([]model.PerformanceRecord, len(defaults))
	for i, d := range defaults {
		out[i] = model.PerformanceRecord{
			Period:     time.Date(2025, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			DefaultPct: ptrFloat64(d),
		}
	}
	return out
}

func TestCategoryWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, entry := range categoryTable {
		sum += entry.weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestScoreCategoriesOrderAndGrades(t *testing.T) {
	scores := ScoreCategories(healthyInput(), DefaultThresholds())

	require.Len(t, scores, 6)
	assert.Equal(t, model.CategoryPortfolioPerformance, scores[0].Category)
	assert.Equal(t, model.CategoryCashFlowQuality, scores[1].Category)
	assert.Equal(t, model.CategoryDocumentation, scores[2].Category)
	assert.Equal(t, model.CategoryCollateralCoverage, scores[3].Category)
	assert.Equal(t, model.CategoryDiversification, scores[4].Category)
	assert.Equal(t, model.CategoryRegulatoryReadiness, scores[5].Category)

	for _, s := range scores {
		assert.GreaterOrEqual(t, s.Score, 0)
		assert.LessOrEqual(t, s.Score, 100)
		assert.Equal(t, Grade(s.Score), s.Grade)
		assert.InDelta(t, float64(s.Score)*s.Weight, s.WeightedScore, 1e-9)
	}
}

func TestScorePortfolioPerformance(t *testing.T) {
	th := DefaultThresholds()

	in := healthyInput()
	in.History = monthlyHistory(0.02, 0.015, 0.01)
	score, details := scorePortfolioPerformance(in, th)

	// default 40 + delinquency 40 + improving trend 20
	assert.Equal(t, 100, score)
	assert.Equal(t, "improving", details["trend"])

	in.Metrics.DefaultRate = 0.04
	in.Metrics.Delinquency30Rate = 0.04
	in.Metrics.Delinquency60Rate = 0.02
	in.History = nil
	score, details = scorePortfolioPerformance(in, th)

	// default 20 + delinquency 20 + no history 10
	assert.Equal(t, 50, score)
	assert.Equal(t, "no_history", details["trend"])
}

func TestDefaultTrend(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name     string
		defaults []float64
		wantPts  int
		wantTag  string
	}{
		{"no history", nil, 10, "no_history"},
		{"two periods", []float64{0.01, 0.02}, 10, "no_history"},
		{"improving", []float64{0.03, 0.02, 0.01}, 20, "improving"},
		{"stable", []float64{0.01, 0.011, 0.012}, 15, "stable"},
		{"worsening", []float64{0.01, 0.015, 0.025}, 10, "worsening"},
		{"deteriorating", []float64{0.01, 0.03, 0.05}, 5, "deteriorating"},
		{"uses last three", []float64{0.09, 0.03, 0.02, 0.01}, 20, "improving"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts, tag := defaultTrend(monthlyHistory(tt.defaults...), th)
			assert.Equal(t, tt.wantPts, pts)
			assert.Equal(t, tt.wantTag, tag)
		})
	}
}

func TestScoreCashFlowQuality(t *testing.T) {
	th := DefaultThresholds()

	score, _ := scoreCashFlowQuality(healthyInput(), th)
	// dscr 50 + current 35 + rate 15
	assert.Equal(t, 100, score)

	in := healthyInput()
	in.Metrics.WeightedAvgDSCR = 1.05
	in.Metrics.CurrentRate = 0.88
	in.Metrics.WeightedAvgRate = 5
	score, details := scoreCashFlowQuality(in, th)
	// dscr floor-above-min 20 + current 21 + rate minimal 5
	assert.Equal(t, 46, score)
	assert.Equal(t, 20, details["dscr_pts"])

	in.Metrics.WeightedAvgDSCR = 0.9
	score, _ = scoreCashFlowQuality(in, th)
	assert.Equal(t, 36, score)
}

func TestScoreDocumentation(t *testing.T) {
	th := DefaultThresholds()

	full := model.LoanRecord{
		LoanID:          "L1",
		CurrentBalance:  100000,
		InterestRate:    ptrFloat64(8),
		PaymentStatus:   model.StatusCurrent,
		OriginationDate: ptrTime(testNow.AddDate(-1, 0, 0)),
		MaturityDate:    ptrTime(testNow.AddDate(2, 0, 0)),
		CurrentLTV:      ptrFloat64(65),
		DSCR:            ptrFloat64(1.3),
		PropertyType:    "multifamily",
		PropertyState:   "TX",
	}

	in := healthyInput()
	in.Records = []model.LoanRecord{full}
	in.History = monthlyHistory(make([]float64, 24)...)
	in.Options.HasSupportingDocs = true

	score, details := scoreDocumentation(in, th)
	// completeness 4*7 + 6*2 = 40, history 40, docs 20
	assert.Equal(t, 100, score)
	assert.Empty(t, details["fields_missing"])

	sparse := model.LoanRecord{
		LoanID:         "L1",
		CurrentBalance: 100000,
		PaymentStatus:  model.StatusCurrent,
	}
	in.Records = []model.LoanRecord{sparse}
	in.History = nil
	in.Options.HasSupportingDocs = false

	score, details = scoreDocumentation(in, th)
	// completeness 3*7 = 21, history absent 5, docs absent 5
	assert.Equal(t, 31, score)
	assert.Contains(t, details["fields_missing"], "interest_rate")
	assert.Contains(t, details["fields_missing"], "dscr")
}

func TestIsFirstLien(t *testing.T) {
	tests := []struct {
		pos  string
		want bool
	}{
		{"1st", true},
		{"First Lien", true},
		{"1", true},
		{"Senior 1st Mortgage", true},
		{"2nd", false},
		{"second", false},
		{"", false},
		{"mezzanine", false},
	}

	for _, tt := range tests {
		t.Run(tt.pos, func(t *testing.T) {
			assert.Equal(t, tt.want, isFirstLien(tt.pos))
		})
	}
}

func TestScoreCollateralCoverage(t *testing.T) {
	th := DefaultThresholds()

	in := healthyInput()
	in.Records = []model.LoanRecord{
		{LoanID: "L1", CurrentBalance: 100000, LienPosition: "1st", AppraisalDate: ptrTime(testNow.AddDate(0, -6, 0))},
		{LoanID: "L2", CurrentBalance: 100000, LienPosition: "first", AppraisalDate: ptrTime(testNow.AddDate(0, -6, 0))},
	}

	score, _ := scoreCollateralCoverage(in, th)
	// ltv 50 + first lien 30 + appraisal 20
	assert.Equal(t, 100, score)

	in.Metrics.WeightedAvgLTV = 85
	in.Records = []model.LoanRecord{
		{LoanID: "L1", CurrentBalance: 100000, LienPosition: "2nd"},
	}
	score, details := scoreCollateralCoverage(in, th)
	// ltv floor 15 + lien floor 7 + appraisal absent 5
	assert.Equal(t, 27, score)
	assert.Equal(t, 5, details["appraisal_pts"])
}

func TestScoreDiversification(t *testing.T) {
	th := DefaultThresholds()

	score, _ := scoreDiversification(healthyInput(), th)
	// largest 30 + top10 30 + states 20 + prop types 20
	assert.Equal(t, 100, score)

	in := healthyInput()
	in.Metrics.LargestExposure = 0.35
	in.Metrics.Top10Concentration = 0.95
	in.Metrics.StateConcentration = map[string]float64{"TX": 1}
	in.Metrics.PropertyConcentration = map[string]float64{"retail": 1}
	score, _ = scoreDiversification(in, th)
	// all floors: 7 + 7 + 5 + 5
	assert.Equal(t, 24, score)
}

func TestScoreRegulatoryReadiness(t *testing.T) {
	th := DefaultThresholds()

	in := healthyInput()
	score, _ := scoreRegulatoryReadiness(in, th)
	assert.Equal(t, 60, score)

	in.Options.HasStructureInfo = true
	score, _ = scoreRegulatoryReadiness(in, th)
	assert.Equal(t, 80, score)
}
