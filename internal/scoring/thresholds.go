// Package scoring converts a portfolio metrics snapshot into six weighted
// category scores, an overall grade, red flags, and a tokenization-readiness
// tier. All cutoffs live in the Thresholds table so they are data, not code.
package scoring

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// CategoryWeights are the fixed contribution weights. They sum to 1.0.
const (
	WeightPortfolioPerformance = 0.25
	WeightCashFlowQuality      = 0.25
	WeightDocumentation        = 0.20
	WeightCollateralCoverage   = 0.15
	WeightDiversification      = 0.10
	WeightRegulatoryReadiness  = 0.05
)

// Band is a three-step cutoff table: values at or better than A earn the
// full point budget, B the second step, C the third, anything worse the
// floor.
type Band struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
}

// Points is the descending point schedule paired with a Band.
type Points struct {
	A     int `yaml:"a"`
	B     int `yaml:"b"`
	C     int `yaml:"c"`
	Floor int `yaml:"floor"`
}

// lowerBetter scores v against a band where smaller values are better.
func (b Band) lowerBetter(v float64, p Points) int {
	switch {
	case v <= b.A:
		return p.A
	case v <= b.B:
		return p.B
	case v <= b.C:
		return p.C
	default:
		return p.Floor
	}
}

// higherBetter scores v against a band where larger values are better.
func (b Band) higherBetter(v float64, p Points) int {
	switch {
	case v >= b.A:
		return p.A
	case v >= b.B:
		return p.B
	case v >= b.C:
		return p.C
	default:
		return p.Floor
	}
}

// Thresholds holds every cutoff used by the six category scorers and the
// red-flag battery.
type Thresholds struct {
	Performance struct {
		DefaultRate       Band   `yaml:"default_rate"` // fractions
		DefaultPoints     Points `yaml:"default_points"`
		Delinquency       Band   `yaml:"delinquency"` // 30+60+90 combined, fractions
		DelinquencyPoints Points `yaml:"delinquency_points"`
		// Trend deltas compare the default bucket across the last three
		// history periods.
		TrendImproving     float64 `yaml:"trend_improving"`     // delta below this is improving
		TrendDeteriorating float64 `yaml:"trend_deteriorating"` // delta above this is deteriorating
		TrendStableBand    float64 `yaml:"trend_stable_band"`   // |delta| within this is stable
		TrendPoints        struct {
			Improving     int `yaml:"improving"`
			Stable        int `yaml:"stable"`
			Worsening     int `yaml:"worsening"`
			Deteriorating int `yaml:"deteriorating"`
			NoHistory     int `yaml:"no_history"`
		} `yaml:"trend_points"`
	} `yaml:"performance"`

	CashFlow struct {
		DSCR          Band    `yaml:"dscr"`
		DSCRPoints    Points  `yaml:"dscr_points"`
		DSCRMin       float64 `yaml:"dscr_min"` // covenant floor: at or above earns DSCRMinPts
		DSCRMinPts    int     `yaml:"dscr_min_pts"`
		CurrentFrac   Band    `yaml:"current_frac"`
		CurrentPoints Points  `yaml:"current_points"`
		// Competitive rate bands on the 0-100 percent scale.
		RateFullLo    float64 `yaml:"rate_full_lo"`
		RateFullHi    float64 `yaml:"rate_full_hi"`
		RatePartialLo float64 `yaml:"rate_partial_lo"`
		RatePartialHi float64 `yaml:"rate_partial_hi"`
		RatePoints    struct {
			Full    int `yaml:"full"`
			Partial int `yaml:"partial"`
			Minimal int `yaml:"minimal"`
		} `yaml:"rate_points"`
	} `yaml:"cash_flow"`

	Documentation struct {
		RequiredFieldPts int    `yaml:"required_field_pts"` // per required field present
		OptionalFieldPts int    `yaml:"optional_field_pts"` // per optional field present
		History          Band   `yaml:"history"`            // months, higher better
		HistoryPoints    Points `yaml:"history_points"`
		HistoryAbsent    int    `yaml:"history_absent"`
		DocsPresent      int    `yaml:"docs_present"`
		DocsAbsent       int    `yaml:"docs_absent"`
	} `yaml:"documentation"`

	Collateral struct {
		LTV             Band   `yaml:"ltv"` // percent scale
		LTVPoints       Points `yaml:"ltv_points"`
		FirstLien       Band   `yaml:"first_lien"` // fraction, higher better
		FirstLienPoints Points `yaml:"first_lien_points"`
		AppraisalAge    Band   `yaml:"appraisal_age"` // months, lower better
		AppraisalPoints Points `yaml:"appraisal_points"`
		AppraisalAbsent int    `yaml:"appraisal_absent"`
	} `yaml:"collateral"`

	Diversification struct {
		LargestExposure Band   `yaml:"largest_exposure"` // fraction, lower better
		LargestPoints   Points `yaml:"largest_points"`
		Top10           Band   `yaml:"top10"` // fraction, lower better
		Top10Points     Points `yaml:"top10_points"`
		States          Band   `yaml:"states"` // distinct count, higher better
		StatesPoints    Points `yaml:"states_points"`
		PropertyTypes   Band   `yaml:"property_types"` // distinct count, higher better
		PropertyPoints  Points `yaml:"property_points"`
	} `yaml:"diversification"`

	Regulatory struct {
		WithStructureInfo    int `yaml:"with_structure_info"`
		WithoutStructureInfo int `yaml:"without_structure_info"`
	} `yaml:"regulatory"`

	RedFlags struct {
		MaxDefaultRate     float64 `yaml:"max_default_rate"`     // fraction
		MaxLargestExposure float64 `yaml:"max_largest_exposure"` // fraction
		MaxWeightedLTV     float64 `yaml:"max_weighted_ltv"`     // percent
		MinDSCR            float64 `yaml:"min_dscr"`
		MaxAppraisalAge    int     `yaml:"max_appraisal_age"` // months
		MinHistoryMonths   int     `yaml:"min_history_months"`
	} `yaml:"red_flags"`
}

// DefaultThresholds returns the published cutoff tables. These constants
// must be reproduced exactly for output parity across runs.
func DefaultThresholds() Thresholds {
	var t Thresholds

	t.Performance.DefaultRate = Band{A: 0.01, B: 0.03, C: 0.05}
	t.Performance.DefaultPoints = Points{A: 40, B: 30, C: 20, Floor: 10}
	t.Performance.Delinquency = Band{A: 0.02, B: 0.05, C: 0.10}
	t.Performance.DelinquencyPoints = Points{A: 40, B: 30, C: 20, Floor: 10}
	t.Performance.TrendImproving = -0.005
	t.Performance.TrendDeteriorating = 0.02
	t.Performance.TrendStableBand = 0.005
	t.Performance.TrendPoints.Improving = 20
	t.Performance.TrendPoints.Stable = 15
	t.Performance.TrendPoints.Worsening = 10
	t.Performance.TrendPoints.Deteriorating = 5
	t.Performance.TrendPoints.NoHistory = 10

	t.CashFlow.DSCR = Band{A: 1.5, B: 1.25, C: 1.1}
	t.CashFlow.DSCRPoints = Points{A: 50, B: 40, C: 30, Floor: 10}
	t.CashFlow.DSCRMin = 1.0
	t.CashFlow.DSCRMinPts = 20
	t.CashFlow.CurrentFrac = Band{A: 0.95, B: 0.90, C: 0.85}
	t.CashFlow.CurrentPoints = Points{A: 35, B: 28, C: 21, Floor: 14}
	t.CashFlow.RateFullLo = 8
	t.CashFlow.RateFullHi = 12
	t.CashFlow.RatePartialLo = 6
	t.CashFlow.RatePartialHi = 14
	t.CashFlow.RatePoints.Full = 15
	t.CashFlow.RatePoints.Partial = 10
	t.CashFlow.RatePoints.Minimal = 5

	t.Documentation.RequiredFieldPts = 7
	t.Documentation.OptionalFieldPts = 2
	t.Documentation.History = Band{A: 24, B: 12, C: 6}
	t.Documentation.HistoryPoints = Points{A: 40, B: 30, C: 20, Floor: 10}
	t.Documentation.HistoryAbsent = 5
	t.Documentation.DocsPresent = 20
	t.Documentation.DocsAbsent = 5

	t.Collateral.LTV = Band{A: 60, B: 70, C: 80}
	t.Collateral.LTVPoints = Points{A: 50, B: 40, C: 30, Floor: 15}
	t.Collateral.FirstLien = Band{A: 0.95, B: 0.80, C: 0.50}
	t.Collateral.FirstLienPoints = Points{A: 30, B: 22, C: 15, Floor: 7}
	t.Collateral.AppraisalAge = Band{A: 12, B: 24, C: 36}
	t.Collateral.AppraisalPoints = Points{A: 20, B: 15, C: 10, Floor: 5}
	t.Collateral.AppraisalAbsent = 5

	t.Diversification.LargestExposure = Band{A: 0.05, B: 0.10, C: 0.20}
	t.Diversification.LargestPoints = Points{A: 30, B: 22, C: 15, Floor: 7}
	t.Diversification.Top10 = Band{A: 0.30, B: 0.50, C: 0.70}
	t.Diversification.Top10Points = Points{A: 30, B: 22, C: 15, Floor: 7}
	t.Diversification.States = Band{A: 10, B: 5, C: 3}
	t.Diversification.StatesPoints = Points{A: 20, B: 15, C: 10, Floor: 5}
	t.Diversification.PropertyTypes = Band{A: 4, B: 3, C: 2}
	t.Diversification.PropertyPoints = Points{A: 20, B: 15, C: 10, Floor: 5}

	t.Regulatory.WithStructureInfo = 80
	t.Regulatory.WithoutStructureInfo = 60

	t.RedFlags.MaxDefaultRate = 0.10
	t.RedFlags.MaxLargestExposure = 0.20
	t.RedFlags.MaxWeightedLTV = 80
	t.RedFlags.MinDSCR = 1.0
	t.RedFlags.MaxAppraisalAge = 36
	t.RedFlags.MinHistoryMonths = 6

	return t
}

// LoadThresholds reads a yaml override file, layered over the defaults so a
// partial file only replaces the cutoffs it names.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, eris.Wrap(err, "scoring: read thresholds file")
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, eris.Wrap(err, "scoring: parse thresholds file")
	}
	return t, nil
}
