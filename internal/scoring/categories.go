package scoring

import (
	"strings"
	"time"

	"github.com/stonebridge/assess-cli/internal/model"
)

// Options carries assessment inputs that cannot be derived from the tape.
type Options struct {
	// HasStructureInfo indicates the caller supplied deal-structure
	// documentation. The regulatory category is intentionally coarse until
	// richer inputs exist.
	HasStructureInfo bool
	// HasSupportingDocs indicates supporting loan documents accompany the
	// tape (servicing reports, note copies).
	HasSupportingDocs bool
	// Now anchors age calculations; the zero value means time.Now().
	Now time.Time
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// Input is the shared snapshot every category scorer consumes.
type Input struct {
	Metrics model.PortfolioMetrics
	Records []model.LoanRecord
	History []model.PerformanceRecord
	Options Options
}

// scorerFunc computes one category from the shared input and thresholds.
type scorerFunc func(Input, Thresholds) (int, map[string]any)

// categoryTable is the ordered scoring strategy table. Adding a seventh
// category means adding a row, not new branching.
var categoryTable = []struct {
	category model.Category
	weight   float64
	score    scorerFunc
}{
	{model.CategoryPortfolioPerformance, WeightPortfolioPerformance, scorePortfolioPerformance},
	{model.CategoryCashFlowQuality, WeightCashFlowQuality, scoreCashFlowQuality},
	{model.CategoryDocumentation, WeightDocumentation, scoreDocumentation},
	{model.CategoryCollateralCoverage, WeightCollateralCoverage, scoreCollateralCoverage},
	{model.CategoryDiversification, WeightDiversification, scoreDiversification},
	{model.CategoryRegulatoryReadiness, WeightRegulatoryReadiness, scoreRegulatoryReadiness},
}

// ScoreCategories runs all six scorers against one input snapshot.
func ScoreCategories(in Input, th Thresholds) []model.CategoryScore {
	out := make([]model.CategoryScore, 0, len(categoryTable))
	for _, entry := range categoryTable {
		score, details := entry.score(in, th)
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		out = append(out, model.CategoryScore{
			Category:      entry.category,
			Score:         score,
			Grade:         Grade(score),
			Weight:        entry.weight,
			WeightedScore: float64(score) * entry.weight,
			Details:       details,
		})
	}
	return out
}

func scorePortfolioPerformance(in Input, th Thresholds) (int, map[string]any) {
	p := th.Performance
	m := in.Metrics

	defaultPts := p.DefaultRate.lowerBetter(m.DefaultRate, p.DefaultPoints)

	totalDelinquency := m.Delinquency30Rate + m.Delinquency60Rate + m.Delinquency90Rate
	delinquencyPts := p.Delinquency.lowerBetter(totalDelinquency, p.DelinquencyPoints)

	trendPts, trendLabel := defaultTrend(in.History, th)

	return defaultPts + delinquencyPts + trendPts, map[string]any{
		"default_rate":      m.DefaultRate,
		"default_pts":       defaultPts,
		"total_delinquency": totalDelinquency,
		"delinquency_pts":   delinquencyPts,
		"trend":             trendLabel,
		"trend_pts":         trendPts,
	}
}

// defaultTrend classifies the movement of the default bucket across the last
// three history periods. Fewer than three periods earns the flat no-history
// score.
func defaultTrend(history []model.PerformanceRecord, th Thresholds) (int, string) {
	p := th.Performance

	var defaults []float64
	for i := range history {
		if history[i].DefaultPct != nil {
			defaults = append(defaults, *history[i].DefaultPct)
		}
	}
	if len(defaults) < 3 {
		return p.TrendPoints.NoHistory, "no_history"
	}

	last3 := defaults[len(defaults)-3:]
	delta := last3[2] - last3[0]
	switch {
	case delta < p.TrendImproving:
		return p.TrendPoints.Improving, "improving"
	case delta <= p.TrendStableBand:
		return p.TrendPoints.Stable, "stable"
	case delta <= p.TrendDeteriorating:
		return p.TrendPoints.Worsening, "worsening"
	default:
		return p.TrendPoints.Deteriorating, "deteriorating"
	}
}

func scoreCashFlowQuality(in Input, th Thresholds) (int, map[string]any) {
	c := th.CashFlow
	m := in.Metrics

	var dscrPts int
	switch {
	case m.WeightedAvgDSCR >= c.DSCR.A:
		dscrPts = c.DSCRPoints.A
	case m.WeightedAvgDSCR >= c.DSCR.B:
		dscrPts = c.DSCRPoints.B
	case m.WeightedAvgDSCR >= c.DSCR.C:
		dscrPts = c.DSCRPoints.C
	case m.WeightedAvgDSCR >= c.DSCRMin:
		dscrPts = c.DSCRMinPts
	default:
		dscrPts = c.DSCRPoints.Floor
	}

	currentPts := c.CurrentFrac.higherBetter(m.CurrentRate, c.CurrentPoints)

	var ratePts int
	switch {
	case m.WeightedAvgRate >= c.RateFullLo && m.WeightedAvgRate <= c.RateFullHi:
		ratePts = c.RatePoints.Full
	case m.WeightedAvgRate >= c.RatePartialLo && m.WeightedAvgRate <= c.RatePartialHi:
		ratePts = c.RatePoints.Partial
	default:
		ratePts = c.RatePoints.Minimal
	}

	return dscrPts + currentPts + ratePts, map[string]any{
		"weighted_dscr": m.WeightedAvgDSCR,
		"dscr_pts":      dscrPts,
		"current_rate":  m.CurrentRate,
		"current_pts":   currentPts,
		"weighted_rate": m.WeightedAvgRate,
		"rate_pts":      ratePts,
	}
}

// requiredDocFields and optionalDocFields define the completeness check run
// against a sample record from the tape.
var (
	requiredDocFields = []struct {
		name    string
		present func(*model.LoanRecord) bool
	}{
		{"loan_id", func(r *model.LoanRecord) bool { return r.LoanID != "" }},
		{"current_balance", func(r *model.LoanRecord) bool { return r.CurrentBalance > 0 }},
		{"interest_rate", func(r *model.LoanRecord) bool { return r.InterestRate != nil }},
		{"payment_status", func(r *model.LoanRecord) bool { return r.PaymentStatus != "" }},
	}
	optionalDocFields = []struct {
		name    string
		present func(*model.LoanRecord) bool
	}{
		{"origination_date", func(r *model.LoanRecord) bool { return r.OriginationDate != nil }},
		{"maturity_date", func(r *model.LoanRecord) bool { return r.MaturityDate != nil }},
		{"current_ltv", func(r *model.LoanRecord) bool { return r.CurrentLTV != nil }},
		{"dscr", func(r *model.LoanRecord) bool { return r.DSCR != nil }},
		{"property_type", func(r *model.LoanRecord) bool { return r.PropertyType != "" }},
		{"property_state", func(r *model.LoanRecord) bool { return r.PropertyState != "" }},
	}
)

func scoreDocumentation(in Input, th Thresholds) (int, map[string]any) {
	d := th.Documentation

	var completenessPts int
	var present, missing []string
	if len(in.Records) > 0 {
		sample := &in.Records[0]
		for _, f := range requiredDocFields {
			if f.present(sample) {
				completenessPts += d.RequiredFieldPts
				present = append(present, f.name)
			} else {
				missing = append(missing, f.name)
			}
		}
		for _, f := range optionalDocFields {
			if f.present(sample) {
				completenessPts += d.OptionalFieldPts
				present = append(present, f.name)
			} else {
				missing = append(missing, f.name)
			}
		}
	}

	var historyPts int
	months := len(in.History)
	if months == 0 {
		historyPts = d.HistoryAbsent
	} else {
		historyPts = d.History.higherBetter(float64(months), d.HistoryPoints)
	}

	docsPts := d.DocsAbsent
	if in.Options.HasSupportingDocs {
		docsPts = d.DocsPresent
	}

	return completenessPts + historyPts + docsPts, map[string]any{
		"completeness_pts": completenessPts,
		"fields_present":   present,
		"fields_missing":   missing,
		"history_months":   months,
		"history_pts":      historyPts,
		"docs_pts":         docsPts,
	}
}

// isFirstLien classifies free-text lien-position cells by substring match.
func isFirstLien(position string) bool {
	s := strings.ToLower(strings.TrimSpace(position))
	if s == "" {
		return false
	}
	return strings.Contains(s, "1st") || strings.Contains(s, "first") || s == "1"
}

func scoreCollateralCoverage(in Input, th Thresholds) (int, map[string]any) {
	c := th.Collateral
	m := in.Metrics

	ltvPts := c.LTV.lowerBetter(m.WeightedAvgLTV, c.LTVPoints)

	var firstLien, withLien int
	for i := range in.Records {
		if in.Records[i].LienPosition == "" {
			continue
		}
		withLien++
		if isFirstLien(in.Records[i].LienPosition) {
			firstLien++
		}
	}
	var firstLienFrac float64
	if withLien > 0 {
		firstLienFrac = float64(firstLien) / float64(withLien)
	}
	lienPts := c.FirstLien.higherBetter(firstLienFrac, c.FirstLienPoints)

	now := in.Options.now()
	var ageSum float64
	var ageN int
	for i := range in.Records {
		if in.Records[i].AppraisalDate == nil {
			continue
		}
		age := now.Sub(*in.Records[i].AppraisalDate).Hours() / 24 / 30.44
		if age < 0 {
			age = 0
		}
		ageSum += age
		ageN++
	}
	appraisalPts := c.AppraisalAbsent
	var avgAge float64
	if ageN > 0 {
		avgAge = ageSum / float64(ageN)
		appraisalPts = c.AppraisalAge.lowerBetter(avgAge, c.AppraisalPoints)
	}

	return ltvPts + lienPts + appraisalPts, map[string]any{
		"weighted_ltv":        m.WeightedAvgLTV,
		"ltv_pts":             ltvPts,
		"first_lien_fraction": firstLienFrac,
		"lien_pts":            lienPts,
		"avg_appraisal_age":   avgAge,
		"appraisal_pts":       appraisalPts,
	}
}

func scoreDiversification(in Input, th Thresholds) (int, map[string]any) {
	d := th.Diversification
	m := in.Metrics

	largestPts := d.LargestExposure.lowerBetter(m.LargestExposure, d.LargestPoints)
	top10Pts := d.Top10.lowerBetter(m.Top10Concentration, d.Top10Points)

	states := len(m.StateConcentration)
	statesPts := d.States.higherBetter(float64(states), d.StatesPoints)

	propTypes := len(m.PropertyConcentration)
	propPts := d.PropertyTypes.higherBetter(float64(propTypes), d.PropertyPoints)

	return largestPts + top10Pts + statesPts + propPts, map[string]any{
		"largest_exposure":    m.LargestExposure,
		"largest_pts":         largestPts,
		"top10_concentration": m.Top10Concentration,
		"top10_pts":           top10Pts,
		"distinct_states":     states,
		"states_pts":          statesPts,
		"distinct_prop_types": propTypes,
		"prop_types_pts":      propPts,
	}
}

func scoreRegulatoryReadiness(in Input, th Thresholds) (int, map[string]any) {
	// Placeholder category: structure information is not derivable from the
	// tape, so this stays binary pending richer inputs.
	score := th.Regulatory.WithoutStructureInfo
	if in.Options.HasStructureInfo {
		score = th.Regulatory.WithStructureInfo
	}
	return score, map[string]any{
		"has_structure_info": in.Options.HasStructureInfo,
	}
}
