// Package metrics reduces normalized loan records into a single portfolio
// snapshot: weighted averages, delinquency buckets, and concentration
// measures. Everything here is a pure function over immutable inputs.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/stonebridge/assess-cli/internal/model"
)

// Calculate computes a PortfolioMetrics snapshot from loan records and
// optional monthly history. The caller supplies "now" so loan age and
// remaining term are reproducible in tests.
func Calculate(records []model.LoanRecord, history []model.PerformanceRecord, now time.Time) model.PortfolioMetrics {
	m := model.PortfolioMetrics{
		LoanCount:             len(records),
		StateConcentration:    map[string]float64{},
		PropertyConcentration: map[string]float64{},
	}

	for _, r := range records {
		m.PortfolioSize += r.CurrentBalance
	}
	if m.LoanCount > 0 {
		m.AvgLoanSize = m.PortfolioSize / float64(m.LoanCount)
	}

	m.WeightedAvgRate = weightedAvg(records, func(r *model.LoanRecord) *float64 { return r.InterestRate })
	m.WeightedAvgLTV = weightedAvg(records, func(r *model.LoanRecord) *float64 { return r.CurrentLTV })
	m.WeightedAvgDSCR = weightedAvg(records, func(r *model.LoanRecord) *float64 { return r.DSCR })

	statusRates(&m, records)
	concentration(&m, records)
	ages(&m, records, now)

	return m
}

// weightedAvg computes a currentBalance-weighted average of the given metric.
// Only records where both the metric and the weight are present contribute;
// a zero weight sum yields 0 rather than a division error.
func weightedAvg(records []model.LoanRecord, metric func(*model.LoanRecord) *float64) float64 {
	var sum, weightSum float64
	for i := range records {
		v := metric(&records[i])
		if v == nil || records[i].CurrentBalance <= 0 {
			continue
		}
		sum += *v * records[i].CurrentBalance
		weightSum += records[i].CurrentBalance
	}
	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// statusRates partitions loans by payment status. The denominator excludes
// paid-off loans; zero active loans yields all-zero rates.
func statusRates(m *model.PortfolioMetrics, records []model.LoanRecord) {
	counts := map[model.PaymentStatus]int{}
	for i := range records {
		counts[records[i].PaymentStatus]++
	}

	active := len(records) - counts[model.StatusPaidOff]
	if active <= 0 {
		return
	}
	n := float64(active)
	m.CurrentRate = float64(counts[model.StatusCurrent]) / n
	m.Delinquency30Rate = float64(counts[model.Status30Day]) / n
	m.Delinquency60Rate = float64(counts[model.Status60Day]) / n
	m.Delinquency90Rate = float64(counts[model.Status90Day]) / n
	m.DefaultRate = float64(counts[model.StatusDefault]) / n
}

// concentration computes single-name and top-10 exposure plus geographic and
// property-type concentration maps, all as fractions of portfolio size.
func concentration(m *model.PortfolioMetrics, records []model.LoanRecord) {
	if m.PortfolioSize == 0 || len(records) == 0 {
		return
	}

	balances := make([]float64, len(records))
	for i := range records {
		balances[i] = records[i].CurrentBalance
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(balances)))

	m.LargestExposure = balances[0] / m.PortfolioSize

	topN := 10
	if len(balances) < topN {
		topN = len(balances)
	}
	var top10 float64
	for _, b := range balances[:topN] {
		top10 += b
	}
	m.Top10Concentration = top10 / m.PortfolioSize

	stateTotals := map[string]float64{}
	propTotals := map[string]float64{}
	for i := range records {
		r := &records[i]
		if r.CurrentBalance <= 0 {
			continue
		}
		if r.PropertyState != "" {
			stateTotals[r.PropertyState] += r.CurrentBalance
		}
		if r.PropertyType != "" {
			propTotals[r.PropertyType] += r.CurrentBalance
		}
	}
	for k, v := range stateTotals {
		m.StateConcentration[k] = round3(v / m.PortfolioSize)
	}
	for k, v := range propTotals {
		m.PropertyConcentration[k] = round3(v / m.PortfolioSize)
	}
}

// ages computes average loan age and average remaining term in whole months.
// Records missing the relevant date are excluded from the average; remaining
// term is floored at 0 for matured loans.
func ages(m *model.PortfolioMetrics, records []model.LoanRecord, now time.Time) {
	var ageSum, ageN, remSum, remN float64
	for i := range records {
		r := &records[i]
		if r.OriginationDate != nil {
			ageSum += float64(monthsBetween(*r.OriginationDate, now))
			ageN++
		}
		if r.MaturityDate != nil {
			rem := monthsBetween(now, *r.MaturityDate)
			if rem < 0 {
				rem = 0
			}
			remSum += float64(rem)
			remN++
		}
	}
	if ageN > 0 {
		m.AvgLoanAgeMonths = ageSum / ageN
	}
	if remN > 0 {
		m.AvgRemainingTermMonths = remSum / remN
	}
}

// monthsBetween returns whole calendar months from a to b (negative when b
// precedes a).
func monthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
