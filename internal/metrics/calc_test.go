package metrics

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

func loan(id string, balance float64, opts ...func(*model.LoanRecord)) model.LoanRecord {
	r := model.LoanRecord{
		LoanID:         id,
		CurrentBalance: balance,
		PaymentStatus:  model.StatusCurrent,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func withStatus(s model.PaymentStatus) func(*model.LoanRecord) {
	return func(r *model.LoanRecord) { r.PaymentStatus = s }
}

func withRate(v float64) func(*model.LoanRecord) {
	return func(r *model.LoanRecord) { r.InterestRate = ptrFloat64(v) }
}

func withState(s string) func(*model.LoanRecord) {
	return func(r *model.LoanRecord) { r.PropertyState = s }
}

func TestCalculateBasics(t *testing.T) {
	records := []model.LoanRecord{
		loan("L1", 100000),
		loan("L2", 200000),
		loan("L3", 300000),
	}

	m := Calculate(records, nil, testNow)

	assert.Equal(t, 3, m.LoanCount)
	assert.InDelta(t, 600000, m.PortfolioSize, 1e-9)
	assert.InDelta(t, 200000, m.AvgLoanSize, 1e-9)
}

func TestCalculateEmpty(t *testing.T) {
	m := Calculate(nil, nil, testNow)

	assert.Equal(t, 0, m.LoanCount)
	assert.Zero(t, m.PortfolioSize)
	assert.Zero(t, m.AvgLoanSize)
	assert.Zero(t, m.WeightedAvgRate)
	assert.Zero(t, m.LargestExposure)
	assert.NotNil(t, m.StateConcentration)
	assert.NotNil(t, m.PropertyConcentration)
}

func TestWeightedAvgRate(t *testing.T) {
	records := []model.LoanRecord{
		loan("L1", 100000, withRate(6)),
		loan("L2", 300000, withRate(10)),
	}

	m := Calculate(records, nil, testNow)

	// (6*100k + 10*300k) / 400k = 9
	assert.InDelta(t, 9, m.WeightedAvgRate, 1e-9)
}

func TestWeightedAvgSkipsMissing(t *testing.T) {
	records := []model.LoanRecord{
		loan("L1", 100000, withRate(6)),
		loan("L2", 900000), // no rate, excluded entirely
	}

	m := Calculate(records, nil, testNow)

	assert.InDelta(t, 6, m.WeightedAvgRate, 1e-9)
}

func TestWeightedAvgAllMissing(t *testing.T) {
	records := []model.LoanRecord{
		loan("L1", 100000),
		loan("L2", 200000),
	}

	m := Calculate(records, nil, testNow)

	assert.Zero(t, m.WeightedAvgRate)
	assert.Zero(t, m.WeightedAvgDSCR)
}

func TestStatusRatesExcludePaidOff(t *testing.T) {
	records := []model.LoanRecord{
		loan("L1", 100, withStatus(model.StatusCurrent)),
		loan("L2", 100, withStatus(model.StatusCurrent)),
		loan("L3", 100, withStatus(model.Status30Day)),
		loan("L4", 100, withStatus(model.StatusDefault)),
		loan("L5", 100, withStatus(model.StatusPaidOff)),
	}

	m := Calculate(records, nil, testNow)

	// Denominator is 4 active loans, not 5.
	assert.InDelta(t, 0.5, m.CurrentRate, 1e-9)
	assert.InDelta(t, 0.25, m.Delinquency30Rate, 1e-9)
	assert.InDelta(t, 0.25, m.DefaultRate, 1e-9)
	assert.Zero(t, m.Delinquency60Rate)
}

func TestStatusRatesAllPaidOff(t *testing.T) {
	records := []model.LoanRecord{
		loan("L1", 100, withStatus(model.StatusPaidOff)),
	}

	m := Calculate(records, nil, testNow)

	assert.Zero(t, m.CurrentRate)
	assert.Zero(t, m.DefaultRate)
}

func TestConcentration(t *testing.T) {
	records := []model.LoanRecord{
		loan("L1", 500000, withState("TX")),
		loan("L2", 300000, withState("TX")),
		loan("L3", 200000, withState("CA")),
	}

	m := Calculate(records, nil, testNow)

	assert.InDelta(t, 0.5, m.LargestExposure, 1e-9)
	assert.InDelta(t, 1.0, m.Top10Concentration, 1e-9)
	assert.InDelta(t, 0.8, m.StateConcentration["TX"], 1e-9)
	assert.InDelta(t, 0.2, m.StateConcentration["CA"], 1e-9)
}

func TestTop10Concentration(t *testing.T) {
	records := make([]model.LoanRecord, 0, 20)
	for i := 0; i < 20; i++ {
		records = append(records, loan("L", 100))
	}
	records = append(records, loan("BIG", 2000))

	m := Calculate(records, nil, testNow)

	// Portfolio 4000: big loan 2000 plus nine 100s = 2900.
	assert.InDelta(t, 0.5, m.LargestExposure, 1e-9)
	assert.InDelta(t, 0.725, m.Top10Concentration, 1e-9)
}

func TestAges(t *testing.T) {
	records := []model.LoanRecord{
		func() model.LoanRecord {
			r := loan("L1", 100000)
			r.OriginationDate = ptrTime(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
			r.MaturityDate = ptrTime(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
			return r
		}(),
		func() model.LoanRecord {
			r := loan("L2", 100000)
			r.OriginationDate = ptrTime(time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC))
			// Matured loans contribute zero remaining term, never negative.
			r.MaturityDate = ptrTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
			return r
		}(),
	}

	m := Calculate(records, nil, testNow)

	assert.InDelta(t, 18, m.AvgLoanAgeMonths, 1e-9)      // (12+24)/2
	assert.InDelta(t, 6, m.AvgRemainingTermMonths, 1e-9) // (12+0)/2
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"exact year", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 12},
		{"day short of a month", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 7, 14, 0, 0, 0, 0, time.UTC), 0},
		{"negative", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, monthsBetween(tt.a, tt.b))
		})
	}
}

func TestCalculateIgnoresHistoryForSnapshot(t *testing.T) {
	history := []model.PerformanceRecord{
		{Period: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), DefaultPct: ptrFloat64(0.5)},
	}
	records := []model.LoanRecord{loan("L1", 100000)}

	m := Calculate(records, history, testNow)

	// Snapshot rates come from the tape, not the history trend.
	require.Equal(t, 1, m.LoanCount)
	assert.Zero(t, m.DefaultRate)
	assert.InDelta(t, 1.0, m.CurrentRate, 1e-9)
}
