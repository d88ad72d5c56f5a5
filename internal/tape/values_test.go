package tape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonebridge/assess-cli/internal/model"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"plain", "1234.5", ptrFloat64(1234.5)},
		{"dollar and commas", "$1,250,000", ptrFloat64(1250000)},
		{"parenthesized negative", "(500)", ptrFloat64(-500)},
		{"percent over one", "8%", ptrFloat64(0.08)},
		{"percent under one", "0.08%", ptrFloat64(0.08)},
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"text", "n/a", nil},
		{"bare symbols", "$,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNumber(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"decimal fraction", "0.085", ptrFloat64(8.5)},
		{"already percent", "8.5", ptrFloat64(8.5)},
		{"percent sign", "8%", ptrFloat64(8)},
		{"cutoff reads as decimal", "0.3", ptrFloat64(30)},
		{"just above cutoff", "0.31", ptrFloat64(0.31)},
		{"unparsable", "prime+2", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRate(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestParseLTV(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"fraction", "0.75", 75},
		{"percent", "75", 75},
		{"percent sign", "75%", 75},
		{"exactly one", "1", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLTV(tt.raw)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestParseFraction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"percent sign", "95%", 0.95},
		{"fraction", "0.95", 0.95},
		{"bare percent", "95", 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFraction(tt.raw)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string // yyyy-mm-dd, empty means nil
	}{
		{"iso", "2024-03-15", "2024-03-15"},
		{"us slash", "03/15/2024", "2024-03-15"},
		{"short us slash", "3/5/2024", "2024-03-05"},
		{"month year", "Jan-24", "2024-01-01"},
		{"excel serial", "45000", "2023-03-15"},
		{"serial below range", "12345", ""},
		{"serial above range", "99999", ""},
		{"loan-id lookalike", "1001", ""},
		{"garbage", "soon", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.raw)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestParseDateSerialEpoch(t *testing.T) {
	// Serial 25569 is 1970-01-01 in the 1900 date system.
	got := parseDate("25569")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want model.PaymentStatus
	}{
		{"current", model.StatusCurrent},
		{"Performing", model.StatusCurrent},
		{"", model.StatusCurrent},
		{"30", model.Status30Day},
		{"30 DPD", model.Status30Day},
		{"dq 30", model.Status30Day},
		{"60 days", model.Status60Day},
		{"90+", model.Status90Day},
		{"90 Days Past Due", model.Status90Day},
		{"Default", model.StatusDefault},
		{"in foreclosure", model.StatusDefault},
		{"NPL", model.StatusDefault},
		{"Paid Off", model.StatusPaidOff},
		{"payoff complete", model.StatusPaidOff},
		{"unknown gibberish", model.StatusCurrent},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseStatus(tt.raw))
		})
	}
}

func ptrFloat64(v float64) *float64 { return &v }
