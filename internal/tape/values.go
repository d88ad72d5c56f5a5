package tape

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/stonebridge/assess-cli/internal/model"
)

// parseNumber parses a currency or plain numeric cell. It strips dollar
// signs, commas, and whitespace, and tolerates parenthesized negatives.
// A trailing % divides by 100 only when the magnitude exceeds 1, so "8%"
// and "0.08%" both land on the same scale. Returns nil for unparsable input.
func parseNumber(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}

	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.NewReplacer("$", "", ",", "", " ", "", " ", "").Replace(s)
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if pct && math.Abs(v) > 1 {
		v /= 100
	}
	if neg {
		v = -v
	}
	return &v
}

// parseRate normalizes an interest rate to the 0-100 percent scale.
// Values at or below 0.3 are assumed to be decimal fractions (0.085 means
// 8.5%); anything above is assumed to already be a percentage. The 0.3
// cutoff is an explicit, documented heuristic: a cell holding exactly 0.3
// is indistinguishable between 30% decimal form and 0.3% percent form,
// and is read as decimal.
func parseRate(raw string) *float64 {
	v := parseNumber(raw)
	if v == nil {
		return nil
	}
	r := *v
	if r <= 0.3 {
		r *= 100
	}
	return &r
}

// parseLTV normalizes a loan-to-value figure to the 0-100 percent scale.
// Values above 1 are treated as already-percentage (75 means 75%); values
// at or below 1 as decimal fractions (0.75 means 75%).
func parseLTV(raw string) *float64 {
	v := parseNumber(raw)
	if v == nil {
		return nil
	}
	l := *v
	if l <= 1 {
		l *= 100
	}
	return &l
}

// parseFraction normalizes a percentage-bucket cell to a fraction in [0,1].
// "95%" and "0.95" both yield 0.95; bare "95" is read as a percentage.
func parseFraction(raw string) *float64 {
	v := parseNumber(raw)
	if v == nil {
		return nil
	}
	f := *v
	if f > 1 {
		f /= 100
	}
	return &f
}

// parseWholeNumber parses an integer cell, tolerating decimals and commas.
func parseWholeNumber(raw string) *int {
	v := parseNumber(raw)
	if v == nil {
		return nil
	}
	n := int(math.Round(*v))
	return &n
}

// excelEpoch is day zero of the 1900 date system (accounting for the
// fictitious 1900-02-29 that spreadsheets inherited from Lotus 1-2-3).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006-01-02T15:04:05Z07:00",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01",
	"01/2006",
}

var monthYearLayouts = []string{
	"Jan-06",
	"Jan-2006",
	"January 2006",
	"Jan 06",
}

// parseDate accepts spreadsheet serial dates, ISO and US string dates, and
// short "Mon-YY" tokens. Unparsable values become nil rather than errors.
func parseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	// Spreadsheet serial date. Plausible tapes only carry 20th/21st century
	// dates, so restrict the serial range to avoid eating loan IDs.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 20000 || serial > 80000 {
			return nil
		}
		t := excelEpoch.AddDate(0, 0, int(serial))
		return &t
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	for _, layout := range monthYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// statusAliases maps lowercase status spellings and numeric delinquency
// codes onto the closed payment-status enum.
var statusAliases = map[string]model.PaymentStatus{
	"current":     model.StatusCurrent,
	"performing":  model.StatusCurrent,
	"c":           model.StatusCurrent,
	"0":           model.StatusCurrent,
	"30":          model.Status30Day,
	"30 day":      model.Status30Day,
	"30 days":     model.Status30Day,
	"30dpd":       model.Status30Day,
	"30 dpd":      model.Status30Day,
	"30_day":      model.Status30Day,
	"30-day":      model.Status30Day,
	"60":          model.Status60Day,
	"60 day":      model.Status60Day,
	"60 days":     model.Status60Day,
	"60 dpd":      model.Status60Day,
	"60_day":      model.Status60Day,
	"60-day":      model.Status60Day,
	"90":          model.Status90Day,
	"90 day":      model.Status90Day,
	"90 days":     model.Status90Day,
	"90+":         model.Status90Day,
	"90 dpd":      model.Status90Day,
	"90_day":      model.Status90Day,
	"90-day":      model.Status90Day,
	"default":     model.StatusDefault,
	"defaulted":   model.StatusDefault,
	"in default":  model.StatusDefault,
	"npl":         model.StatusDefault,
	"foreclosure": model.StatusDefault,
	"paid off":    model.StatusPaidOff,
	"paid_off":    model.StatusPaidOff,
	"paid-off":    model.StatusPaidOff,
	"paidoff":     model.StatusPaidOff,
	"paid":        model.StatusPaidOff,
	"closed":      model.StatusPaidOff,
	"prepaid":     model.StatusPaidOff,
}

// parseStatus maps free text or numeric delinquency codes onto the status
// enum. Unrecognized values default to current.
func parseStatus(raw string) model.PaymentStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return model.StatusCurrent
	}
	if st, ok := statusAliases[s]; ok {
		return st
	}
	// Second chance for spellings like "30dpd" or "DQ 60".
	switch {
	case strings.Contains(s, "90"):
		return model.Status90Day
	case strings.Contains(s, "60"):
		return model.Status60Day
	case strings.Contains(s, "30"):
		return model.Status30Day
	case strings.Contains(s, "default") || strings.Contains(s, "foreclos"):
		return model.StatusDefault
	case strings.Contains(s, "paid") || strings.Contains(s, "payoff"):
		return model.StatusPaidOff
	}
	return model.StatusCurrent
}
