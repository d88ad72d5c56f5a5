// Package tape ingests lender loan tapes and performance-history workbooks,
// normalizing heterogeneous spreadsheet layouts into canonical records.
package tape

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/stonebridge/assess-cli/internal/model"
)

// ParseResult is the outcome of parsing one loan tape. Structural problems
// are reported in Errors rather than returned as Go errors so callers can
// surface them to end users.
type ParseResult struct {
	Success         bool               `json:"success"`
	Records         []model.LoanRecord `json:"records"`
	Errors          []string           `json:"errors,omitempty"`
	Warnings        []string           `json:"warnings,omitempty"`
	UnmappedColumns []string           `json:"unmapped_columns,omitempty"`
}

// HistoryResult is the outcome of parsing one performance-history workbook.
type HistoryResult struct {
	Success         bool                      `json:"success"`
	Records         []model.PerformanceRecord `json:"records"`
	Errors          []string                  `json:"errors,omitempty"`
	Warnings        []string                  `json:"warnings,omitempty"`
	UnmappedColumns []string                  `json:"unmapped_columns,omitempty"`
}

// ParseLoanTape parses raw workbook bytes into loan records. The filename is
// used only as a logging hint; sheet selection looks at sheet names.
func ParseLoanTape(data []byte, filename string) *ParseResult {
	res := &ParseResult{}

	rows, err := readSheet(data, []string{"loan", "tape"})
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("unreadable workbook: %v", err))
		return res
	}
	if len(rows) < 2 {
		res.Errors = append(res.Errors, "workbook has no data rows")
		return res
	}

	colMap, unmapped := resolveHeaders(rows[0], loanAliases)
	res.UnmappedColumns = unmapped

	if missing := missingRequired(colMap); len(missing) > 0 {
		res.Errors = append(res.Errors, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
		return res
	}

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header row
		if isBlankRow(row) {
			continue
		}
		rec, ok := parseLoanRow(row, colMap)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: skipped (missing loan ID or current balance)", rowNum))
			continue
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Records) == 0 {
		res.Errors = append(res.Errors, "no valid loan records found")
		return res
	}

	res.Success = true
	zap.L().Info("tape: parsed loan tape",
		zap.String("file", filename),
		zap.Int("records", len(res.Records)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int("unmapped_columns", len(res.UnmappedColumns)),
	)
	return res
}

// ParsePerformanceHistory parses raw workbook bytes into monthly snapshots,
// sorted ascending by period.
func ParsePerformanceHistory(data []byte, filename string) *HistoryResult {
	res := &HistoryResult{}

	rows, err := readSheet(data, []string{"performance", "history"})
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("unreadable workbook: %v", err))
		return res
	}
	if len(rows) < 2 {
		res.Errors = append(res.Errors, "workbook has no data rows")
		return res
	}

	colMap, unmapped := resolveHeaders(rows[0], historyAliases)
	res.UnmappedColumns = unmapped

	if !hasField(colMap, fieldPeriod) {
		res.Errors = append(res.Errors, "missing required columns: period")
		return res
	}

	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}
		rec, ok := parseHistoryRow(row, colMap)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: skipped (unparsable period)", rowNum))
			continue
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Records) == 0 {
		res.Errors = append(res.Errors, "no valid performance records found")
		return res
	}

	sort.Slice(res.Records, func(a, b int) bool {
		return res.Records[a].Period.Before(res.Records[b].Period)
	})

	res.Success = true
	zap.L().Info("tape: parsed performance history",
		zap.String("file", filename),
		zap.Int("months", len(res.Records)),
	)
	return res
}

// readSheet opens the workbook and returns the rows of the most relevant
// sheet: the first sheet whose name contains one of the hints, else the
// first sheet.
func readSheet(data []byte, nameHints []string) ([][]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, err
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	sheet := f.Sheets[0]
seek:
	for _, s := range f.Sheets {
		name := strings.ToLower(s.Name)
		for _, hint := range nameHints {
			if strings.Contains(name, hint) {
				sheet = s
				break seek
			}
		}
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func missingRequired(colMap map[int]string) []string {
	var missing []string
	for _, f := range requiredLoanFields {
		if !hasField(colMap, f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func hasField(colMap map[int]string, field string) bool {
	for _, f := range colMap {
		if f == field {
			return true
		}
	}
	return false
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseLoanRow builds a LoanRecord from one row. Returns ok=false when the
// row lacks a loan ID or a parsable current balance; every other field is
// tolerant of malformed input and simply stays absent.
func parseLoanRow(row []string, colMap map[int]string) (model.LoanRecord, bool) {
	rec := model.LoanRecord{PaymentStatus: model.StatusCurrent}
	var haveBalance bool

	for idx, field := range colMap {
		raw := cellAt(row, idx)
		if raw == "" {
			continue
		}
		switch field {
		case fieldLoanID:
			rec.LoanID = raw
		case fieldBorrowerName:
			rec.BorrowerName = raw
		case fieldOriginalBalance:
			rec.OriginalBalance = parseNumber(raw)
		case fieldCurrentBalance:
			if v := parseNumber(raw); v != nil {
				rec.CurrentBalance = *v
				haveBalance = true
			}
		case fieldInterestRate:
			rec.InterestRate = parseRate(raw)
		case fieldOriginationDate:
			rec.OriginationDate = parseDate(raw)
		case fieldMaturityDate:
			rec.MaturityDate = parseDate(raw)
		case fieldTermMonths:
			rec.TermMonths = parseWholeNumber(raw)
		case fieldPaymentStatus:
			rec.PaymentStatus = parseStatus(raw)
		case fieldPropertyType:
			rec.PropertyType = raw
		case fieldPropertyState:
			rec.PropertyState = raw
		case fieldPropertyCity:
			rec.PropertyCity = raw
		case fieldPropertyValue:
			rec.PropertyValue = parseNumber(raw)
		case fieldOriginalLTV:
			rec.OriginalLTV = parseLTV(raw)
		case fieldCurrentLTV:
			rec.CurrentLTV = parseLTV(raw)
		case fieldDSCR:
			if v := parseNumber(raw); v != nil && *v >= 0 {
				rec.DSCR = v
			}
		case fieldLienPosition:
			rec.LienPosition = raw
		case fieldAppraisalDate:
			rec.AppraisalDate = parseDate(raw)
		case fieldLoanPurpose:
			rec.LoanPurpose = raw
		}
	}

	if rec.LoanID == "" || !haveBalance {
		return model.LoanRecord{}, false
	}
	return rec, true
}

// parseHistoryRow builds a PerformanceRecord from one row. Returns ok=false
// when the period cell cannot be parsed.
func parseHistoryRow(row []string, colMap map[int]string) (model.PerformanceRecord, bool) {
	var rec model.PerformanceRecord
	var havePeriod bool

	for idx, field := range colMap {
		raw := cellAt(row, idx)
		if raw == "" {
			continue
		}
		switch field {
		case fieldPeriod:
			if t := parseDate(raw); t != nil {
				rec.Period = *t
				havePeriod = true
			}
		case fieldBalance:
			rec.Balance = parseNumber(raw)
		case fieldLoanCount:
			rec.LoanCount = parseWholeNumber(raw)
		case fieldCurrentPct:
			rec.CurrentPct = parseFraction(raw)
		case fieldDelinquent30:
			rec.Delinquent30Pct = parseFraction(raw)
		case fieldDelinquent60:
			rec.Delinquent60Pct = parseFraction(raw)
		case fieldDelinquent90:
			rec.Delinquent90Pct = parseFraction(raw)
		case fieldDefaultPct:
			rec.DefaultPct = parseFraction(raw)
		case fieldPrepayments:
			rec.Prepayments = parseNumber(raw)
		case fieldNewOriginations:
			rec.NewOriginations = parseNumber(raw)
		}
	}

	if !havePeriod {
		return model.PerformanceRecord{}, false
	}
	return rec, true
}
