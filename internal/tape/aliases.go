package tape

import "strings"

// Canonical field names for loan-tape columns.
const (
	fieldLoanID          = "loanId"
	fieldBorrowerName    = "borrowerName"
	fieldOriginalBalance = "originalBalance"
	fieldCurrentBalance  = "currentBalance"
	fieldInterestRate    = "interestRate"
	fieldOriginationDate = "originationDate"
	fieldMaturityDate    = "maturityDate"
	fieldTermMonths      = "termMonths"
	fieldPaymentStatus   = "paymentStatus"
	fieldPropertyType    = "propertyType"
	fieldPropertyState   = "propertyState"
	fieldPropertyCity    = "propertyCity"
	fieldPropertyValue   = "propertyValue"
	fieldOriginalLTV     = "originalLtv"
	fieldCurrentLTV      = "currentLtv"
	fieldDSCR            = "dscr"
	fieldLienPosition    = "lienPosition"
	fieldAppraisalDate   = "appraisalDate"
	fieldLoanPurpose     = "loanPurpose"
)

// Canonical field names for performance-history columns.
const (
	fieldPeriod          = "period"
	fieldBalance         = "balance"
	fieldLoanCount       = "loanCount"
	fieldCurrentPct      = "currentPct"
	fieldDelinquent30    = "delinquent30Pct"
	fieldDelinquent60    = "delinquent60Pct"
	fieldDelinquent90    = "delinquent90Pct"
	fieldDefaultPct      = "defaultPct"
	fieldPrepayments     = "prepayments"
	fieldNewOriginations = "newOriginations"
)

// loanAliases maps normalized header spellings onto canonical loan-tape
// fields. Resolution is a flat lookup, not fuzzy matching: a header either
// normalizes to one of these keys or lands in UnmappedColumns.
var loanAliases = map[string]string{
	"loanid":       fieldLoanID,
	"loannumber":   fieldLoanID,
	"loanno":       fieldLoanID,
	"loan":         fieldLoanID,
	"id":           fieldLoanID,
	"accountid":    fieldLoanID,
	"accountno":    fieldLoanID,
	"dealid":       fieldLoanID,
	"assetid":      fieldLoanID,
	"loanidnumber": fieldLoanID,

	"borrower":       fieldBorrowerName,
	"borrowername":   fieldBorrowerName,
	"obligor":        fieldBorrowerName,
	"sponsorname":    fieldBorrowerName,
	"customername":   fieldBorrowerName,
	"borrowerentity": fieldBorrowerName,

	"originalbalance":    fieldOriginalBalance,
	"origbalance":        fieldOriginalBalance,
	"originalamount":     fieldOriginalBalance,
	"origamount":         fieldOriginalBalance,
	"loanamount":         fieldOriginalBalance,
	"originalloanamount": fieldOriginalBalance,
	"originationbalance": fieldOriginalBalance,

	"currentbalance":     fieldCurrentBalance,
	"currbalance":        fieldCurrentBalance,
	"currentupb":         fieldCurrentBalance,
	"upb":                fieldCurrentBalance,
	"unpaidbalance":      fieldCurrentBalance,
	"outstandingbalance": fieldCurrentBalance,
	"balance":            fieldCurrentBalance,
	"currentamount":      fieldCurrentBalance,
	"endingbalance":      fieldCurrentBalance,

	"interestrate": fieldInterestRate,
	"rate":         fieldInterestRate,
	"noterate":     fieldInterestRate,
	"coupon":       fieldInterestRate,
	"intrate":      fieldInterestRate,
	"grossrate":    fieldInterestRate,

	"originationdate": fieldOriginationDate,
	"origdate":        fieldOriginationDate,
	"closingdate":     fieldOriginationDate,
	"fundingdate":     fieldOriginationDate,
	"notedate":        fieldOriginationDate,
	"startdate":       fieldOriginationDate,

	"maturitydate": fieldMaturityDate,
	"maturity":     fieldMaturityDate,
	"matdate":      fieldMaturityDate,
	"enddate":      fieldMaturityDate,
	"balloondate":  fieldMaturityDate,

	"term":         fieldTermMonths,
	"termmonths":   fieldTermMonths,
	"loanterm":     fieldTermMonths,
	"origterm":     fieldTermMonths,
	"terminmonths": fieldTermMonths,

	"paymentstatus":     fieldPaymentStatus,
	"status":            fieldPaymentStatus,
	"loanstatus":        fieldPaymentStatus,
	"delinquencystatus": fieldPaymentStatus,
	"dqstatus":          fieldPaymentStatus,
	"performancestatus": fieldPaymentStatus,

	"propertytype":   fieldPropertyType,
	"proptype":       fieldPropertyType,
	"collateraltype": fieldPropertyType,
	"assettype":      fieldPropertyType,

	"state":         fieldPropertyState,
	"propertystate": fieldPropertyState,
	"propstate":     fieldPropertyState,
	"st":            fieldPropertyState,

	"city":         fieldPropertyCity,
	"propertycity": fieldPropertyCity,
	"propcity":     fieldPropertyCity,

	"propertyvalue":   fieldPropertyValue,
	"propvalue":       fieldPropertyValue,
	"appraisedvalue":  fieldPropertyValue,
	"collateralvalue": fieldPropertyValue,
	"asis":            fieldPropertyValue,
	"marketvalue":     fieldPropertyValue,

	"originalltv":      fieldOriginalLTV,
	"origltv":          fieldOriginalLTV,
	"ltvatorigination": fieldOriginalLTV,

	"currentltv": fieldCurrentLTV,
	"ltv":        fieldCurrentLTV,
	"currltv":    fieldCurrentLTV,
	"ltvcurrent": fieldCurrentLTV,

	"dscr":                     fieldDSCR,
	"debtservicecoverage":      fieldDSCR,
	"debtservicecoverageratio": fieldDSCR,
	"dcr":                      fieldDSCR,

	"lienposition": fieldLienPosition,
	"lien":         fieldLienPosition,
	"lienpriority": fieldLienPosition,
	"position":     fieldLienPosition,

	"appraisaldate":     fieldAppraisalDate,
	"appraisal":         fieldAppraisalDate,
	"valuationdate":     fieldAppraisalDate,
	"lastappraisaldate": fieldAppraisalDate,

	"loanpurpose": fieldLoanPurpose,
	"purpose":     fieldLoanPurpose,
	"purposetype": fieldLoanPurpose,
}

// historyAliases maps normalized header spellings onto canonical
// performance-history fields.
var historyAliases = map[string]string{
	"period":         fieldPeriod,
	"month":          fieldPeriod,
	"date":           fieldPeriod,
	"asofdate":       fieldPeriod,
	"reportmonth":    fieldPeriod,
	"reportedperiod": fieldPeriod,

	"balance":          fieldBalance,
	"portfoliobalance": fieldBalance,
	"totalbalance":     fieldBalance,
	"upb":              fieldBalance,
	"endingbalance":    fieldBalance,

	"loancount":     fieldLoanCount,
	"count":         fieldLoanCount,
	"numberofloans": fieldLoanCount,
	"loans":         fieldLoanCount,

	"current":    fieldCurrentPct,
	"currentpct": fieldCurrentPct,
	"pctcurrent": fieldCurrentPct,

	"30day":    fieldDelinquent30,
	"30days":   fieldDelinquent30,
	"30dpd":    fieldDelinquent30,
	"dq30":     fieldDelinquent30,
	"30daypct": fieldDelinquent30,

	"60day":    fieldDelinquent60,
	"60days":   fieldDelinquent60,
	"60dpd":    fieldDelinquent60,
	"dq60":     fieldDelinquent60,
	"60daypct": fieldDelinquent60,

	"90day":    fieldDelinquent90,
	"90days":   fieldDelinquent90,
	"90dpd":    fieldDelinquent90,
	"dq90":     fieldDelinquent90,
	"90daypct": fieldDelinquent90,

	"default":     fieldDefaultPct,
	"defaults":    fieldDefaultPct,
	"defaultpct":  fieldDefaultPct,
	"defaultrate": fieldDefaultPct,

	"prepayments":   fieldPrepayments,
	"prepays":       fieldPrepayments,
	"prepaymentamt": fieldPrepayments,

	"neworiginations": fieldNewOriginations,
	"originations":    fieldNewOriginations,
	"newloans":        fieldNewOriginations,
}

// requiredLoanFields must all resolve from the tape's headers or the parse
// fails with an explicit error naming the missing fields.
var requiredLoanFields = []string{fieldLoanID, fieldCurrentBalance, fieldInterestRate}

// normalizeHeader lowercases a header and strips everything but letters and
// digits, so "Orig. Balance", "orig_balance", and "OrigBalance" collide.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// resolveHeaders maps each raw header to a canonical field via the alias
// table. Returns column index → canonical field, plus the headers that
// matched nothing.
func resolveHeaders(headers []string, aliases map[string]string) (map[int]string, []string) {
	mapped := make(map[int]string)
	var unmapped []string
	seen := make(map[string]bool)

	for i, h := range headers {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		field, ok := aliases[key]
		if !ok {
			unmapped = append(unmapped, strings.TrimSpace(h))
			continue
		}
		// First matching column wins for a given canonical field.
		if seen[field] {
			continue
		}
		seen[field] = true
		mapped[i] = field
	}
	return mapped, unmapped
}
