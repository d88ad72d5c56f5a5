package model

import "time"

// PaymentStatus represents the delinquency state of a single loan.
type PaymentStatus string

const (
	StatusCurrent PaymentStatus = "current"
	Status30Day   PaymentStatus = "30_day"
	Status60Day   PaymentStatus = "60_day"
	Status90Day   PaymentStatus = "90_day"
	StatusDefault PaymentStatus = "default"
	StatusPaidOff PaymentStatus = "paid_off"
)

// LoanRecord is one row of a lender's loan tape. LoanID and CurrentBalance
// are the only required fields; everything else is optional, and a missing
// value is excluded from weighted calculations rather than treated as zero.
type LoanRecord struct {
	LoanID          string        `json:"loan_id"`
	BorrowerName    string        `json:"borrower_name,omitempty"`
	OriginalBalance *float64      `json:"original_balance,omitempty"`
	CurrentBalance  float64       `json:"current_balance"`
	InterestRate    *float64      `json:"interest_rate,omitempty"` // percent, 0-100
	OriginationDate *time.Time    `json:"origination_date,omitempty"`
	MaturityDate    *time.Time    `json:"maturity_date,omitempty"`
	TermMonths      *int          `json:"term_months,omitempty"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PropertyType    string        `json:"property_type,omitempty"`
	PropertyState   string        `json:"property_state,omitempty"`
	PropertyCity    string        `json:"property_city,omitempty"`
	PropertyValue   *float64      `json:"property_value,omitempty"`
	OriginalLTV     *float64      `json:"original_ltv,omitempty"` // percent, 0-100
	CurrentLTV      *float64      `json:"current_ltv,omitempty"`  // percent, 0-100
	DSCR            *float64      `json:"dscr,omitempty"`
	LienPosition    string        `json:"lien_position,omitempty"`
	AppraisalDate   *time.Time    `json:"appraisal_date,omitempty"`
	LoanPurpose     string        `json:"loan_purpose,omitempty"`
}

// IsDelinquent reports whether the loan is in any past-due bucket or default.
func (r *LoanRecord) IsDelinquent() bool {
	switch r.PaymentStatus {
	case Status30Day, Status60Day, Status90Day, StatusDefault:
		return true
	}
	return false
}

// PerformanceRecord is one monthly snapshot from a performance-history
// workbook. Period is required; percentage buckets are fractions in [0,1].
type PerformanceRecord struct {
	Period          time.Time `json:"period"`
	Balance         *float64  `json:"balance,omitempty"`
	LoanCount       *int      `json:"loan_count,omitempty"`
	CurrentPct      *float64  `json:"current_pct,omitempty"`
	Delinquent30Pct *float64  `json:"delinquent_30_pct,omitempty"`
	Delinquent60Pct *float64  `json:"delinquent_60_pct,omitempty"`
	Delinquent90Pct *float64  `json:"delinquent_90_pct,omitempty"`
	DefaultPct      *float64  `json:"default_pct,omitempty"`
	Prepayments     *float64  `json:"prepayments,omitempty"`
	NewOriginations *float64  `json:"new_originations,omitempty"`
}

// MinHistoryMonths is the number of monthly snapshots below which a portfolio
// is treated as having limited history for scoring and red-flag purposes.
const MinHistoryMonths = 6
