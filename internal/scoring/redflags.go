package scoring

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stonebridge/assess-cli/internal/model"
)

// currency formats thousands-grouped dollar amounts for flag messages.
var currency = message.NewPrinter(language.AmericanEnglish)

// DetectRedFlags runs the fixed rule battery over metrics and raw records.
// Every rule is evaluated independently; all triggered flags are collected.
func DetectRedFlags(in Input, th Thresholds) []model.RedFlag {
	var flags []model.RedFlag
	m := in.Metrics
	r := th.RedFlags

	if m.DefaultRate > r.MaxDefaultRate {
		flags = append(flags, model.RedFlag{
			Type:     "high_default_rate",
			Severity: model.SeverityHigh,
			Message:  fmt.Sprintf("Default rate of %.1f%% exceeds the %.0f%% ceiling", m.DefaultRate*100, r.MaxDefaultRate*100),
			Details:  map[string]any{"default_rate": m.DefaultRate},
		})
	}

	if ids := loansWithStatus(in.Records, model.Status90Day, model.StatusDefault); len(ids) > 0 {
		flags = append(flags, model.RedFlag{
			Type:     "severely_delinquent_loans",
			Severity: model.SeverityHigh,
			Message:  fmt.Sprintf("%d loan(s) are 90+ days delinquent or in default", len(ids)),
			Details:  map[string]any{"loan_ids": ids},
		})
	}

	if m.LargestExposure > r.MaxLargestExposure {
		flags = append(flags, model.RedFlag{
			Type:     "concentration_risk",
			Severity: model.SeverityHigh,
			Message: currency.Sprintf("Largest single exposure is %.1f%% of the portfolio ($%.0f)",
				m.LargestExposure*100, m.LargestExposure*m.PortfolioSize),
			Details: map[string]any{"largest_exposure": m.LargestExposure},
		})
	}

	if m.WeightedAvgLTV > r.MaxWeightedLTV {
		flags = append(flags, model.RedFlag{
			Type:     "high_ltv",
			Severity: model.SeverityMedium,
			Message:  fmt.Sprintf("Weighted average LTV of %.1f%% exceeds %.0f%%", m.WeightedAvgLTV, r.MaxWeightedLTV),
			Details:  map[string]any{"weighted_avg_ltv": m.WeightedAvgLTV},
		})
	}

	if ids := loansBelowDSCR(in.Records, r.MinDSCR); len(ids) > 0 {
		flags = append(flags, model.RedFlag{
			Type:     "insufficient_cash_flow",
			Severity: model.SeverityMedium,
			Message:  fmt.Sprintf("%d loan(s) have DSCR below %.1fx", len(ids), r.MinDSCR),
			Details:  map[string]any{"loan_ids": ids},
		})
	}

	if ids := staleAppraisals(in, r.MaxAppraisalAge); len(ids) > 0 {
		flags = append(flags, model.RedFlag{
			Type:     "stale_appraisals",
			Severity: model.SeverityMedium,
			Message:  fmt.Sprintf("%d loan(s) have appraisals older than %d months", len(ids), r.MaxAppraisalAge),
			Details:  map[string]any{"loan_ids": ids},
		})
	}

	if len(in.History) < r.MinHistoryMonths {
		flags = append(flags, model.RedFlag{
			Type:     "limited_history",
			Severity: model.SeverityLow,
			Message:  fmt.Sprintf("Only %d month(s) of performance history provided (minimum %d)", len(in.History), r.MinHistoryMonths),
			Details:  map[string]any{"history_months": len(in.History)},
		})
	}

	return flags
}

func loansWithStatus(records []model.LoanRecord, statuses ...model.PaymentStatus) []string {
	var ids []string
	for i := range records {
		for _, s := range statuses {
			if records[i].PaymentStatus == s {
				ids = append(ids, records[i].LoanID)
				break
			}
		}
	}
	return ids
}

func loansBelowDSCR(records []model.LoanRecord, min float64) []string {
	var ids []string
	for i := range records {
		if records[i].DSCR != nil && *records[i].DSCR < min {
			ids = append(ids, records[i].LoanID)
		}
	}
	return ids
}

func staleAppraisals(in Input, maxMonths int) []string {
	now := in.Options.now()
	var ids []string
	for i := range in.Records {
		r := &in.Records[i]
		if r.AppraisalDate == nil {
			continue
		}
		ageMonths := now.Sub(*r.AppraisalDate).Hours() / 24 / 30.44
		if ageMonths > float64(maxMonths) {
			ids = append(ids, r.LoanID)
		}
	}
	return ids
}
