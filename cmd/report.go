package main

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stonebridge/assess-cli/internal/model"
)

// printer groups thousands in dollar figures for terminal output.
var printer = message.NewPrinter(language.AmericanEnglish)

// renderReport formats an assessment result for the terminal.
func renderReport(r *model.AssessmentResult) string {
	var b strings.Builder

	b.WriteString("\n=== Portfolio Assessment ===\n")
	if r.DealID != "" {
		fmt.Fprintf(&b, "Deal:       %s\n", r.DealID)
	}
	fmt.Fprintf(&b, "Assessment: %s\n", r.ID)
	fmt.Fprintf(&b, "Score:      %d (%s)  status=%s\n", r.OverallScore, r.Grade, r.Status)
	fmt.Fprintf(&b, "Readiness:  %s (ready %d%% / conditional %d%% / not ready %d%%), timeline %s\n",
		r.Readiness, r.ReadinessSplit.Ready, r.ReadinessSplit.Conditional, r.ReadinessSplit.NotReady, r.Timeline)

	m := r.Metrics
	b.WriteString("\nPortfolio\n")
	printer.Fprintf(&b, "  %d loans, $%.0f total, $%.0f average\n", m.LoanCount, m.PortfolioSize, m.AvgLoanSize)
	fmt.Fprintf(&b, "  rate %.2f%%  LTV %.1f%%  DSCR %.2fx\n", m.WeightedAvgRate, m.WeightedAvgLTV, m.WeightedAvgDSCR)
	fmt.Fprintf(&b, "  default %.2f%%  delinquent %.2f%%  current %.2f%%\n",
		m.DefaultRate*100, (m.Delinquency30Rate+m.Delinquency60Rate+m.Delinquency90Rate)*100, m.CurrentRate*100)

	b.WriteString("\nCategories\n")
	for _, c := range r.Categories {
		fmt.Fprintf(&b, "  %-24s %3d (%-2s) x %.2f = %.1f\n", c.Category, c.Score, c.Grade, c.Weight, c.WeightedScore)
	}

	if len(r.RedFlags) > 0 {
		b.WriteString("\nRed flags\n")
		for _, f := range r.RedFlags {
			fmt.Fprintf(&b, "  [%-6s] %s\n", f.Severity, f.Message)
		}
	}

	writeList(&b, "Strengths", r.Strengths)
	writeList(&b, "Concerns", r.Concerns)
	writeList(&b, "Recommendations", r.Recommendations)

	if r.Summary != "" {
		fmt.Fprintf(&b, "\nSummary\n  %s\n", r.Summary)
	}

	if len(m.StateConcentration) > 0 {
		b.WriteString("\nState concentration\n")
		for _, kv := range sortedConcentration(m.StateConcentration) {
			fmt.Fprintf(&b, "  %-4s %.1f%%\n", kv.key, kv.val*100)
		}
	}

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

type concEntry struct {
	key string
	val float64
}

func sortedConcentration(m map[string]float64) []concEntry {
	out := make([]concEntry, 0, len(m))
	for k, v := range m {
		out = append(out, concEntry{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].val != out[j].val {
			return out[i].val > out[j].val
		}
		return out[i].key < out[j].key
	})
	return out
}
