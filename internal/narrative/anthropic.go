package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/stonebridge/assess-cli/internal/model"
	"github.com/stonebridge/assess-cli/internal/resilience"
	"github.com/stonebridge/assess-cli/pkg/anthropic"
)

const systemPrompt = `You are a senior credit analyst reviewing a loan portfolio for tokenization readiness. Respond with a single JSON object only: {"summary": string, "strengths": [string], "concerns": [string], "recommendations": [string], "tokenization_assessment": string}. Be specific and reference the numbers provided.`

// AnthropicGenerator produces narratives via the Anthropic Messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
}

// NewAnthropicGenerator builds a generator around an injected client.
func NewAnthropicGenerator(client anthropic.Client, modelID string, maxTokens int64) *AnthropicGenerator {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &AnthropicGenerator{
		client:    client,
		model:     modelID,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(rate.Limit(1), 2),
		retry:     resilience.DefaultRetryConfig(),
	}
}

// Analyze requests a qualitative review of the assessment. Every failure
// mode - network errors, unparsable responses, cancellation - returns a nil
// narrative so the caller's deterministic baseline stands.
func (g *AnthropicGenerator) Analyze(ctx context.Context, result *model.AssessmentResult) (*Narrative, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, nil
	}

	req := anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(result)},
		},
	}

	resp, err := resilience.DoVal(ctx, g.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return g.client.CreateMessage(ctx, req)
	})
	if err != nil {
		zap.L().Warn("narrative: generation failed, using baseline only", zap.Error(err))
		return nil, nil
	}

	resp.Usage.LogUsage(g.model, "narrative")

	n := parseNarrative(responseText(resp))
	if n == nil {
		zap.L().Warn("narrative: response contained no parsable JSON object")
	}
	return n, nil
}

// buildPrompt embeds the full metrics, scores, and red-flag context.
func buildPrompt(r *model.AssessmentResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Overall score %d (%s), status %s, readiness %s.\n\n", r.OverallScore, r.Grade, r.Status, r.Readiness)

	b.WriteString("Category scores:\n")
	for _, c := range r.Categories {
		fmt.Fprintf(&b, "- %s: %d (%s, weight %.2f)\n", c.Category, c.Score, c.Grade, c.Weight)
	}

	m := r.Metrics
	fmt.Fprintf(&b, "\nPortfolio metrics: %d loans, $%.0f total balance, avg loan $%.0f.\n", m.LoanCount, m.PortfolioSize, m.AvgLoanSize)
	fmt.Fprintf(&b, "Weighted avg rate %.2f%%, LTV %.1f%%, DSCR %.2fx.\n", m.WeightedAvgRate, m.WeightedAvgLTV, m.WeightedAvgDSCR)
	fmt.Fprintf(&b, "Default rate %.2f%%, delinquency 30/60/90: %.2f%%/%.2f%%/%.2f%%, current %.2f%%.\n",
		m.DefaultRate*100, m.Delinquency30Rate*100, m.Delinquency60Rate*100, m.Delinquency90Rate*100, m.CurrentRate*100)
	fmt.Fprintf(&b, "Largest exposure %.1f%%, top-10 concentration %.1f%%, %d states, %d property types.\n",
		m.LargestExposure*100, m.Top10Concentration*100, len(m.StateConcentration), len(m.PropertyConcentration))

	if len(r.RedFlags) > 0 {
		b.WriteString("\nRed flags:\n")
		for _, f := range r.RedFlags {
			fmt.Fprintf(&b, "- [%s] %s\n", f.Severity, f.Message)
		}
	} else {
		b.WriteString("\nNo red flags detected.\n")
	}

	b.WriteString("\nProvide your qualitative review as the JSON object described in the system prompt.")
	return b.String()
}

func responseText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// parseNarrative extracts the first top-level JSON object found anywhere in
// the text, tolerating markdown code fences and surrounding prose. Any
// parse failure yields nil.
func parseNarrative(text string) *Narrative {
	cleaned := extractJSON(text)
	if cleaned == "" {
		return nil
	}

	var n Narrative
	if err := json.Unmarshal([]byte(cleaned), &n); err != nil {
		return nil
	}
	if n.Summary == "" && len(n.Strengths) == 0 && len(n.Concerns) == 0 && len(n.Recommendations) == 0 {
		return nil
	}
	return &n
}

// extractJSON returns the first balanced top-level JSON object in text,
// ignoring braces inside string literals.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
