// Package assess wires ingestion, metrics, scoring, and the optional
// narrative overlay into a single assessment run.
package assess

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stonebridge/assess-cli/internal/metrics"
	"github.com/stonebridge/assess-cli/internal/model"
	"github.com/stonebridge/assess-cli/internal/narrative"
	"github.com/stonebridge/assess-cli/internal/scoring"
	"github.com/stonebridge/assess-cli/internal/tape"
)

// RunInput carries everything one assessment run needs.
type RunInput struct {
	DealID      string
	TapeData    []byte
	TapeName    string
	HistoryData []byte // optional
	HistoryName string
	Options     scoring.Options
}

// Engine runs assessments. It holds no mutable state and is safe for
// concurrent use across independent runs.
type Engine struct {
	thresholds scoring.Thresholds
	generator  narrative.Generator
}

// New creates an Engine. A nil generator disables the narrative overlay.
func New(th scoring.Thresholds, gen narrative.Generator) *Engine {
	if gen == nil {
		gen = narrative.Noop{}
	}
	return &Engine{thresholds: th, generator: gen}
}

// Run executes one assessment. Structural ingestion failures come back as
// the ParseResult with a nil AssessmentResult and nil error, so callers can
// surface parse diagnostics to end users; a non-nil error is reserved for
// operational failures.
func (e *Engine) Run(ctx context.Context, in RunInput) (*model.AssessmentResult, *tape.ParseResult, error) {
	parsed := tape.ParseLoanTape(in.TapeData, in.TapeName)
	if !parsed.Success {
		return nil, parsed, nil
	}

	var history []model.PerformanceRecord
	if len(in.HistoryData) > 0 {
		hist := tape.ParsePerformanceHistory(in.HistoryData, in.HistoryName)
		if hist.Success {
			history = hist.Records
		} else {
			// A bad history workbook degrades the run to tape-only scoring.
			parsed.Warnings = append(parsed.Warnings, hist.Errors...)
			zap.L().Warn("assess: performance history unusable, scoring tape only",
				zap.String("file", in.HistoryName),
				zap.Strings("errors", hist.Errors),
			)
		}
	}

	now := in.Options.Now
	if now.IsZero() {
		now = time.Now()
		in.Options.Now = now
	}

	m := metrics.Calculate(parsed.Records, history, now)

	result := scoring.Assess(scoring.Input{
		Metrics: m,
		Records: parsed.Records,
		History: history,
		Options: in.Options,
	}, e.thresholds)

	result.ID = uuid.NewString()
	result.DealID = in.DealID
	result.CreatedAt = now

	// The overlay is additive: a failed or absent narrative leaves the
	// deterministic baseline untouched.
	n, err := e.generator.Analyze(ctx, result)
	if err != nil {
		zap.L().Warn("assess: narrative generator error", zap.Error(err))
	}
	narrative.Apply(result, n)

	return result, parsed, nil
}
