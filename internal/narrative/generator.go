// Package narrative produces an optional qualitative overlay for an
// assessment. The deterministic engine runs entirely without it; any
// generator failure degrades to "no narrative".
package narrative

import (
	"context"

	"github.com/stonebridge/assess-cli/internal/model"
)

// Narrative is the qualitative text produced by a generator. The
// tokenization assessment field is accepted from the backend but unused.
type Narrative struct {
	Summary                string   `json:"summary"`
	Strengths              []string `json:"strengths"`
	Concerns               []string `json:"concerns"`
	Recommendations        []string `json:"recommendations"`
	TokenizationAssessment string   `json:"tokenization_assessment,omitempty"`
}

// Generator produces a narrative for a completed deterministic assessment.
// A nil Narrative with a nil error means "no narrative available" and is a
// valid outcome.
type Generator interface {
	Analyze(ctx context.Context, result *model.AssessmentResult) (*Narrative, error)
}

// Noop is the generator used when no narrative backend is configured.
type Noop struct{}

// Analyze always reports no narrative available.
func (Noop) Analyze(ctx context.Context, result *model.AssessmentResult) (*Narrative, error) {
	return nil, nil
}
