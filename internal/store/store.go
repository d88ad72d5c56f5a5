// Package store persists assessment results keyed by deal and maintains the
// time-ordered score history the scoring engine itself never owns.
package store

import (
	"context"
	"time"

	"github.com/stonebridge/assess-cli/internal/model"
)

// AssessmentFilter specifies criteria for listing stored assessments.
type AssessmentFilter struct {
	DealID string `json:"deal_id,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// ScorePoint is one entry in a deal's score history, ascending by time.
type ScorePoint struct {
	AssessmentID string          `json:"assessment_id"`
	DealID       string          `json:"deal_id"`
	Score        int             `json:"score"`
	Grade        string          `json:"grade"`
	Readiness    model.Readiness `json:"readiness"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Store defines the persistence interface for assessment results.
type Store interface {
	SaveAssessment(ctx context.Context, result *model.AssessmentResult) error
	GetAssessment(ctx context.Context, id string) (*model.AssessmentResult, error)
	LatestAssessment(ctx context.Context, dealID string) (*model.AssessmentResult, error)
	ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.AssessmentResult, error)
	ScoreHistory(ctx context.Context, dealID string) ([]ScorePoint, error)

	Migrate(ctx context.Context) error
	Close() error
}
