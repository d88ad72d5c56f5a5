package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDelinquent(t *testing.T) {
	tests := []struct {
		status PaymentStatus
		want   bool
	}{
		{StatusCurrent, false},
		{Status30Day, true},
		{Status60Day, true},
		{Status90Day, true},
		{StatusDefault, true},
		{StatusPaidOff, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			r := LoanRecord{PaymentStatus: tt.status}
			assert.Equal(t, tt.want, r.IsDelinquent())
		})
	}
}

func TestCategoryByName(t *testing.T) {
	r := AssessmentResult{
		Categories: []CategoryScore{
			{Category: CategoryPortfolioPerformance, Score: 80},
			{Category: CategoryCashFlowQuality, Score: 90},
		},
	}

	c := r.CategoryByName(CategoryCashFlowQuality)
	require.NotNil(t, c)
	assert.Equal(t, 90, c.Score)

	assert.Nil(t, r.CategoryByName(CategoryDiversification))
}
