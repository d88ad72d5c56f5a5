package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "A"},
		{95, "A"},
		{94, "A-"},
		{90, "A-"},
		{89, "B+"},
		{85, "B+"},
		{84, "B"},
		{80, "B"},
		{79, "B-"},
		{75, "B-"},
		{74, "C+"},
		{70, "C+"},
		{69, "C"},
		{65, "C"},
		{64, "C-"},
		{60, "C-"},
		{59, "D"},
		{50, "D"},
		{49, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, Grade(tt.score))
		})
	}
}
