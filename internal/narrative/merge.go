package narrative

import (
	"strings"

	"github.com/stonebridge/assess-cli/internal/model"
)

// maxItems caps each merged narrative list.
const maxItems = 6

// dedupPrefixLen is how many leading characters of a baseline item must
// appear inside an AI item for the baseline item to be considered covered.
const dedupPrefixLen = 20

// Apply merges an AI narrative into the assessment's baseline. AI items come
// first; a baseline item is appended only when no AI item already covers it.
// The numeric fields are never touched. A nil narrative leaves the baseline
// untouched.
func Apply(result *model.AssessmentResult, n *Narrative) {
	if n == nil {
		return
	}

	if s := strings.TrimSpace(n.Summary); s != "" {
		result.Summary = s
	}
	result.Strengths = mergeLists(n.Strengths, result.Strengths)
	result.Concerns = mergeLists(n.Concerns, result.Concerns)
	result.Recommendations = mergeLists(n.Recommendations, result.Recommendations)
}

// mergeLists places AI items first and appends baseline items whose leading
// text is not already contained, case-insensitively, in any AI item. The
// result is capped at maxItems. This dedup is deliberately crude and
// order-sensitive; its behavior is pinned by tests.
func mergeLists(ai, baseline []string) []string {
	merged := make([]string, 0, maxItems)
	for _, item := range ai {
		if item = strings.TrimSpace(item); item != "" {
			merged = append(merged, item)
		}
		if len(merged) >= maxItems {
			return merged
		}
	}
	aiCount := len(merged)

	for _, item := range baseline {
		if covered(merged[:aiCount], item) {
			continue
		}
		merged = append(merged, item)
		if len(merged) >= maxItems {
			break
		}
	}
	return merged
}

// covered reports whether any AI item contains the baseline item's leading
// dedupPrefixLen characters, lowercased.
func covered(aiItems []string, baseline string) bool {
	prefix := strings.ToLower(baseline)
	if len(prefix) > dedupPrefixLen {
		prefix = prefix[:dedupPrefixLen]
	}
	if prefix == "" {
		return true
	}
	for _, item := range aiItems {
		if strings.Contains(strings.ToLower(item), prefix) {
			return true
		}
	}
	return false
}
