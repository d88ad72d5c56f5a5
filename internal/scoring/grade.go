package scoring

// gradeSteps is the fixed score→grade table, applied uniformly to category
// and overall scores. Boundaries are inclusive: 95 is an A, 94 an A-.
var gradeSteps = []struct {
	min   int
	grade string
}{
	{95, "A"},
	{90, "A-"},
	{85, "B+"},
	{80, "B"},
	{75, "B-"},
	{70, "C+"},
	{65, "C"},
	{60, "C-"},
	{50, "D"},
}

// Grade maps a 0-100 score onto a letter grade.
func Grade(score int) string {
	for _, s := range gradeSteps {
		if score >= s.min {
			return s.grade
		}
	}
	return "F"
}
