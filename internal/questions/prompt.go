package questions

import (
	"fmt"
	"strings"
)

// BuildPrompt asks the model for between min and max questions about a single
// technology, one per line and without commentary.
func BuildPrompt(technology string, years float64, min, max int) string {
	var b strings.Builder

	b.WriteString("You are a technical interviewer screening a candidate for a software role.\n\n")
	b.WriteString(fmt.Sprintf("Write %d to %d technical interview questions about %s.\n", min, max, technology))
	b.WriteString(fmt.Sprintf("The candidate reports %s years of professional experience. Calibrate the questions for %s.\n\n",
		formatYears(years), DifficultyFor(years).describe()))
	b.WriteString("RULES:\n")
	b.WriteString(fmt.Sprintf("1. Every question must be specifically about %s\n", technology))
	b.WriteString("2. One question per line\n")
	b.WriteString("3. No introduction, no answers, no closing remarks\n")
	b.WriteString("4. Each question must be answerable verbally in a few minutes\n\n")
	b.WriteString("QUESTIONS:")

	return b.String()
}

func formatYears(years float64) string {
	if years == float64(int(years)) {
		return fmt.Sprintf("%d", int(years))
	}
	return fmt.Sprintf("%.1f", years)
}
