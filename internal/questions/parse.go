package questions

import (
	"regexp"
	"strings"
)

const (
	minQuestionLength = 10
	maxQuestionLength = 300
)

var (
	numbering     = regexp.MustCompile(`^(?:[Qq]\d+[:.)]\s*|\(?\d+[.):]\s+|[-*•]\s*)`)
	labelPrefix   = regexp.MustCompile(`(?i)^question\s*\d*\s*:\s*`)
	boldMarks     = regexp.MustCompile(`\*\*|__`)
	interrogative = regexp.MustCompile(`(?i)^(how|what|why|when|where|which|who|whom|whose|can|could|do|does|did|is|are|was|were|should|would|will|have|has)\b`)
	imperative    = regexp.MustCompile(`(?i)^(explain|describe|compare|contrast|discuss|define|design|implement|write|walk|tell|give|outline|list|name|show|demonstrate|identify|suppose|imagine|consider)\b`)
	refusal       = regexp.MustCompile(`(?i)\b(sorry|apologi[sz]e|unable to|i can(?:no|')t|i can not|as an ai|language model)\b`)
)

// ParseQuestions splits model output into at most max cleaned question lines.
// Lines that do not read as a question are dropped: fences, headings ending
// in ":", refusals, and lines outside 10..300 characters.
func ParseQuestions(text string, max int) []string {
	var out []string

	for _, line := range strings.Split(text, "\n") {
		if len(out) >= max {
			break
		}
		q := cleanLine(line)
		if !isQuestion(q) {
			continue
		}
		out = append(out, q)
	}

	return out
}

// isQuestion accepts a cleaned line ending in "?" or opening with an
// imperative such as "Explain" or "Describe".
func isQuestion(q string) bool {
	n := len([]rune(q))
	if n < minQuestionLength || n > maxQuestionLength {
		return false
	}
	if strings.HasSuffix(q, ":") || refusal.MatchString(q) {
		return false
	}
	return strings.HasSuffix(q, "?") || imperative.MatchString(q)
}

func cleanLine(line string) string {
	q := strings.TrimSpace(line)
	if strings.HasPrefix(q, "```") {
		return ""
	}

	q = boldMarks.ReplaceAllString(q, "")
	for {
		stripped := strings.TrimSpace(numbering.ReplaceAllString(q, ""))
		if stripped == q {
			break
		}
		q = stripped
	}
	q = strings.TrimSpace(labelPrefix.ReplaceAllString(q, ""))
	q = unquote(q)

	if q != "" && !strings.HasSuffix(q, "?") && interrogative.MatchString(q) {
		q = strings.TrimRight(q, ".") + "?"
	}
	return q
}

func unquote(s string) string {
	for _, pair := range [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}} {
		if len(s) >= 2 && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			return strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}
