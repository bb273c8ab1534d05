package intake

import (
	"regexp"
	"strings"
)

// separators splits on commas, semicolons, line breaks and the standalone
// word "and". "Android" and "Pandas" stay intact.
var separators = regexp.MustCompile(`(?i)[,;\r\n]|\band\b`)

// ParseTechStack turns a free-text skills answer into an ordered list of
// technologies. Duplicates are detected case-insensitively and the first
// spelling wins. Re-parsing strings.Join(result, ", ") yields the same list.
func ParseTechStack(raw string) []string {
	tokens := separators.Split(raw, -1)

	seen := make(map[string]struct{}, len(tokens))
	stack := make([]string, 0, len(tokens))
	for _, token := range tokens {
		tech := strings.Join(strings.Fields(token), " ")
		if tech == "" {
			continue
		}
		key := strings.ToLower(tech)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		stack = append(stack, tech)
	}

	return stack
}
