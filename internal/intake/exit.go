package intake

import "strings"

// ExitDetector recognises the keywords that end a conversation early.
type ExitDetector struct {
	keywords map[string]struct{}
}

func NewExitDetector(keywords []string) ExitDetector {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return ExitDetector{keywords: set}
}

// IsExit reports whether the trimmed, lower-cased input is exactly one of the
// keywords. "exit please" does not match.
func (d ExitDetector) IsExit(input string) bool {
	_, ok := d.keywords[strings.ToLower(strings.TrimSpace(input))]
	return ok
}
