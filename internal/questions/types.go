package questions

import "strings"

// Set holds the questions asked about one technology.
type Set struct {
	Technology string   `json:"technology" yaml:"technology"`
	Questions  []string `json:"questions" yaml:"questions"`
	Fallback   bool     `json:"fallback" yaml:"fallback"`
}

// Record is one Set per technology, in tech-stack order.
type Record []Set

// Lookup finds the set for a technology, ignoring case.
func (r Record) Lookup(technology string) (Set, bool) {
	for _, set := range r {
		if strings.EqualFold(set.Technology, technology) {
			return set, true
		}
	}
	return Set{}, false
}

// Technologies lists the technologies covered by the record.
func (r Record) Technologies() []string {
	out := make([]string, 0, len(r))
	for _, set := range r {
		out = append(out, set.Technology)
	}
	return out
}

// FallbackCount is the number of sets that came from the fallback bank.
func (r Record) FallbackCount() int {
	n := 0
	for _, set := range r {
		if set.Fallback {
			n++
		}
	}
	return n
}
