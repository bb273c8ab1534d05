package questions

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed fallback_questions.yaml
var defaultBank []byte

// genericTemplates name the technology and work for anything.
var genericTemplates = []string{
	"Can you describe a project where you used %s and the role it played?",
	"What are the main strengths and limitations of %s in your experience?",
	"How do you keep up with changes and best practices in %s?",
	"What is the most difficult problem you have solved with %s?",
	"How would you explain the core concepts of %s to a new team member?",
	"How do you test and debug work built with %s?",
	"What alternatives to %s have you considered, and why did you choose it?",
	"How do you approach performance tuning in %s?",
	"What common mistakes do people make with %s?",
	"How would you set up a new project using %s from scratch?",
}

type bankFile struct {
	Technologies map[string]bankEntry `yaml:"technologies"`
}

type bankEntry struct {
	Aliases   []string `yaml:"aliases"`
	Questions []string `yaml:"questions"`
}

// Bank resolves technologies to static fallback questions.
type Bank struct {
	entries map[string][]string
}

// DefaultBank returns the bank compiled into the binary.
func DefaultBank() *Bank {
	bank, err := ParseBank(defaultBank)
	if err != nil {
		panic(fmt.Sprintf("embedded fallback bank: %v", err))
	}
	return bank
}

// LoadBank reads a bank file. An empty path yields the default bank.
func LoadBank(path string) (*Bank, error) {
	if path == "" {
		return DefaultBank(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback bank: %w", err)
	}
	return ParseBank(data)
}

func ParseBank(data []byte) (*Bank, error) {
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fallback bank: %w", err)
	}

	bank := &Bank{entries: make(map[string][]string)}
	for name, entry := range file.Technologies {
		if len(entry.Questions) == 0 {
			return nil, fmt.Errorf("fallback bank: technology %q has no questions", name)
		}
		bank.entries[normalize(name)] = entry.Questions
		for _, alias := range entry.Aliases {
			bank.entries[normalize(alias)] = entry.Questions
		}
	}
	return bank, nil
}

// Fallback returns count static questions for the technology, taken from the
// bank when it knows the technology and topped up with generic ones.
func (b *Bank) Fallback(technology string, count int) Set {
	out := make([]string, 0, count)
	if b != nil {
		for _, q := range b.entries[normalize(technology)] {
			if len(out) == count {
				break
			}
			out = append(out, q)
		}
	}
	for i := 0; len(out) < count && i < len(genericTemplates); i++ {
		out = append(out, fmt.Sprintf(genericTemplates[i], technology))
	}

	return Set{Technology: technology, Questions: out, Fallback: true}
}

// Known reports whether the bank has an entry or alias for the technology.
func (b *Bank) Known(technology string) bool {
	_, ok := b.entries[normalize(technology)]
	return ok
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
