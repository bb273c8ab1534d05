package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTechStack(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "mixed separators", raw: "Python, Go; React and Node.js", want: []string{"Python", "Go", "React", "Node.js"}},
		{name: "newlines", raw: "Java\nKubernetes\r\nDocker", want: []string{"Java", "Kubernetes", "Docker"}},
		{name: "case-insensitive dedupe keeps first spelling", raw: "python, Python, PYTHON, Go", want: []string{"python", "Go"}},
		{name: "empty tokens dropped", raw: " , ;; and ,", want: []string{}},
		{name: "and inside words kept", raw: "Android, Pandas and Ansible", want: []string{"Android", "Pandas", "Ansible"}},
		{name: "AND uppercase separates", raw: "Rust AND Elixir", want: []string{"Rust", "Elixir"}},
		{name: "inner whitespace collapsed", raw: "  Spring   Boot ,  Apache  Kafka ", want: []string{"Spring Boot", "Apache Kafka"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTechStack(tt.raw))
		})
	}
}

func TestParseTechStackIsIdempotent(t *testing.T) {
	inputs := []string{
		"Python, Go; React and Node.js",
		"java\nJAVA\nSpring Boot, Kafka and Docker",
		"C++, C#; F#",
	}

	for _, raw := range inputs {
		first := ParseTechStack(raw)
		assert.Equal(t, first, ParseTechStack(strings.Join(first, ", ")), raw)
	}
}
