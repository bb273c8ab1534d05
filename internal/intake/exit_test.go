package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitDetector(t *testing.T) {
	d := NewExitDetector([]string{"exit", "quit", "bye", "goodbye"})

	tests := []struct {
		input string
		want  bool
	}{
		{"exit", true},
		{"EXIT", true},
		{"  Quit\n", true},
		{"bye", true},
		{"GoodBye", true},
		{"exit please", false},
		{"byebye", false},
		{"", false},
		{"good bye", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, d.IsExit(tt.input), "input %q", tt.input)
	}
}

func TestExitDetectorNormalizesKeywords(t *testing.T) {
	d := NewExitDetector([]string{" STOP ", ""})

	assert.True(t, d.IsExit("stop"))
	assert.False(t, d.IsExit(""))
}
