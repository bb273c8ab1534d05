package interviewer

import (
	"fmt"
	"strings"

	"screening-bot/internal/intake"
)

// Describe renders the progress of a session for status commands.
func (s *Service) Describe(sess intake.Session) string {
	var b strings.Builder

	fields := s.engine.Fields()
	b.WriteString(fmt.Sprintf("Status: %s\n", sess.Status))
	b.WriteString(fmt.Sprintf("Progress: %d/%d fields (%.0f%%)\n", sess.FieldIndex, len(fields), sess.Progress()*100))

	for i, f := range fields {
		mark := "[ ]"
		switch {
		case i < sess.FieldIndex:
			mark = "[x]"
		case i == sess.FieldIndex && !sess.Done():
			mark = "[>]"
		}
		b.WriteString(fmt.Sprintf("%s %s\n", mark, f.Name))
	}

	if len(sess.Questions) > 0 {
		b.WriteString(fmt.Sprintf("Question sets: %d\n", len(sess.Questions)))
	}
	return b.String()
}
