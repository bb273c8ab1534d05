package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"screening-bot/internal/intake"
)

const (
	FormatJSON = "json"
	FormatText = "txt"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Summary is the listing view of a record. It carries no contact details.
type Summary struct {
	ID           string        `json:"id"`
	CandidateKey string        `json:"candidate_key,omitempty"`
	Status       intake.Status `json:"status"`
	Name         string        `json:"name"`
	Position     string        `json:"position"`
	Experience   string        `json:"experience"`
	TechStack    []string      `json:"tech_stack"`
	CreatedAt    time.Time     `json:"created_at"`
	RetainUntil  time.Time     `json:"retain_until"`
}

func (r *Record) Summary() Summary {
	return Summary{
		ID:           r.ID,
		CandidateKey: r.Privacy.CandidateKey,
		Status:       r.Status,
		Name:         r.Candidate.Name,
		Position:     r.Candidate.Position,
		Experience:   r.Candidate.Experience,
		TechStack:    append([]string(nil), r.TechStack...),
		CreatedAt:    r.CreatedAt,
		RetainUntil:  r.RetainUntil,
	}
}

// Export renders the record summary as json or txt.
func Export(r *Record, format string) ([]byte, error) {
	s := r.Summary()

	switch strings.ToLower(format) {
	case FormatJSON, "":
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal summary: %w", err)
		}
		return data, nil
	case FormatText:
		return []byte(exportText(s)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func exportText(s Summary) string {
	var b strings.Builder
	b.WriteString("=== CANDIDATE DATA EXPORT ===\n")
	b.WriteString(fmt.Sprintf("Record ID: %s\n", s.ID))
	if s.CandidateKey != "" {
		b.WriteString(fmt.Sprintf("Candidate Key: %s\n", s.CandidateKey))
	}
	b.WriteString(fmt.Sprintf("Status: %s\n", s.Status))
	b.WriteString(fmt.Sprintf("Name: %s\n", orNA(s.Name)))
	b.WriteString(fmt.Sprintf("Position: %s\n", orNA(s.Position)))
	b.WriteString(fmt.Sprintf("Experience: %s\n", orNA(s.Experience)))
	b.WriteString(fmt.Sprintf("Tech Stack: %s\n", orNA(strings.Join(s.TechStack, ", "))))
	b.WriteString(fmt.Sprintf("Date: %s\n", s.CreatedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Retain Until: %s\n", s.RetainUntil.Format(time.RFC3339)))
	b.WriteString("=============================\n")
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
