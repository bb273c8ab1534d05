package intake

import (
	"time"

	"github.com/google/uuid"

	"screening-bot/internal/questions"
)

// Status is the lifecycle tag of a Session.
type Status string

const (
	StatusCollecting Status = "collecting"
	StatusGenerating Status = "generating-questions"
	StatusComplete   Status = "complete"
	StatusTerminated Status = "terminated"
)

const (
	RoleBot       = "bot"
	RoleCandidate = "candidate"
)

// Turn is one transcript line.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is the state of one conversation. It is a plain value owned by the
// caller; Engine.Advance never mutates the Session it is given.
type Session struct {
	ID          string            `json:"id"`
	Values      map[string]string `json:"values"`
	FieldIndex  int               `json:"field_index"`
	TotalFields int               `json:"total_fields"`
	Status      Status            `json:"status"`
	TechStack   []string          `json:"tech_stack,omitempty"`
	Questions   questions.Record  `json:"questions,omitempty"`
	Transcript  []Turn            `json:"transcript"`
	StartedAt   time.Time         `json:"started_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func newSession(totalFields int, now time.Time) Session {
	return Session{
		ID:          uuid.New().String(),
		Values:      make(map[string]string, totalFields),
		TotalFields: totalFields,
		Status:      StatusCollecting,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	c := s

	c.Values = make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		c.Values[k] = v
	}

	c.TechStack = append([]string(nil), s.TechStack...)
	c.Transcript = append([]Turn(nil), s.Transcript...)

	if s.Questions != nil {
		c.Questions = make(questions.Record, len(s.Questions))
		for i, set := range s.Questions {
			set.Questions = append([]string(nil), set.Questions...)
			c.Questions[i] = set
		}
	}

	return c
}

// Done reports whether the session reached a terminal status.
func (s Session) Done() bool {
	return s.Status == StatusComplete || s.Status == StatusTerminated
}

// Progress is the fraction of fields collected so far.
func (s Session) Progress() float64 {
	if s.TotalFields == 0 {
		return 0
	}
	return float64(s.FieldIndex) / float64(s.TotalFields)
}

// Value returns a collected field value.
func (s Session) Value(field string) string {
	return s.Values[field]
}

func (s *Session) appendTurn(role, text string, at time.Time) {
	s.Transcript = append(s.Transcript, Turn{Role: role, Text: text, At: at})
	s.UpdatedAt = at
}
