package record

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screening-bot/internal/intake"
	"screening-bot/internal/questions"
)

var created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestRecorder() *Recorder {
	return NewRecorder(RecorderConfig{
		Retention:    90 * 24 * time.Hour,
		HashKey:      "test-key",
		MinQuestions: 3,
		MaxQuestions: 5,
		Now:          func() time.Time { return created },
	})
}

func threeQuestions(tech string) []string {
	return []string{"What is " + tech + "?", "Why " + tech + "?", "How do you test " + tech + "?"}
}

func completeSession() intake.Session {
	return intake.Session{
		ID: "session-1",
		Values: map[string]string{
			intake.FieldName:       "Jane Doe",
			intake.FieldEmail:      "jane@example.com",
			intake.FieldPhone:      "555-123-4567",
			intake.FieldExperience: "3",
			intake.FieldPosition:   "Backend Engineer",
			intake.FieldLocation:   "Remote",
			intake.FieldTechStack:  "Java, Kubernetes",
		},
		FieldIndex:  7,
		TotalFields: 7,
		Status:      intake.StatusComplete,
		TechStack:   []string{"Java", "Kubernetes"},
		Questions: questions.Record{
			{Technology: "Java", Questions: threeQuestions("Java")},
			{Technology: "Kubernetes", Questions: threeQuestions("Kubernetes"), Fallback: true},
		},
		Transcript: []intake.Turn{
			{Role: intake.RoleBot, Text: "Hi!", At: created},
			{Role: intake.RoleCandidate, Text: "Jane Doe", At: created},
		},
	}
}

func TestAssembleCompleteSession(t *testing.T) {
	rec, err := newTestRecorder().Assemble(completeSession())
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "session-1", rec.SessionID)
	assert.True(t, rec.Complete())
	assert.Equal(t, Candidate{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "555-123-4567",
		Experience: "3",
		Position:   "Backend Engineer",
		Location:   "Remote",
		TechStack:  "Java, Kubernetes",
	}, rec.Candidate)
	assert.Equal(t, []string{"Java", "Kubernetes"}, rec.TechStack)
	assert.Len(t, rec.Questions, 2)
	assert.Len(t, rec.Transcript, 2)
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, created.Add(90*24*time.Hour), rec.RetainUntil)

	assert.Equal(t, "j**e@example.com", rec.Privacy.EmailMasked)
	assert.Equal(t, "***-***-4567", rec.Privacy.PhoneMasked)
	assert.Len(t, rec.Privacy.EmailHash, 64)
	assert.Len(t, rec.Privacy.CandidateKey, 16)
	assert.Equal(t, PolicyVersion, rec.Privacy.PolicyVersion)
}

func TestAssembleCopiesSession(t *testing.T) {
	s := completeSession()
	rec, err := newTestRecorder().Assemble(s)
	require.NoError(t, err)

	s.TechStack[0] = "Changed"
	s.Questions[0].Questions[0] = "Changed"

	assert.Equal(t, "Java", rec.TechStack[0])
	assert.Equal(t, "What is Java?", rec.Questions[0].Questions[0])
}

func TestAssembleRejectsIncompleteSession(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*intake.Session)
		missing string
	}{
		{
			name:    "missing field",
			mutate:  func(s *intake.Session) { delete(s.Values, intake.FieldEmail) },
			missing: "field:email",
		},
		{
			name:    "missing technology entry",
			mutate:  func(s *intake.Session) { s.Questions = s.Questions[:1] },
			missing: "questions:Kubernetes",
		},
		{
			name: "too few questions",
			mutate: func(s *intake.Session) {
				s.Questions[1].Questions = s.Questions[1].Questions[:2]
			},
			missing: "questions:Kubernetes(2)",
		},
		{
			name: "out of order",
			mutate: func(s *intake.Session) {
				s.Questions[0], s.Questions[1] = s.Questions[1], s.Questions[0]
			},
			missing: "questions:Java",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := completeSession()
			tt.mutate(&s)

			_, err := newTestRecorder().Assemble(s)

			var incomplete *IncompleteRecordError
			require.True(t, errors.As(err, &incomplete), "got %v", err)
			assert.Contains(t, incomplete.Missing, tt.missing)
		})
	}
}

func TestAssemblePartialRecord(t *testing.T) {
	s := intake.Session{
		ID:          "session-2",
		Values:      map[string]string{intake.FieldName: "Jo", intake.FieldEmail: "jo@example.com"},
		FieldIndex:  2,
		TotalFields: 7,
		Status:      intake.StatusTerminated,
	}

	rec, err := newTestRecorder().Assemble(s)
	require.NoError(t, err)

	assert.False(t, rec.Complete())
	assert.Equal(t, "Jo", rec.Candidate.Name)
	assert.Empty(t, rec.Candidate.Phone)
	assert.Empty(t, rec.Privacy.PhoneMasked)
	assert.Equal(t, "**@example.com", rec.Privacy.EmailMasked)
	assert.NotNil(t, rec.TechStack)
	assert.NotNil(t, rec.Questions)

	data, err := Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"phone"`)
}

func TestAssembleNothingToRecord(t *testing.T) {
	r := newTestRecorder()

	_, err := r.Assemble(intake.Session{Status: intake.StatusTerminated, Values: map[string]string{}})
	assert.ErrorIs(t, err, ErrNothingToRecord)

	_, err = r.Assemble(intake.Session{Status: intake.StatusCollecting, Values: map[string]string{"name": "x"}})
	assert.ErrorIs(t, err, ErrNothingToRecord)
}

func TestHashIsKeyed(t *testing.T) {
	a := Hash([]byte("k1"), "jane@example.com")
	b := Hash([]byte("k2"), "jane@example.com")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Hash([]byte("k1"), "jane@example.com"))
	assert.Len(t, Hash(nil, "x"), 64)
	assert.Len(t, Hash([]byte(strings.Repeat("k", 100)), "x"), 64)
}

func TestMasking(t *testing.T) {
	assert.Equal(t, "a***e@x.io", MaskEmail("alice@x.io"))
	assert.Equal(t, "*@x.io", MaskEmail("a@x.io"))
	assert.Equal(t, "+* (***) ***-4567", MaskPhone("+1 (555) 123-4567"))
	assert.Equal(t, "1234", MaskPhone("1234"))
}
