// Package record assembles the final, immutable output of a session.
package record

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"screening-bot/internal/intake"
	"screening-bot/internal/questions"
)

// PolicyVersion tags the privacy handling applied to a record.
const PolicyVersion = "1.0"

// ErrNothingToRecord is returned for sessions that are still collecting, or
// that ended before any field was collected.
var ErrNothingToRecord = errors.New("session has nothing to record")

// IncompleteRecordError lists what a complete session was missing. Seeing it
// means the engine handed over a session that broke its own guarantees.
type IncompleteRecordError struct {
	Missing []string
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("incomplete record: missing %s", strings.Join(e.Missing, ", "))
}

// Candidate holds the seven collected field values.
type Candidate struct {
	Name       string `json:"name,omitempty" validate:"required,max=100"`
	Email      string `json:"email,omitempty" validate:"required,email"`
	Phone      string `json:"phone,omitempty" validate:"required"`
	Experience string `json:"experience,omitempty" validate:"required,numeric"`
	Position   string `json:"position,omitempty" validate:"required,max=200"`
	Location   string `json:"location,omitempty" validate:"required,max=200"`
	TechStack  string `json:"tech_stack,omitempty" validate:"required"`
}

type Privacy struct {
	CandidateKey  string `json:"candidate_key,omitempty"`
	EmailMasked   string `json:"email_masked,omitempty"`
	EmailHash     string `json:"email_hash,omitempty"`
	PhoneMasked   string `json:"phone_masked,omitempty"`
	PhoneHash     string `json:"phone_hash,omitempty"`
	PolicyVersion string `json:"policy_version"`
}

// Record is the persisted output of one session.
type Record struct {
	ID          string           `json:"id"`
	SessionID   string           `json:"session_id"`
	Status      intake.Status    `json:"status"`
	Candidate   Candidate        `json:"candidate"`
	TechStack   []string         `json:"tech_stack"`
	Questions   questions.Record `json:"questions"`
	Transcript  []intake.Turn    `json:"transcript"`
	CreatedAt   time.Time        `json:"created_at"`
	RetainUntil time.Time        `json:"retain_until"`
	Privacy     Privacy          `json:"privacy"`
}

// Complete reports whether the record came from a completed session.
func (r *Record) Complete() bool {
	return r.Status == intake.StatusComplete
}

// Expired reports whether the retention period has passed at now.
func (r *Record) Expired(now time.Time) bool {
	return !r.RetainUntil.After(now)
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// Recorder turns terminal sessions into records.
type Recorder struct {
	retention    time.Duration
	hashKey      []byte
	minQuestions int
	maxQuestions int
	now          func() time.Time
}

type RecorderConfig struct {
	Retention    time.Duration
	HashKey      string
	MinQuestions int
	MaxQuestions int
	Now          func() time.Time
}

func NewRecorder(cfg RecorderConfig) *Recorder {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Recorder{
		retention:    cfg.Retention,
		hashKey:      []byte(cfg.HashKey),
		minQuestions: cfg.MinQuestions,
		maxQuestions: cfg.MaxQuestions,
		now:          cfg.Now,
	}
}

// Assemble builds the record for a terminal session. Completed sessions must
// carry every field and exactly one question set per technology; terminated
// sessions produce a partial record when at least one field was collected.
func (r *Recorder) Assemble(s intake.Session) (*Record, error) {
	switch s.Status {
	case intake.StatusComplete:
		if err := r.checkComplete(s); err != nil {
			return nil, err
		}
	case intake.StatusTerminated:
		if len(s.Values) == 0 {
			return nil, ErrNothingToRecord
		}
	default:
		return nil, ErrNothingToRecord
	}

	c := s.Clone()
	created := r.now().UTC()

	rec := &Record{
		ID:          uuid.New().String(),
		SessionID:   c.ID,
		Status:      c.Status,
		Candidate:   candidateFrom(c),
		TechStack:   c.TechStack,
		Questions:   c.Questions,
		Transcript:  c.Transcript,
		CreatedAt:   created,
		RetainUntil: created.Add(r.retention),
	}
	if rec.TechStack == nil {
		rec.TechStack = []string{}
	}
	if rec.Questions == nil {
		rec.Questions = questions.Record{}
	}
	if rec.Transcript == nil {
		rec.Transcript = []intake.Turn{}
	}
	rec.Privacy = r.privacy(rec.Candidate)

	return rec, nil
}

func (r *Recorder) checkComplete(s intake.Session) error {
	var missing []string

	if err := validate.Struct(candidateFrom(s)); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				missing = append(missing, "field:"+fe.Field())
			}
		} else {
			return fmt.Errorf("validate candidate: %w", err)
		}
	}

	if len(s.TechStack) == 0 {
		missing = append(missing, "tech_stack")
	}
	if len(s.Questions) != len(s.TechStack) {
		missing = append(missing, fmt.Sprintf("questions:count(%d!=%d)", len(s.Questions), len(s.TechStack)))
	}
	for i, tech := range s.TechStack {
		if i >= len(s.Questions) || s.Questions[i].Technology != tech {
			missing = append(missing, "questions:"+tech)
			continue
		}
		n := len(s.Questions[i].Questions)
		if n < r.minQuestions || (r.maxQuestions > 0 && n > r.maxQuestions) {
			missing = append(missing, fmt.Sprintf("questions:%s(%d)", tech, n))
		}
	}

	if len(missing) > 0 {
		return &IncompleteRecordError{Missing: missing}
	}
	return nil
}

func candidateFrom(s intake.Session) Candidate {
	return Candidate{
		Name:       s.Value(intake.FieldName),
		Email:      s.Value(intake.FieldEmail),
		Phone:      s.Value(intake.FieldPhone),
		Experience: s.Value(intake.FieldExperience),
		Position:   s.Value(intake.FieldPosition),
		Location:   s.Value(intake.FieldLocation),
		TechStack:  s.Value(intake.FieldTechStack),
	}
}
