package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"screening-bot/internal/config"
	"screening-bot/internal/questions"
)

// QuestionGenerator produces one question set per technology, in order. It
// never fails: technologies the model could not serve get fallback sets.
type QuestionGenerator interface {
	Generate(ctx context.Context, stack []string, experienceYears float64) questions.Record
}

// Response is what a rendering surface shows after a turn.
type Response struct {
	Message  string  `json:"message"`
	Prompt   string  `json:"prompt,omitempty"`
	Field    string  `json:"field,omitempty"`
	Accepted bool    `json:"accepted"`
	Progress float64 `json:"progress"`
	Status   Status  `json:"status"`
}

// Engine advances sessions through the field sequence. It holds no
// per-session state and is safe for concurrent use with distinct sessions.
type Engine struct {
	config    *config.Config
	fields    []FieldDefinition
	exit      ExitDetector
	generator QuestionGenerator
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(cfg *config.Config, generator QuestionGenerator, opts ...Option) *Engine {
	e := &Engine{
		config:    cfg,
		fields:    BuildFields(cfg),
		exit:      NewExitDetector(cfg.ExitKeywords),
		generator: generator,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "intake")
	return e
}

// Fields returns the collection sequence.
func (e *Engine) Fields() []FieldDefinition {
	return e.fields
}

// Start creates a session and the greeting that asks for the first field.
func (e *Engine) Start() (Session, Response) {
	now := e.now()
	s := newSession(len(e.fields), now)

	first := e.fields[0]
	resp := Response{
		Message:  e.config.Greeting + "\n\n" + first.Prompt,
		Prompt:   first.Prompt,
		Field:    first.Name,
		Accepted: true,
		Progress: 0,
		Status:   s.Status,
	}
	s.appendTurn(RoleBot, resp.Message, now)
	return s, resp
}

// Advance applies one candidate input to a copy of s and returns the new
// state with the reply. The exit check runs before any field validation.
// The only blocking work is question generation after the last field.
func (e *Engine) Advance(ctx context.Context, s Session, input string) (Session, Response) {
	next := s.Clone()
	now := e.now()
	next.appendTurn(RoleCandidate, input, now)

	var resp Response
	switch {
	case next.Done():
		resp = e.closedResponse(next)
	case e.exit.IsExit(input):
		next.Status = StatusTerminated
		resp = e.respond(next, e.config.Farewell, "", "", true)
		e.logger.Info("session terminated", "session_id", next.ID, "collected", next.FieldIndex)
	default:
		resp = e.collect(ctx, &next, input)
	}

	next.appendTurn(RoleBot, resp.Message, e.now())
	return next, resp
}

func (e *Engine) collect(ctx context.Context, s *Session, raw string) Response {
	field := e.fields[s.FieldIndex]

	value, ok := field.Validate(raw)
	if !ok {
		e.logger.Debug("field rejected", "session_id", s.ID, "field", field.Name)
		return e.respond(*s, field.Hint+" "+field.Prompt, field.Prompt, field.Name, false)
	}

	s.Values[field.Name] = value
	if field.Name == FieldTechStack {
		s.TechStack = ParseTechStack(value)
	}
	s.FieldIndex++

	if s.FieldIndex < len(e.fields) {
		next := e.fields[s.FieldIndex]
		msg := next.Prompt
		if field.Ack != "" {
			msg = ack(field.Ack, value) + "\n\n" + next.Prompt
		}
		return e.respond(*s, msg, next.Prompt, next.Name, true)
	}

	s.Status = StatusGenerating
	years := ExperienceYears(s.Values[FieldExperience])
	s.Questions = e.generator.Generate(ctx, s.TechStack, years)
	s.Status = StatusComplete

	e.logger.Info("session complete", "session_id", s.ID, "technologies", len(s.TechStack))
	return e.respond(*s, e.completionMessage(*s), "", "", true)
}

func (e *Engine) closedResponse(s Session) Response {
	if s.Status == StatusComplete {
		return e.respond(s, "Our initial screening is complete. Type 'exit' to end the conversation.", "", "", false)
	}
	return e.respond(s, "This conversation has ended.", "", "", false)
}

func (e *Engine) respond(s Session, msg, prompt, field string, accepted bool) Response {
	return Response{
		Message:  msg,
		Prompt:   prompt,
		Field:    field,
		Accepted: accepted,
		Progress: s.Progress(),
		Status:   s.Status,
	}
}

func (e *Engine) completionMessage(s Session) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Thanks! I've noted %d technologies: %s.\n\n",
		len(s.TechStack), strings.Join(s.TechStack, ", ")))
	b.WriteString("Here are your technical questions:\n")
	for _, set := range s.Questions {
		b.WriteString(fmt.Sprintf("\n%s\n", set.Technology))
		for i, q := range set.Questions {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
		}
	}
	b.WriteString("\n")
	b.WriteString(e.config.Completion)

	return b.String()
}

func ack(format, value string) string {
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, value)
	}
	return format
}
