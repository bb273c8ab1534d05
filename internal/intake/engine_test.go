package intake

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screening-bot/internal/config"
	"screening-bot/internal/questions"
)

type fakeGenerator struct {
	calls  int
	stacks [][]string
	years  []float64
}

func (g *fakeGenerator) Generate(_ context.Context, stack []string, years float64) questions.Record {
	g.calls++
	g.stacks = append(g.stacks, stack)
	g.years = append(g.years, years)

	record := make(questions.Record, 0, len(stack))
	for _, tech := range stack {
		record = append(record, questions.Set{
			Technology: tech,
			Questions: []string{
				fmt.Sprintf("What is %s?", tech),
				fmt.Sprintf("Why use %s?", tech),
				fmt.Sprintf("How do you test %s code?", tech),
			},
		})
	}
	return record
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(gen QuestionGenerator) *Engine {
	return NewEngine(config.Default(), gen, WithClock(func() time.Time { return fixedNow }))
}

var validAnswers = []string{
	"Jane Doe",
	"jane@example.com",
	"555-123-4567",
	"3",
	"Backend Engineer",
	"Remote",
	"Java, Kubernetes",
}

func advanceAll(t *testing.T, e *Engine, s Session, inputs ...string) (Session, Response) {
	t.Helper()
	var resp Response
	for _, in := range inputs {
		s, resp = e.Advance(context.Background(), s, in)
	}
	return s, resp
}

func TestStartGreetsAndAsksFirstField(t *testing.T) {
	e := newTestEngine(&fakeGenerator{})

	s, resp := e.Start()

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StatusCollecting, s.Status)
	assert.Equal(t, 7, s.TotalFields)
	assert.Equal(t, FieldName, resp.Field)
	assert.Contains(t, resp.Message, "What's your full name?")
	assert.Zero(t, resp.Progress)
	require.Len(t, s.Transcript, 1)
	assert.Equal(t, RoleBot, s.Transcript[0].Role)
}

func TestEndToEndScenario(t *testing.T) {
	gen := &fakeGenerator{}
	e := newTestEngine(gen)
	s, _ := e.Start()

	s, resp := advanceAll(t, e, s, validAnswers...)

	assert.Equal(t, StatusComplete, s.Status)
	assert.Equal(t, StatusComplete, resp.Status)
	assert.Equal(t, 1.0, resp.Progress)
	assert.Equal(t, []string{"Java", "Kubernetes"}, s.TechStack)
	require.Len(t, s.Questions, 2)
	assert.Equal(t, "Java", s.Questions[0].Technology)
	assert.Equal(t, "Kubernetes", s.Questions[1].Technology)

	assert.Equal(t, map[string]string{
		FieldName:       "Jane Doe",
		FieldEmail:      "jane@example.com",
		FieldPhone:      "555-123-4567",
		FieldExperience: "3",
		FieldPosition:   "Backend Engineer",
		FieldLocation:   "Remote",
		FieldTechStack:  "Java, Kubernetes",
	}, s.Values)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, []float64{3}, gen.years)
	assert.Contains(t, resp.Message, "Java, Kubernetes")
	assert.Contains(t, resp.Message, "1. What is Java?")

	// greeting + 7 candidate turns + 7 bot replies
	assert.Len(t, s.Transcript, 15)
}

func TestAcknowledgesName(t *testing.T) {
	e := newTestEngine(&fakeGenerator{})
	s, _ := e.Start()

	_, resp := e.Advance(context.Background(), s, "  Jane   Doe ")

	assert.True(t, resp.Accepted)
	assert.Equal(t, FieldEmail, resp.Field)
	assert.True(t, strings.HasPrefix(resp.Message, "Nice to meet you, Jane Doe!"))
	assert.InDelta(t, 1.0/7, resp.Progress, 1e-9)
}

func TestInvalidInputRepromptsWithoutAdvancing(t *testing.T) {
	e := newTestEngine(&fakeGenerator{})
	s, _ := e.Start()
	s, _ = e.Advance(context.Background(), s, "Jane Doe")

	next, resp := e.Advance(context.Background(), s, "not-an-email")

	assert.False(t, resp.Accepted)
	assert.Equal(t, FieldEmail, resp.Field)
	assert.Equal(t, s.FieldIndex, next.FieldIndex)
	assert.Contains(t, resp.Message, "valid email address")
	assert.Contains(t, resp.Message, "What's your email address?")
	assert.NotContains(t, next.Values, FieldEmail)
}

func TestWhitespaceNeverAdvances(t *testing.T) {
	e := newTestEngine(&fakeGenerator{})
	s, _ := e.Start()

	for step := 0; step < len(validAnswers); step++ {
		for _, blank := range []string{"", "   ", "\t", "\n"} {
			next, resp := e.Advance(context.Background(), s, blank)
			assert.False(t, resp.Accepted, "step %d accepted %q", step, blank)
			assert.Equal(t, s.FieldIndex, next.FieldIndex)
			assert.Equal(t, StatusCollecting, next.Status)
		}
		s, _ = e.Advance(context.Background(), s, validAnswers[step])
	}
	assert.Equal(t, StatusComplete, s.Status)
}

func TestExitKeywordTerminatesFromAnyField(t *testing.T) {
	keywords := []string{"exit", "QUIT", "  Bye ", "GoodBye"}

	for step := 0; step < len(validAnswers); step++ {
		for _, kw := range keywords {
			gen := &fakeGenerator{}
			e := newTestEngine(gen)
			s, _ := e.Start()
			s, _ = advanceAll(t, e, s, validAnswers[:step]...)

			next, resp := e.Advance(context.Background(), s, kw)

			assert.Equal(t, StatusTerminated, next.Status, "step %d keyword %q", step, kw)
			assert.Equal(t, StatusTerminated, resp.Status)
			assert.Equal(t, step, next.FieldIndex)
			assert.Contains(t, resp.Message, "Thank you for your time")
			assert.Zero(t, gen.calls)
		}
	}
}

func TestExitKeywordMustMatchExactly(t *testing.T) {
	e := newTestEngine(&fakeGenerator{})
	s, _ := e.Start()

	next, resp := e.Advance(context.Background(), s, "exit please")

	assert.Equal(t, StatusCollecting, next.Status)
	assert.True(t, resp.Accepted, "accepted as a name")
	assert.Equal(t, "exit please", next.Values[FieldName])
}

func TestTerminalStatesAreAbsorbing(t *testing.T) {
	gen := &fakeGenerator{}
	e := newTestEngine(gen)
	s, _ := e.Start()
	complete, _ := advanceAll(t, e, s, validAnswers...)

	after, resp := e.Advance(context.Background(), complete, "hello?")
	assert.Equal(t, StatusComplete, after.Status)
	assert.False(t, resp.Accepted)
	assert.Contains(t, resp.Message, "screening is complete")

	after, _ = e.Advance(context.Background(), complete, "exit")
	assert.Equal(t, StatusComplete, after.Status)
	assert.Equal(t, 1, gen.calls)

	terminated, _ := e.Advance(context.Background(), s, "bye")
	after, resp = e.Advance(context.Background(), terminated, "Jane Doe")
	assert.Equal(t, StatusTerminated, after.Status)
	assert.Contains(t, resp.Message, "has ended")
	assert.Empty(t, after.Values)
}

func TestAdvanceDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(&fakeGenerator{})
	s, _ := e.Start()
	s, _ = advanceAll(t, e, s, validAnswers[:6]...)

	before := s.Clone()
	_, _ = e.Advance(context.Background(), s, "Go, Rust")

	assert.Equal(t, before, s)
}

func TestTechStackRepromptsWhenEmpty(t *testing.T) {
	gen := &fakeGenerator{}
	e := newTestEngine(gen)
	s, _ := e.Start()
	s, _ = advanceAll(t, e, s, validAnswers[:6]...)

	next, resp := e.Advance(context.Background(), s, " , and ;")

	assert.False(t, resp.Accepted)
	assert.Equal(t, FieldTechStack, resp.Field)
	assert.Equal(t, StatusCollecting, next.Status)
	assert.Zero(t, gen.calls)
}

func TestCloneIsDeep(t *testing.T) {
	s := Session{
		Values:     map[string]string{"name": "a"},
		TechStack:  []string{"Go"},
		Questions:  questions.Record{{Technology: "Go", Questions: []string{"q1"}}},
		Transcript: []Turn{{Role: RoleBot, Text: "hi"}},
	}

	c := s.Clone()
	c.Values["name"] = "b"
	c.TechStack[0] = "Rust"
	c.Questions[0].Questions[0] = "changed"
	c.Transcript[0].Text = "changed"

	assert.Equal(t, "a", s.Values["name"])
	assert.Equal(t, "Go", s.TechStack[0])
	assert.Equal(t, "q1", s.Questions[0].Questions[0])
	assert.Equal(t, "hi", s.Transcript[0].Text)
}
