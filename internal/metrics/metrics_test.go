package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAndSnapshot(t *testing.T) {
	m := NewMetrics()

	m.SessionStarted("web")
	m.SessionStarted("web")
	m.SessionFinished("complete")
	m.SessionFinished("terminated")
	m.QuestionSet(false)
	m.QuestionSet(true)
	m.ObserveLLMRequest("openai", 200*time.Millisecond, 120, 80, true)
	m.ObserveLLMRequest("openai", time.Second, 120, 0, false)
	m.RecordSaved("file", nil)
	m.RecordSaved("file", errors.New("disk full"))
	m.EventPublished(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsStarted.WithLabelValues("web")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.questionSets.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("openai", "error")))
	assert.Equal(t, 240.0, testutil.ToFloat64(m.llmTokens.WithLabelValues("openai", "prompt")))
	assert.Equal(t, 80.0, testutil.ToFloat64(m.llmTokens.WithLabelValues("openai", "completion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsSaved.WithLabelValues("file", "error")))

	snap := m.GetSnapshot()
	assert.EqualValues(t, 2, snap.SessionsStarted)
	assert.EqualValues(t, 1, snap.SessionsCompleted)
	assert.EqualValues(t, 1, snap.SessionsTerminated)
	assert.EqualValues(t, 2, snap.QuestionSets)
	assert.EqualValues(t, 1, snap.FallbackSets)
	assert.EqualValues(t, 2, snap.LLMCallsTotal)
	assert.EqualValues(t, 1, snap.LLMCallsSuccessful)
	assert.EqualValues(t, 1, snap.RecordsSaved)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.SessionStarted("console")
		m.SessionFinished("complete")
		m.SetActiveSessions("web", 3)
		m.FieldRejected("email")
		m.QuestionSet(true)
		m.ObserveLLMRequest("none", time.Millisecond, 1, 1, false)
		m.RecordSaved("file", nil)
		m.EventPublished(nil)
	})
	assert.Equal(t, Snapshot{}, m.GetSnapshot())
	assert.NotNil(t, m.Registry())
}

func TestRegistryIsIsolated(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.SessionStarted("web")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.sessionsStarted.WithLabelValues("web")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.sessionsStarted.WithLabelValues("web")))
}
