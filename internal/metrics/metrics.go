package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records intake activity on its own Prometheus registry and keeps a
// small in-process snapshot for status commands. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted  *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
	activeSessions   *prometheus.GaugeVec
	fieldsRejected   *prometheus.CounterVec
	questionSets     *prometheus.CounterVec
	llmRequests      *prometheus.CounterVec
	llmDuration      *prometheus.HistogramVec
	llmTokens        *prometheus.CounterVec
	recordsSaved     *prometheus.CounterVec
	eventsPublished  *prometheus.CounterVec

	mu       sync.RWMutex
	snapshot Snapshot
}

// Snapshot is a point-in-time copy of the headline counters.
type Snapshot struct {
	SessionsStarted    int64
	SessionsCompleted  int64
	SessionsTerminated int64
	QuestionSets       int64
	FallbackSets       int64
	LLMCallsTotal      int64
	LLMCallsSuccessful int64
	RecordsSaved       int64
	LastUpdateTime     time.Time
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessionsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_sessions_started_total",
				Help: "Sessions started, by surface",
			},
			[]string{"surface"},
		),
		sessionsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_sessions_finished_total",
				Help: "Sessions that reached a terminal status",
			},
			[]string{"status"},
		),
		activeSessions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "intake_active_sessions",
				Help: "Sessions currently held in memory, by surface",
			},
			[]string{"surface"},
		),
		fieldsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_field_rejections_total",
				Help: "Inputs that failed field validation",
			},
			[]string{"field"},
		),
		questionSets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_question_sets_total",
				Help: "Question sets produced, by source",
			},
			[]string{"source"},
		),
		llmRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Text-generation requests by provider and status",
			},
			[]string{"provider", "status"},
		),
		llmDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "Duration of text-generation requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		llmTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_tokens_total",
				Help: "Estimated tokens sent and received",
			},
			[]string{"provider", "type"},
		),
		recordsSaved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_records_saved_total",
				Help: "Final records handed to storage",
			},
			[]string{"backend", "status"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_events_published_total",
				Help: "Record events published",
			},
			[]string{"status"},
		),
		snapshot: Snapshot{LastUpdateTime: time.Now()},
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Metrics) SessionStarted(surface string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(surface).Inc()
	m.update(func(s *Snapshot) { s.SessionsStarted++ })
}

func (m *Metrics) SessionFinished(status string) {
	if m == nil {
		return
	}
	m.sessionsFinished.WithLabelValues(status).Inc()
	m.update(func(s *Snapshot) {
		if status == "complete" {
			s.SessionsCompleted++
		} else {
			s.SessionsTerminated++
		}
	})
}

func (m *Metrics) SetActiveSessions(surface string, n int) {
	if m == nil {
		return
	}
	m.activeSessions.WithLabelValues(surface).Set(float64(n))
}

func (m *Metrics) FieldRejected(field string) {
	if m == nil {
		return
	}
	m.fieldsRejected.WithLabelValues(field).Inc()
}

// QuestionSet counts one produced set; fallback marks sets from the static bank.
func (m *Metrics) QuestionSet(fallback bool) {
	if m == nil {
		return
	}
	source := "model"
	if fallback {
		source = "fallback"
	}
	m.questionSets.WithLabelValues(source).Inc()
	m.update(func(s *Snapshot) {
		s.QuestionSets++
		if fallback {
			s.FallbackSets++
		}
	})
}

// ObserveLLMRequest records one completed or failed text-generation call.
func (m *Metrics) ObserveLLMRequest(provider string, duration time.Duration, promptTokens, completionTokens int, success bool) {
	if m == nil {
		return
	}

	status := "success"
	if !success {
		status = "error"
	}
	m.llmRequests.WithLabelValues(provider, status).Inc()
	m.llmDuration.WithLabelValues(provider).Observe(duration.Seconds())
	m.llmTokens.WithLabelValues(provider, "prompt").Add(float64(promptTokens))
	if success {
		m.llmTokens.WithLabelValues(provider, "completion").Add(float64(completionTokens))
	}

	m.update(func(s *Snapshot) {
		s.LLMCallsTotal++
		if success {
			s.LLMCallsSuccessful++
		}
	})
}

func (m *Metrics) RecordSaved(backend string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.recordsSaved.WithLabelValues(backend, status).Inc()
	if err == nil {
		m.update(func(s *Snapshot) { s.RecordsSaved++ })
	}
}

func (m *Metrics) EventPublished(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.eventsPublished.WithLabelValues(status).Inc()
}

// GetSnapshot returns a copy of the headline counters.
func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func (m *Metrics) update(fn func(*Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.snapshot)
	m.snapshot.LastUpdateTime = time.Now()
}
