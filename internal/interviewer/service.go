package interviewer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"screening-bot/internal/events"
	"screening-bot/internal/intake"
	"screening-bot/internal/metrics"
	"screening-bot/internal/record"
	"screening-bot/internal/storage"
)

// Service drives sessions for every surface: it advances the engine and,
// when a session ends, assembles the record, stores it and announces it.
type Service struct {
	engine    *intake.Engine
	recorder  *record.Recorder
	store     storage.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

type Deps struct {
	Engine    *intake.Engine
	Recorder  *record.Recorder
	Store     storage.Store
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Now       func() time.Time
}

// Result is the outcome of one turn.
type Result struct {
	intake.Response
	RecordID   string `json:"record_id,omitempty"`
	StorageKey string `json:"-"`
}

// Ended reports whether the turn moved the session into a terminal status.
func (r Result) Ended() bool {
	return r.Status == intake.StatusComplete || r.Status == intake.StatusTerminated
}

func New(d Deps) *Service {
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		engine:    d.Engine,
		recorder:  d.Recorder,
		store:     d.Store,
		publisher: d.Publisher,
		metrics:   d.Metrics,
		logger:    d.Logger.With("component", "interviewer"),
		now:       d.Now,
	}
}

func (s *Service) Store() storage.Store {
	return s.store
}

func (s *Service) Engine() *intake.Engine {
	return s.engine
}

// Start opens a session on the given surface.
func (s *Service) Start(surface string) (intake.Session, intake.Response) {
	sess, resp := s.engine.Start()
	s.metrics.SessionStarted(surface)
	s.logger.Info("session started", "session_id", sess.ID, "surface", surface)
	return sess, resp
}

// Handle applies one input. Persistence problems are logged and counted but
// never change what the candidate sees.
func (s *Service) Handle(ctx context.Context, sess intake.Session, input string) (intake.Session, Result) {
	wasDone := sess.Done()
	next, resp := s.engine.Advance(ctx, sess, input)
	result := Result{Response: resp}

	if !resp.Accepted && resp.Field != "" {
		s.metrics.FieldRejected(resp.Field)
	}

	if wasDone || !next.Done() {
		return next, result
	}

	s.metrics.SessionFinished(string(next.Status))
	result.RecordID, result.StorageKey = s.persist(ctx, next)
	return next, result
}

// Abandon records a session the candidate walked away from, as if they had
// typed an exit keyword. Sessions already finished are left alone.
func (s *Service) Abandon(ctx context.Context, sess intake.Session) {
	if sess.Done() {
		return
	}
	sess.Status = intake.StatusTerminated
	s.metrics.SessionFinished(string(sess.Status))
	s.persist(ctx, sess)
}

func (s *Service) persist(ctx context.Context, sess intake.Session) (string, string) {
	rec, err := s.recorder.Assemble(sess)
	if errors.Is(err, record.ErrNothingToRecord) {
		s.logger.Info("nothing to record", "session_id", sess.ID, "status", sess.Status)
		return "", ""
	}
	if err != nil {
		s.logger.Error("record assembly failed", "session_id", sess.ID, "error", err)
		return "", ""
	}

	key, err := s.store.Save(ctx, rec)
	s.metrics.RecordSaved(s.store.Backend(), err)
	if err != nil {
		s.logger.Error("failed to save record", "session_id", sess.ID, "record_id", rec.ID, "error", err)
		return "", ""
	}
	s.logger.Info("record saved", "session_id", sess.ID, "record_id", rec.ID, "key", key, "status", rec.Status)

	ev := events.RecordSaved(rec, key, s.store.Backend(), s.now())
	err = s.publisher.Publish(ctx, ev)
	s.metrics.EventPublished(err)
	if err != nil {
		s.logger.Warn("failed to publish event", "record_id", rec.ID, "error", err)
	}

	return rec.ID, key
}
