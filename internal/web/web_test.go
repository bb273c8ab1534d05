package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screening-bot/internal/config"
	"screening-bot/internal/intake"
	"screening-bot/internal/interviewer"
	"screening-bot/internal/metrics"
	"screening-bot/internal/questions"
	"screening-bot/internal/record"
	"screening-bot/internal/storage"
)

var answers = []string{"Jane Doe", "jane@example.com", "555-123-4567", "3", "Backend Engineer", "Remote", "Go, Docker"}

func newTestServer(t *testing.T) (*Server, storage.Store) {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	m := metrics.NewMetrics()
	gen := questions.NewGenerator(nil, nil, questions.Options{Min: 3, Max: 5, Fallback: 3, Metrics: m})
	svc := interviewer.New(interviewer.Deps{
		Engine:   intake.NewEngine(config.Default(), gen),
		Recorder: record.NewRecorder(record.RecorderConfig{Retention: 24 * time.Hour, MinQuestions: 3, MaxQuestions: 5}),
		Store:    store,
		Metrics:  m,
	})

	srv := NewServer(config.ServerConfig{Port: 0, SessionTTL: time.Hour}, svc, m, nil)
	return srv, store
}

func do(t *testing.T, srv *Server, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

type turnBody struct {
	SessionID string        `json:"session_id"`
	Message   string        `json:"message"`
	Field     string        `json:"field"`
	Accepted  bool          `json:"accepted"`
	Progress  float64       `json:"progress"`
	Status    intake.Status `json:"status"`
	RecordID  string        `json:"record_id"`
}

func decodeTurn(t *testing.T, data []byte) turnBody {
	t.Helper()
	var body turnBody
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	code, data := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestIndexServesChatPage(t *testing.T) {
	srv, _ := newTestServer(t)

	code, data := do(t, srv, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(data), "/api/sessions")
}

func TestConversationProducesRecord(t *testing.T) {
	srv, _ := newTestServer(t)

	code, data := do(t, srv, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, code)
	start := decodeTurn(t, data)
	require.NotEmpty(t, start.SessionID)
	assert.Equal(t, intake.FieldName, start.Field)
	assert.Equal(t, intake.StatusCollecting, start.Status)

	var last turnBody
	for _, a := range answers {
		code, data = do(t, srv, http.MethodPost, "/api/sessions/"+start.SessionID+"/turns", turnRequest{Message: a})
		require.Equal(t, http.StatusOK, code)
		last = decodeTurn(t, data)
		require.True(t, last.Accepted, "answer %q rejected: %s", a, last.Message)
	}

	assert.Equal(t, intake.StatusComplete, last.Status)
	assert.Equal(t, 1.0, last.Progress)
	assert.Contains(t, last.Message, "Go")
	require.NotEmpty(t, last.RecordID)

	code, data = do(t, srv, http.MethodGet, "/api/sessions/"+start.SessionID, nil)
	require.Equal(t, http.StatusOK, code)
	var view sessionView
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, intake.StatusComplete, view.Status)
	assert.Empty(t, view.Field)
	assert.Len(t, view.Transcript, 2*len(answers)+1)

	code, data = do(t, srv, http.MethodGet, "/api/records", nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Records []record.Summary `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list.Records, 1)
	assert.Equal(t, last.RecordID, list.Records[0].ID)
	assert.NotContains(t, string(data), "jane@example.com")

	code, data = do(t, srv, http.MethodGet, "/api/records/"+last.RecordID+"?format=txt", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(string(data), "=== CANDIDATE DATA EXPORT ==="))

	code, _ = do(t, srv, http.MethodGet, "/api/records/"+last.RecordID+"?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, srv, http.MethodDelete, "/api/records/"+last.RecordID, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, srv, http.MethodGet, "/api/records/"+last.RecordID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTurnErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		path string
		body any
		code int
	}{
		{"unknown session", "/api/sessions/missing/turns", turnRequest{Message: "hi"}, http.StatusNotFound},
		{"invalid payload", "", "not an object", http.StatusBadRequest},
	}

	_, data := do(t, srv, http.MethodPost, "/api/sessions", nil)
	id := decodeTurn(t, data).SessionID

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = "/api/sessions/" + id + "/turns"
			}
			code, data := do(t, srv, http.MethodPost, path, tt.body)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, string(data), `"error"`)
		})
	}
}

func TestRejectedAnswerKeepsField(t *testing.T) {
	srv, _ := newTestServer(t)

	_, data := do(t, srv, http.MethodPost, "/api/sessions", nil)
	id := decodeTurn(t, data).SessionID

	do(t, srv, http.MethodPost, "/api/sessions/"+id+"/turns", turnRequest{Message: "Jane Doe"})
	code, data := do(t, srv, http.MethodPost, "/api/sessions/"+id+"/turns", turnRequest{Message: "not-an-email"})
	require.Equal(t, http.StatusOK, code)

	turn := decodeTurn(t, data)
	assert.False(t, turn.Accepted)
	assert.Equal(t, intake.FieldEmail, turn.Field)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/sessions", nil)
	code, data := do(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(data), `intake_sessions_started_total{surface="web"} 1`)
}

func TestExpireSessionsRecordsPartialSession(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	_, data := do(t, srv, http.MethodPost, "/api/sessions", nil)
	id := decodeTurn(t, data).SessionID
	do(t, srv, http.MethodPost, "/api/sessions/"+id+"/turns", turnRequest{Message: "Jane Doe"})

	srv.sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	srv.expireSessions(ctx)

	code, _ := do(t, srv, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, intake.StatusTerminated, summaries[0].Status)
	assert.Equal(t, "Jane Doe", summaries[0].Name)
}

func TestSessionStoreSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newSessionStore(time.Minute, func() time.Time { return now })

	store.put(intake.Session{ID: "old"})
	now = now.Add(30 * time.Second)
	store.put(intake.Session{ID: "fresh"})
	now = now.Add(45 * time.Second)

	expired := store.sweep()
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].ID)
	assert.Equal(t, 1, store.count())

	_, ok := store.get("fresh")
	assert.True(t, ok)
}

func TestSessionStoreTurnAfterSweepIsRejected(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newSessionStore(time.Minute, func() time.Time { return now })
	store.put(intake.Session{ID: "s1"})

	e, ok := store.lookup("s1")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	expired := store.sweep()
	require.Len(t, expired, 1)

	called := false
	ok = store.apply(e, func(sess intake.Session) intake.Session {
		called = true
		return sess
	})
	assert.False(t, ok)
	assert.False(t, called)

	_, ok = store.get("s1")
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{errSessionNotFound, http.StatusNotFound},
		{record.ErrUnknownFormat, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, httpStatus(tt.err), tt.err.Error())
	}
}
