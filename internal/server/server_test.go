package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/learnbot/internal/config"
	"github.com/jeanpaul/learnbot/internal/engine"
	"github.com/jeanpaul/learnbot/internal/knowledge"
	"github.com/jeanpaul/learnbot/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type unreachable struct{ storage.Backend }

func (unreachable) Ping(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, backend storage.Backend, entries ...knowledge.Entry) *Server {
	t.Helper()
	store := knowledge.NewStore("healthcare", backend)
	if len(entries) > 0 {
		require.NoError(t, store.Save(context.Background(), knowledge.KnowledgeBase{Entries: entries}))
	}
	s := New(config.ServerConfig{Host: "127.0.0.1", Port: 0, Mode: gin.TestMode, Metrics: true},
		store, backend, engine.DefaultOptions())
	s.Setup()
	return s
}

func do(t *testing.T, s *Server, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

type outcomeJSON struct {
	SessionID string   `json:"session_id"`
	Kind      string   `json:"kind"`
	Text      string   `json:"text"`
	Question  string   `json:"question"`
	Score     *float64 `json:"score"`
	Warning   string   `json:"warning"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) outcomeJSON {
	t.Helper()
	var out outcomeJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestTurn_Answered(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryBackend(),
		knowledge.Entry{Question: "How can I schedule an appointment?", Answer: "Call (555) 123-4567."})

	w := do(t, s, http.MethodPost, "/api/v1/turns", "", gin.H{"text": "how do i schedule an appointment"})
	require.Equal(t, http.StatusOK, w.Code)

	out := decode(t, w)
	assert.Equal(t, "answered", out.Kind)
	assert.Equal(t, "Call (555) 123-4567.", out.Text)
	require.NotNil(t, out.Score)
	assert.GreaterOrEqual(t, *out.Score, 0.6)
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, out.SessionID, w.Header().Get(SessionHeader))
}

func TestTurn_TeachFlow(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryBackend())

	w := do(t, s, http.MethodPost, "/api/v1/turns", "", gin.H{"text": "What is your return policy?"})
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, "needs_teaching", out.Kind)
	session := out.SessionID

	w = do(t, s, http.MethodPost, "/api/v1/teach", session, gin.H{"answer": "30 days, with receipt."})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "learned", decode(t, w).Kind)

	// Any session now gets the learned answer.
	w = do(t, s, http.MethodPost, "/api/v1/turns", "", gin.H{"text": "What is your return policy?"})
	out = decode(t, w)
	assert.Equal(t, "answered", out.Kind)
	assert.Equal(t, "30 days, with receipt.", out.Text)

	w = do(t, s, http.MethodGet, "/api/v1/entries", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries struct {
		Store   string            `json:"store"`
		Count   int               `json:"count"`
		Entries []knowledge.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Equal(t, "healthcare", entries.Store)
	assert.Equal(t, 1, entries.Count)
}

func TestTeach_SessionsAreSeparate(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryBackend())

	first := decode(t, do(t, s, http.MethodPost, "/api/v1/turns", "", gin.H{"text": "unknown one"})).SessionID
	second := decode(t, do(t, s, http.MethodPost, "/api/v1/turns", "", gin.H{"text": "unknown two"})).SessionID
	require.NotEqual(t, first, second)

	w := do(t, s, http.MethodPost, "/api/v1/teach", first, gin.H{"answer": "one"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unknown one", decode(t, w).Question)
}

func TestTeach_NothingPending(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryBackend())

	w := do(t, s, http.MethodPost, "/api/v1/teach", "", gin.H{"answer": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	session := decode(t, do(t, s, http.MethodPost, "/api/v1/turns", "", gin.H{"text": "quit"})).SessionID
	w = do(t, s, http.MethodPost, "/api/v1/teach", session, gin.H{"answer": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestTurn_BadRequest(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryBackend())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/turns", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranscript(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryBackend(), knowledge.Entry{Question: "hi", Answer: "hello"})
	session := decode(t, do(t, s, http.MethodPost, "/api/v1/turns", "", gin.H{"text": "hi"})).SessionID

	w := do(t, s, http.MethodGet, "/api/v1/transcript", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		SessionID string `json:"session_id"`
		Turns     []struct {
			Sender  string `json:"sender"`
			Message string `json:"message"`
		} `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, session, body.SessionID)
	require.Len(t, body.Turns, 2)
	assert.Equal(t, "user", body.Turns[0].Sender)
	assert.Equal(t, "hello", body.Turns[1].Message)

	w = do(t, s, http.MethodGet, "/api/v1/transcript?format=markdown", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "**Bot**: hello")

	w = do(t, s, http.MethodGet, "/api/v1/transcript", "no-such-session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryBackend())
	w := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	down := newTestServer(t, unreachable{storage.NewMemoryBackend()})
	w = do(t, down, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, storage.NewMemoryBackend(), knowledge.Entry{Question: "hi", Answer: "hello"})
	do(t, s, http.MethodPost, "/api/v1/turns", "", gin.H{"text": "hi"})

	w := do(t, s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "learnbot_turns_total")
	assert.Contains(t, body, "learnbot_match_score")
	assert.Contains(t, body, "learnbot_http_requests_total")
}
