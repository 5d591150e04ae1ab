package dialogue

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/labease/labease-platform/internal/retrieval"
	"github.com/labease/labease-platform/pkg/logging"
)

type stubHistory struct {
	turns []Turn
}

func (s *stubHistory) RecentTurns(_ context.Context, _ string, limit int) ([]Turn, error) {
	if len(s.turns) > limit {
		return s.turns[:limit], nil
	}
	return s.turns, nil
}

type recordingRecs struct {
	sessionID string
	symptoms  string
	count     int
}

func (r *recordingRecs) LogRecommendation(_ context.Context, sessionID, symptoms string, tests []retrieval.TestInfo) error {
	r.sessionID = sessionID
	r.symptoms = symptoms
	r.count = len(tests)
	return nil
}

func newChatRouter(t *testing.T, history HistoryStore, recs RecommendationLogger) chi.Router {
	t.Helper()
	f := newEngineFixture(t)
	logger := logging.NewWithWriter("error", io.Discard)
	h := NewHandler(f.engine, retrieval.NewService(seedCatalog(t)), history, recs, logger)

	r := chi.NewRouter()
	r.Post("/api/chat", h.Chat)
	r.Get("/api/chat/history", h.History)
	r.Post("/api/recommendations", h.Recommendations)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatEndpointRespondsWithStage(t *testing.T) {
	r := newChatRouter(t, nil, nil)

	w := postJSON(t, r, "/api/chat", ChatRequest{SessionID: "s1", Message: "Hello"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, StageIdle, resp.Stage)
	require.Contains(t, resp.Response, "Welcome to LabEase!")
	require.NotEmpty(t, resp.Suggestions)
}

func TestChatEndpointValidatesBody(t *testing.T) {
	r := newChatRouter(t, nil, nil)

	w := postJSON(t, r, "/api/chat", ChatRequest{Message: "no session"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	history := &stubHistory{turns: []Turn{
		{UserMessage: "Hello", BotResponse: "hi!", Stage: StageIdle, CreatedAt: time.Now()},
		{UserMessage: "Book CBC", BotResponse: "sure", Stage: StageTestSelected, CreatedAt: time.Now()},
	}}
	r := newChatRouter(t, history, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/history?session_id=s1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SessionID string `json:"session_id"`
		Turns     []Turn `json:"turns"`
		Count     int    `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, "s1", resp.SessionID)
	require.Equal(t, 2, resp.Count)
}

func TestHistoryRequiresSessionID(t *testing.T) {
	r := newChatRouter(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/chat/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendationsEndpointLogsSnapshot(t *testing.T) {
	recs := &recordingRecs{}
	r := newChatRouter(t, nil, recs)

	w := postJSON(t, r, "/api/recommendations", RecommendationsRequest{
		SessionID: "s1",
		Symptoms:  "tired and weight gain",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Recommendations []retrieval.TestInfo `json:"recommendations"`
		Count           int                  `json:"count"`
		Disclaimer      string               `json:"disclaimer"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotZero(t, resp.Count)
	require.NotEmpty(t, resp.Disclaimer)
	require.Equal(t, "s1", recs.sessionID)
	require.Equal(t, resp.Count, recs.count)
}
