package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/labease/labease-platform/internal/retrieval"
	"github.com/labease/labease-platform/pkg/logging"
)

const defaultHistoryLimit = 50

// Turn is one logged exchange, oldest first when listed.
type Turn struct {
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Stage       Stage     `json:"stage"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryStore serves past turns for a session.
type HistoryStore interface {
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error)
}

// RecommendationLogger snapshots what was suggested for which
// symptoms. Failures must not surface to the user.
type RecommendationLogger interface {
	LogRecommendation(ctx context.Context, sessionID, symptoms string, tests []retrieval.TestInfo) error
}

// Handler exposes the chat API over HTTP.
type Handler struct {
	engine    *Engine
	retrieval *retrieval.Service
	history   HistoryStore
	recs      RecommendationLogger
	validate  *validator.Validate
	logger    *logging.Logger
}

// NewHandler creates a chat handler. history and recs may be nil, in
// which case the history endpoint serves empty lists and
// recommendations are not persisted.
func NewHandler(engine *Engine, rs *retrieval.Service, history HistoryStore, recs RecommendationLogger, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:    engine,
		retrieval: rs,
		history:   history,
		recs:      recs,
		validate:  validator.New(),
		logger:    logger,
	}
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// ChatResponse is what one chat turn returns.
type ChatResponse struct {
	Response    string    `json:"response"`
	Suggestions []string  `json:"suggestions"`
	Stage       Stage     `json:"stage"`
	SessionID   string    `json:"session_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.engine.Respond(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, ErrSessionBusy) {
			http.Error(w, "another message for this session is still processing", http.StatusConflict)
			return
		}
		h.logger.Error("chat turn failed", "session_id", req.SessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:    res.Message,
		Suggestions: res.Suggestions,
		Stage:       res.Stage,
		SessionID:   req.SessionID,
		Timestamp:   time.Now().UTC(),
	})
}

// History handles GET /api/chat/history?session_id=&limit=.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	turns := []Turn{}
	if h.history != nil {
		var err error
		turns, err = h.history.RecentTurns(r.Context(), sessionID, limit)
		if err != nil {
			h.logger.Error("chat history lookup failed", "session_id", sessionID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"turns":      turns,
		"count":      len(turns),
	})
}

// RecommendationsRequest is the body of POST /api/recommendations.
type RecommendationsRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=128"`
	Symptoms  string `json:"symptoms" validate:"required,max=2000"`
}

// Recommendations handles POST /api/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tests, err := h.retrieval.TestsForSymptoms(r.Context(), req.Symptoms)
	if err != nil {
		h.logger.Error("recommendation lookup failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	infos := make([]retrieval.TestInfo, 0, len(tests))
	for _, t := range tests {
		info, err := h.retrieval.TestInfo(r.Context(), t)
		if err != nil {
			h.logger.Error("recommendation lookup failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		infos = append(infos, info)
	}

	if h.recs != nil {
		if err := h.recs.LogRecommendation(r.Context(), req.SessionID, req.Symptoms, infos); err != nil {
			h.logger.Warn("recommendation not logged", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recommendations": infos,
		"count":           len(infos),
		"disclaimer":      "These suggestions are general guidance only. Consult a doctor for an accurate diagnosis.",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
