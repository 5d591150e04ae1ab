// Package webchat carries the booking conversation over a WebSocket,
// for the embedded chat widget. The HTTP chat API remains the
// canonical contract; this transport wraps the same engine.
package webchat

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/labease/labease-platform/internal/dialogue"
	"github.com/labease/labease-platform/pkg/logging"
)

const historyLimit = 50

// Handler manages web chat connections and messages.
type Handler struct {
	engine  *dialogue.Engine
	history dialogue.HistoryStore
	logger  *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type        string           `json:"type"` // "message", "typing", "pong", "history", "session", "error"
	Text        string           `json:"text,omitempty"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Stage       dialogue.Stage   `json:"stage,omitempty"`
	SessionID   string           `json:"session_id,omitempty"`
	Timestamp   string           `json:"timestamp,omitempty"`
	Messages    []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified turn for history frames.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler. history may be nil.
func NewHandler(engine *dialogue.Engine, history dialogue.HistoryStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:   engine,
		history:  history,
		logger:   logger,
		sessions: make(map[string]*wsConn),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time chat.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	if h.history != nil {
		if turns, err := h.history.RecentTurns(r.Context(), sessionID, historyLimit); err == nil && len(turns) > 0 {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: historyFrames(turns)})
		}
	}

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[sessionID] == wsc {
			delete(h.sessions, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "typing"})

		res, err := h.engine.Respond(r.Context(), sessionID, msg.Text)
		if err != nil {
			h.logger.Error("webchat: turn failed", "session_id", sessionID, "error", err)
			_ = websocket.JSON.Send(conn, OutboundMessage{
				Type: "error",
				Text: "Sorry, something went wrong. Please try again.",
			})
			continue
		}

		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:        "message",
			Text:        res.Message,
			Suggestions: res.Suggestions,
			Stage:       res.Stage,
			SessionID:   sessionID,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func historyFrames(turns []dialogue.Turn) []HistoryMessage {
	out := make([]HistoryMessage, 0, 2*len(turns))
	for _, turn := range turns {
		ts := turn.CreatedAt.Format(time.RFC3339)
		out = append(out,
			HistoryMessage{Role: "user", Text: turn.UserMessage, Timestamp: ts},
			HistoryMessage{Role: "assistant", Text: turn.BotResponse, Timestamp: ts},
		)
	}
	return out
}
