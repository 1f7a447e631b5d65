// Package webchat serves the real-time chat surface over WebSocket. Unlike
// the REST endpoint it holds the connection open and replays the transcript
// on reconnect.
package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/bookwise-ai/bookwise/internal/availability"
	"github.com/bookwise-ai/bookwise/internal/dialogue"
	"github.com/bookwise-ai/bookwise/internal/history"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

// Handler manages web chat connections and messages.
type Handler struct {
	dialogue   *dialogue.Service
	transcript *history.Store // nil disables transcript replay
	logger     *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string                  `json:"type"` // "message", "typing", "history", "session", "pong", "error"
	Text      string                  `json:"text,omitempty"`
	Role      string                  `json:"role,omitempty"` // "assistant" or "user"
	SessionID string                  `json:"session_id,omitempty"`
	Timestamp string                  `json:"timestamp,omitempty"`
	Slots     []availability.TimeSlot `json:"available_slots,omitempty"`
	Booking   *dialogue.BookingInfo   `json:"booking_info,omitempty"`
	Messages  []HistoryMessage        `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history replay.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler.
func NewHandler(svc *dialogue.Service, transcript *history.Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		dialogue:   svc,
		transcript: transcript,
		logger:     logger,
		sessions:   make(map[string]*wsConn),
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

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
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

	// Replay history on (re)connect.
	if h.transcript != nil {
		if msgs, err := h.transcript.List(r.Context(), sessionID, 50); err == nil && len(msgs) > 0 {
			replay := make([]HistoryMessage, 0, len(msgs))
			for _, m := range msgs {
				replay = append(replay, HistoryMessage{
					Role:      m.Role,
					Text:      m.Text,
					Timestamp: m.Timestamp.Format(time.RFC3339),
				})
			}
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: replay})
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

		h.processMessage(r.Context(), sessionID, strings.TrimSpace(msg.Text))
	}
}

// processMessage runs one message through the dialogue service and pushes the
// reply back on the session's socket.
func (h *Handler) processMessage(ctx context.Context, sessionID, text string) {
	if h.transcript != nil {
		_ = h.transcript.Append(ctx, sessionID, history.Message{
			Role:      "user",
			Text:      text,
			Timestamp: time.Now().UTC(),
		})
	}

	h.SendToSession(sessionID, OutboundMessage{Type: "typing"})

	out := h.dialogue.HandleMessage(ctx, text, sessionID)

	if h.transcript != nil {
		_ = h.transcript.Append(ctx, sessionID, history.Message{
			Role:      "assistant",
			Text:      out.ResponseText,
			Intent:    string(out.Intent),
			Timestamp: time.Now().UTC(),
		})
	}

	h.SendToSession(sessionID, OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      out.ResponseText,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Slots:     out.AvailableSlots,
		Booking:   out.Booking,
	})
}

// SendToSession sends a message to an active WebSocket session.
func (h *Handler) SendToSession(sessionID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}
