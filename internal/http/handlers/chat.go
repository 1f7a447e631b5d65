package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bookwise-ai/bookwise/internal/dialogue"
	"github.com/bookwise-ai/bookwise/internal/history"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

const maxChatBodyBytes = 16 << 10

// ChatHandler serves the conversational endpoint. Each request carries one
// user message; the transcript store keeps the session thread when Redis is
// configured.
type ChatHandler struct {
	dialogue   *dialogue.Service
	transcript *history.Store // nil disables transcript capture
	logger     *logging.Logger
}

// NewChatHandler creates the chat endpoint handler.
func NewChatHandler(svc *dialogue.Service, transcript *history.Store, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{dialogue: svc, transcript: transcript, logger: logger}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	dialogue.Outcome
}

// HandleChat processes POST /api/chat.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	ctx := r.Context()
	h.appendTranscript(ctx, req.SessionID, history.Message{Role: "user", Text: req.Message})

	out := h.dialogue.HandleMessage(ctx, req.Message, req.SessionID)

	h.appendTranscript(ctx, req.SessionID, history.Message{
		Role:   "assistant",
		Text:   out.ResponseText,
		Intent: string(out.Intent),
	})

	writeJSON(w, http.StatusOK, chatResponse{SessionID: req.SessionID, Outcome: out})
}

// HandleHistory serves GET /api/chat/history?session_id=...
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if h.transcript == nil {
		writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "messages": []history.Message{}})
		return
	}

	msgs, err := h.transcript.List(r.Context(), sessionID, 0)
	if err != nil {
		h.logger.Error("chat: transcript list failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}
	if msgs == nil {
		msgs = []history.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "messages": msgs})
}

// appendTranscript is best-effort: a transcript failure never blocks the reply.
func (h *ChatHandler) appendTranscript(ctx context.Context, sessionID string, msg history.Message) {
	if err := h.transcript.Append(ctx, sessionID, msg); err != nil {
		h.logger.Warn("chat: transcript append failed", "session_id", sessionID, "error", err)
	}
}
