package assistant

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medloop/practice-assistant/internal/session"
	"github.com/medloop/practice-assistant/pkg/logging"
)

// Handler wires HTTP requests to the assistant pipeline. Session state
// is loaded before the turn and saved back after it.
type Handler struct {
	processor TurnProcessor
	sessions  session.Store
	logger    *logging.Logger
}

// NewHandler creates an assistant handler.
func NewHandler(processor TurnProcessor, sessions session.Store, logger *logging.Logger) *Handler {
	if processor == nil {
		panic("assistant: turn processor required")
	}
	if sessions == nil {
		panic("assistant: session store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		processor: processor,
		sessions:  sessions,
		logger:    logger,
	}
}

// Routes mounts the assistant endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/turns", h.Turn)
	r.Delete("/sessions/{sessionID}", h.EndSession)
}

// Turn handles POST /assistant/turns.
func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode turn request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Text) == "" {
		http.Error(w, "session_id and text are required", http.StatusBadRequest)
		return
	}

	convo, err := h.loadContext(r, req.SessionID)
	if err != nil {
		h.logger.Error("failed to load session state", "session_id", req.SessionID, "error", err)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	result, err := h.processor.ProcessTurn(r.Context(), req, convo)
	if err != nil {
		h.logger.Error("failed to process turn", "session_id", req.SessionID, "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"response_text": "Something went wrong on our side. Please try again in a moment.",
		})
		return
	}

	if err := h.saveContext(r, req.SessionID, result.ContextUpdate); err != nil {
		// The answer still stands; the session just loses this turn.
		h.logger.Error("failed to save session state", "session_id", req.SessionID, "error", err)
	}

	h.writeJSON(w, http.StatusOK, result)
}

// EndSession handles DELETE /assistant/sessions/{sessionID}.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		h.logger.Error("failed to end session", "session_id", sessionID, "error", err)
		http.Error(w, "Failed to end session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadContext returns nil for a session that has no state yet; the
// engine opens a fresh context on nil.
func (h *Handler) loadContext(r *http.Request, sessionID string) (*ConversationContext, error) {
	data, err := h.sessions.Load(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var convo ConversationContext
	if err := json.Unmarshal(data, &convo); err != nil {
		return nil, err
	}
	return &convo, nil
}

func (h *Handler) saveContext(r *http.Request, sessionID string, convo *ConversationContext) error {
	if convo == nil {
		return nil
	}
	data, err := json.Marshal(convo)
	if err != nil {
		return err
	}
	return h.sessions.Save(r.Context(), sessionID, data)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
