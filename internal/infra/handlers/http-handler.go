package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nutrition-assistant/internal/domain/dto"
	Iservices "nutrition-assistant/internal/domain/interfaces/services"
	"nutrition-assistant/internal/infra/logger"

	"github.com/gorilla/mux"
)

type HttpHandlers struct {
	Logger           *logger.Logger
	SessionService   Iservices.ISessionService
	AssistantService Iservices.IAssistantService
}

func NewHttpHandlers(logger *logger.Logger, sessionService Iservices.ISessionService, assistantService Iservices.IAssistantService) *HttpHandlers {
	return &HttpHandlers{Logger: logger, SessionService: sessionService, AssistantService: assistantService}
}

// ProcessMessage handles one conversational turn. The assistant never lets
// an internal error escape, so a decoded request always gets a 200 with the
// MessageResponse contract.
func (th *HttpHandlers) ProcessMessage(w http.ResponseWriter, r *http.Request) {
	var body dto.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		th.Logger.Error(fmt.Sprintf("Invalid JSON payload: %s", err.Error()))
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "sessionId and message are required")
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(body.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "sessionId is required and must be a non-empty string")
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "message is required and must be a non-empty string")
		return
	}

	response := th.AssistantService.ProcessMessage(r.Context(), body.SessionID, body.Message)
	writeJSON(w, http.StatusOK, response)
}

func (th *HttpHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := pathSessionID(r)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "sessionId is required")
		return
	}

	session := th.SessionService.GetSession(sessionID)
	if session == nil {
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionSummary{
		SessionID:     session.ID,
		CreatedAt:     session.CreatedAt,
		LastActivity:  session.LastActivity,
		CurrentStep:   session.CurrentStep,
		Completed:     session.UserData.Completed,
		MessagesCount: len(session.ConversationHistory),
	})
}

func (th *HttpHandlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := pathSessionID(r)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "sessionId is required")
		return
	}

	if !th.SessionService.DeleteSession(sessionID) {
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Session deleted successfully",
		"sessionId": sessionID,
	})
}

func (th *HttpHandlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalSessions": th.SessionService.SessionCount(),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func pathSessionID(r *http.Request) string {
	return strings.TrimSpace(mux.Vars(r)["sessionId"])
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, errorCode string, message string) {
	writeJSON(w, statusCode, dto.APIError{
		Error:     errorCode,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
