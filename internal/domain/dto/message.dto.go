package dto

import (
	"time"

	"nutrition-assistant/internal/domain/entities"
)

type MessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// MessageResponse is the processMessage contract: the (possibly partial)
// collected record, the assistant's reply and whether the flow finished.
type MessageResponse struct {
	JSON *entities.UserData `json:"json"`
	Text string             `json:"text"`
	Done bool               `json:"done"`
}

type SessionSummary struct {
	SessionID     string                `json:"sessionId"`
	CreatedAt     time.Time             `json:"createdAt"`
	LastActivity  time.Time             `json:"lastActivity"`
	CurrentStep   entities.QuestionStep `json:"currentStep"`
	Completed     bool                  `json:"completed"`
	MessagesCount int                   `json:"messagesCount"`
}

type APIError struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}
