package Iservices

import (
	"context"

	"nutrition-assistant/internal/domain/dto"
)

type IAssistantService interface {
	ProcessMessage(ctx context.Context, sessionID string, message string) dto.MessageResponse
}
