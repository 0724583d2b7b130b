package Iservices

import "nutrition-assistant/internal/domain/entities"

// ISessionService owns every UserSession. All lookups apply lazy expiry:
// an entry whose lastActivity is older than the configured timeout is
// deleted and reported as absent.
type ISessionService interface {
	CreateSession(sessionID string) *entities.UserSession
	GetSession(sessionID string) *entities.UserSession
	AddMessage(sessionID string, message entities.ConversationMessage) *entities.UserSession
	UpdateUserData(sessionID string, patch entities.UserDataPatch) *entities.UserSession
	AdvanceStep(sessionID string) *entities.UserSession
	DeleteSession(sessionID string) bool
	SessionCount() int
	CleanupExpiredSessions() int
}
