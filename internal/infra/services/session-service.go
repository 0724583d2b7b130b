package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nutrition-assistant/internal/domain/entities"
	"nutrition-assistant/internal/infra/logger"
)

// SessionService keeps every active intake session in memory, keyed by the
// client-generated session id. Entries expire after Timeout of inactivity,
// either lazily on lookup or through the periodic cleanup loop.
type SessionService struct {
	Logger  *logger.Logger
	Timeout time.Duration

	mu       sync.Mutex
	sessions map[string]*entities.UserSession
}

func NewSessionService(timeout time.Duration, logger *logger.Logger) *SessionService {
	return &SessionService{
		Logger:   logger,
		Timeout:  timeout,
		sessions: make(map[string]*entities.UserSession),
	}
}

// CreateSession initializes a fresh session at the permission step,
// overwriting any existing entry with the same id.
func (ss *SessionService) CreateSession(sessionID string) *entities.UserSession {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	session := &entities.UserSession{
		ID:           sessionID,
		CreatedAt:    now,
		LastActivity: now,
		UserData: entities.UserData{
			Completed: false,
			User: entities.UserProfile{
				DietaryRestrictions: []string{},
				Allergies:           []string{},
				Preferences:         []string{},
				MedicalConditions:   []string{},
			},
		},
		ConversationHistory: []entities.ConversationMessage{},
		CurrentStep:         entities.StepPermission,
	}

	ss.sessions[sessionID] = session
	return snapshot(session)
}

// GetSession returns nil for an unknown id or for an entry whose
// lastActivity exceeded the timeout; the expired entry is deleted.
func (ss *SessionService) GetSession(sessionID string) *entities.UserSession {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session := ss.getLocked(sessionID)
	if session == nil {
		return nil
	}
	return snapshot(session)
}

func (ss *SessionService) AddMessage(sessionID string, message entities.ConversationMessage) *entities.UserSession {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session := ss.getLocked(sessionID)
	if session == nil {
		return nil
	}

	session.ConversationHistory = append(session.ConversationHistory, message)
	session.LastActivity = time.Now()
	return snapshot(session)
}

// UpdateUserData merges the patch into the stored record: top-level fields
// are replaced when present and the nested profile is merged field by field,
// so unspecified fields keep their previous values.
func (ss *SessionService) UpdateUserData(sessionID string, patch entities.UserDataPatch) *entities.UserSession {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session := ss.getLocked(sessionID)
	if session == nil {
		return nil
	}

	if patch.Completed != nil {
		session.UserData.Completed = *patch.Completed
	}
	if patch.CollectedAt != nil {
		session.UserData.CollectedAt = *patch.CollectedAt
	}
	mergeProfile(&session.UserData.User, patch.User)

	session.LastActivity = time.Now()
	return snapshot(session)
}

// AdvanceStep moves the session forward one step, clamped at StepComplete.
func (ss *SessionService) AdvanceStep(sessionID string) *entities.UserSession {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session := ss.getLocked(sessionID)
	if session == nil {
		return nil
	}

	if session.CurrentStep < entities.StepComplete {
		session.CurrentStep++
	}
	session.LastActivity = time.Now()
	return snapshot(session)
}

func (ss *SessionService) DeleteSession(sessionID string) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	_, ok := ss.sessions[sessionID]
	if ok {
		delete(ss.sessions, sessionID)
	}
	return ok
}

func (ss *SessionService) SessionCount() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

// CleanupExpiredSessions deletes every expired entry and returns how many
// were removed.
func (ss *SessionService) CleanupExpiredSessions() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	cleaned := 0
	for sessionID, session := range ss.sessions {
		if time.Since(session.LastActivity) > ss.Timeout {
			delete(ss.sessions, sessionID)
			cleaned++
		}
	}
	return cleaned
}

// StartCleanup runs the expiry sweep on a fixed interval until ctx is done.
// It only ever deletes and never blocks request handling.
func (ss *SessionService) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if cleaned := ss.CleanupExpiredSessions(); cleaned > 0 {
					ss.Logger.Info(fmt.Sprintf("Cleaned up %d expired sessions", cleaned))
				}
			}
		}
	}()
}

func (ss *SessionService) getLocked(sessionID string) *entities.UserSession {
	session, ok := ss.sessions[sessionID]
	if !ok {
		return nil
	}

	if time.Since(session.LastActivity) > ss.Timeout {
		delete(ss.sessions, sessionID)
		return nil
	}

	return session
}

func mergeProfile(dst *entities.UserProfile, patch entities.ProfilePatch) {
	if patch.Age != nil {
		dst.Age = patch.Age
	}
	if patch.Sex != nil {
		dst.Sex = *patch.Sex
	}
	if patch.HeightCm != nil {
		dst.HeightCm = patch.HeightCm
	}
	if patch.WeightKg != nil {
		dst.WeightKg = patch.WeightKg
	}
	if patch.ActivityLevel != nil {
		dst.ActivityLevel = *patch.ActivityLevel
	}
	if patch.Goal != nil {
		dst.Goal = *patch.Goal
	}
	if patch.MealsPerDay != nil {
		dst.MealsPerDay = patch.MealsPerDay
	}
	if patch.DietaryRestrictions != nil {
		dst.DietaryRestrictions = patch.DietaryRestrictions
	}
	if patch.Allergies != nil {
		dst.Allergies = patch.Allergies
	}
	if patch.Preferences != nil {
		dst.Preferences = patch.Preferences
	}
	if patch.MedicalConditions != nil {
		dst.MedicalConditions = patch.MedicalConditions
	}
	if patch.Timezone != nil {
		dst.Timezone = *patch.Timezone
	}
}

// snapshot returns a shallow copy so callers never hold the map's live
// pointer across the mutex boundary.
func snapshot(session *entities.UserSession) *entities.UserSession {
	clone := *session
	return &clone
}
