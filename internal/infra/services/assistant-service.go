package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"nutrition-assistant/internal/domain/dto"
	"nutrition-assistant/internal/domain/entities"
	Iservices "nutrition-assistant/internal/domain/interfaces/services"
	"nutrition-assistant/internal/infra/logger"
	"nutrition-assistant/internal/infra/provider"
	"nutrition-assistant/internal/util"
)

// PdfExportMarker is appended to the final reply so the presentation layer
// knows the plan is ready to export.
const PdfExportMarker = "##EXPORT_PDF"

const internalErrorText = "Desculpe, ocorreu um erro interno. Tente novamente mais tarde."

var affirmativePattern = regexp.MustCompile(`(?i)sim|yes|ok|pode|claro|vamos|aceito`)

var medicalKeywords = []string{
	"diagnóstico",
	"diagnostico",
	"remédio",
	"medicamento",
	"receita",
	"prescrição",
	"doença",
	"sintoma",
	"tratamento",
	"cura",
	"medicina",
}

type stepHandler func(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse

// AssistantService drives the intake conversation: one handler per step,
// steps only move forward, and an extraction miss re-asks the same step.
// Messages for the same session id are processed one at a time.
type AssistantService struct {
	Logger         *logger.Logger
	SessionService Iservices.ISessionService
	PlanService    *PlanService
	Generator      provider.ITextGenerator
	LLMTimeout     time.Duration

	handlers map[entities.QuestionStep]stepHandler

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewAssistantService(logger *logger.Logger, sessionService Iservices.ISessionService, planService *PlanService, generator provider.ITextGenerator, llmTimeout time.Duration) *AssistantService {
	as := &AssistantService{
		Logger:         logger,
		SessionService: sessionService,
		PlanService:    planService,
		Generator:      generator,
		LLMTimeout:     llmTimeout,
		locks:          make(map[string]*sessionLock),
	}

	as.handlers = map[entities.QuestionStep]stepHandler{
		entities.StepPermission:          as.handlePermissionStep,
		entities.StepAge:                 as.handleAgeStep,
		entities.StepSex:                 as.handleSexStep,
		entities.StepHeight:              as.handleHeightStep,
		entities.StepWeight:              as.handleWeightStep,
		entities.StepActivityLevel:       as.handleActivityLevelStep,
		entities.StepGoal:                as.handleGoalStep,
		entities.StepMealsPerDay:         as.handleMealsStep,
		entities.StepDietaryRestrictions: as.handleDietaryRestrictionsStep,
		entities.StepAllergies:           as.handleAllergiesStep,
		entities.StepPreferences:         as.handlePreferencesStep,
		entities.StepMedicalConditions:   as.handleMedicalConditionsStep,
	}

	return as
}

// ProcessMessage runs one conversational turn for the session: fetch or
// recreate the session, append the user message, dispatch on the current
// step and append the assistant reply. It fails closed: any panic becomes
// the fixed apology response.
func (as *AssistantService) ProcessMessage(ctx context.Context, sessionID string, message string) (response dto.MessageResponse) {
	defer func() {
		if r := recover(); r != nil {
			as.Logger.Error(fmt.Sprintf("Recovered from panic while processing message for session %s: %v", sessionID, r))
			response = dto.MessageResponse{JSON: nil, Text: internalErrorText, Done: false}
		}
	}()

	unlock := as.lockSession(sessionID)
	defer unlock()

	session := as.SessionService.GetSession(sessionID)
	if session == nil {
		session = as.SessionService.CreateSession(sessionID)
	}

	as.SessionService.AddMessage(sessionID, entities.ConversationMessage{
		Role:      "user",
		Content:   message,
		Timestamp: time.Now(),
	})

	handler, ok := as.handlers[session.CurrentStep]
	if !ok {
		handler = as.handleGeneralQuestion
	}
	response = handler(ctx, session, message)

	as.SessionService.AddMessage(sessionID, entities.ConversationMessage{
		Role:      "assistant",
		Content:   response.Text,
		Timestamp: time.Now(),
	})

	return response
}

func (as *AssistantService) handlePermissionStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	if affirmativePattern.MatchString(message) {
		updated := as.SessionService.AdvanceStep(session.ID)
		return as.reply(updated, session, "Perfeito! Vamos começar. Qual é a sua idade?")
	}

	return as.reply(nil, session, "Tudo bem! Quando quiser criar seu plano alimentar personalizado, é só me avisar. Posso fazer algumas perguntas para criar seu plano alimentar personalizado?")
}

func (as *AssistantService) handleAgeStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	age, ok := util.ExtractNumber(message)
	if !ok || age < 1 || age > 120 {
		return as.reply(nil, session, "Por favor, me informe uma idade válida entre 1 e 120 anos.")
	}

	as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		User: entities.ProfilePatch{Age: &age},
	})
	updated := as.SessionService.AdvanceStep(session.ID)

	return as.reply(updated, session, "Obrigado! Qual é o seu sexo/gênero? (masculino, feminino ou outro)")
}

func (as *AssistantService) handleSexStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	sex, ok := util.ExtractSex(message)
	if !ok {
		return as.reply(nil, session, "Por favor, informe: masculino, feminino ou outro.")
	}

	as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		User: entities.ProfilePatch{Sex: &sex},
	})
	updated := as.SessionService.AdvanceStep(session.ID)

	return as.reply(updated, session, "Perfeito! Qual é a sua altura em centímetros?")
}

func (as *AssistantService) handleHeightStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	height, ok := util.ExtractNumber(message)
	if !ok || height < 50 || height > 300 {
		return as.reply(nil, session, "Por favor, informe uma altura válida entre 50 e 300 cm.")
	}

	as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		User: entities.ProfilePatch{HeightCm: &height},
	})
	updated := as.SessionService.AdvanceStep(session.ID)

	return as.reply(updated, session, "Ótimo! E qual é o seu peso atual em quilogramas?")
}

func (as *AssistantService) handleWeightStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	weight, ok := util.ExtractNumber(message)
	if !ok || weight < 20 || weight > 500 {
		return as.reply(nil, session, "Por favor, informe um peso válido entre 20 e 500 kg.")
	}

	as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		User: entities.ProfilePatch{WeightKg: &weight},
	})
	updated := as.SessionService.AdvanceStep(session.ID)

	return as.reply(updated, session, "Entendi! Como você classificaria seu nível de atividade física?\n\n• Sedentário (pouco ou nenhum exercício)\n• Leve (exercício leve 1-3 dias por semana)\n• Moderado (exercício moderado 3-5 dias por semana)\n• Intenso (exercício pesado 6-7 dias por semana)")
}

func (as *AssistantService) handleActivityLevelStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	activityLevel, ok := util.ExtractActivityLevel(message)
	if !ok {
		return as.reply(nil, session, "Por favor, escolha uma opção: sedentário, leve, moderado ou intenso.")
	}

	as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		User: entities.ProfilePatch{ActivityLevel: &activityLevel},
	})
	updated := as.SessionService.AdvanceStep(session.ID)

	return as.reply(updated, session, "Perfeito! Qual é o seu objetivo principal? (ex: emagrecimento, ganho de massa muscular, manutenção do peso, controle de glicemia, etc.)")
}

func (as *AssistantService) handleGoalStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	goal := strings.TrimSpace(message)

	as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		User: entities.ProfilePatch{Goal: &goal},
	})
	updated := as.SessionService.AdvanceStep(session.ID)

	return as.reply(updated, session, "Excelente! Quantas refeições você costuma fazer por dia?")
}

func (as *AssistantService) handleMealsStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	meals, ok := util.ExtractNumber(message)
	if !ok || meals < 1 || meals > 10 {
		return as.reply(nil, session, "Por favor, informe um número válido de refeições entre 1 e 10.")
	}

	as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		User: entities.ProfilePatch{MealsPerDay: &meals},
	})
	updated := as.SessionService.AdvanceStep(session.ID)

	return as.reply(updated, session, "Ótimo! Você tem alguma restrição alimentar? (ex: vegetariano, vegano, halal, kosher, sem glúten, etc.) Se não tiver, pode responder \"nenhuma\".")
}

func (as *AssistantService) handleDietaryRestrictionsStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	restrictions := util.ExtractList(message)

	as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		User: entities.ProfilePatch{DietaryRestrictions: restrictions},
	})
	updated := as.SessionService.AdvanceStep(session.ID)

	return as.reply(updated, session, "Entendi! Você tem alguma alergia ou intolerância alimentar? (ex: lactose, amendoim, frutos do mar, etc.) Se não tiver, pode responder \"nenhuma\".")
}

func (as *AssistantService) handleAllergiesStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	allergies := util.ExtractList(message)

	as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		User: entities.ProfilePatch{Allergies: allergies},
	})
	updated := as.SessionService.AdvanceStep(session.ID)

	return as.reply(updated, session, "Perfeito! Há algum alimento que você não gosta ou tem preferência em evitar? Se não houver, pode responder \"nenhuma\".")
}

func (as *AssistantService) handlePreferencesStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	preferences := util.ExtractList(message)

	as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		User: entities.ProfilePatch{Preferences: preferences},
	})
	updated := as.SessionService.AdvanceStep(session.ID)

	return as.reply(updated, session, "Última pergunta! Você tem alguma condição médica relevante que devo considerar? (ex: diabetes, hipertensão, etc.) Se não tiver, pode responder \"nenhuma\".")
}

// handleMedicalConditionsStep is the terminal collecting step: it completes
// the record, stamps the collection time and timezone, and generates the
// final plan synchronously.
func (as *AssistantService) handleMedicalConditionsStep(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	medicalConditions := util.ExtractList(message)

	completed := true
	collectedAt := time.Now().UTC().Format(time.RFC3339)
	timezone := "America/Sao_Paulo"

	updated := as.SessionService.UpdateUserData(session.ID, entities.UserDataPatch{
		Completed:   &completed,
		CollectedAt: &collectedAt,
		User: entities.ProfilePatch{
			MedicalConditions: medicalConditions,
			Timezone:          &timezone,
		},
	})
	as.SessionService.AdvanceStep(session.ID)

	finalUserData := session.UserData
	if updated != nil {
		finalUserData = updated.UserData
	}

	nutritionPlan := as.PlanService.GenerateNutritionPlan(ctx, finalUserData)

	responseText := fmt.Sprintf("Perfeito! Coletei todas as informações necessárias. Aqui está seu plano alimentar personalizado:\n\n%s\n\n%s", nutritionPlan, PdfExportMarker)

	return dto.MessageResponse{
		JSON: &finalUserData,
		Text: responseText,
		Done: true,
	}
}

// handleGeneralQuestion covers any message after the flow is complete.
// Medical requests get a fixed disclaimer without touching the model.
func (as *AssistantService) handleGeneralQuestion(ctx context.Context, session *entities.UserSession, message string) dto.MessageResponse {
	if containsMedicalRequest(message) {
		return as.reply(nil, session, "Importante: Não posso fornecer diagnósticos ou prescrições médicas. Para questões de saúde específicas, recomendo consultar um profissional de saúde qualificado. Posso ajudar com orientações gerais sobre alimentação saudável.")
	}

	systemPrompt := "Você é um assistente nutricional amigável. Responda de forma útil e educativa, mas sempre recomende consultar profissionais de saúde para questões médicas específicas."

	callCtx, cancel := context.WithTimeout(ctx, as.LLMTimeout)
	defer cancel()

	answer, err := as.Generator.Generate(callCtx, systemPrompt, message)
	if err != nil {
		as.Logger.Error(fmt.Sprintf("Error in general conversation: %s", err.Error()))
		return as.reply(nil, session, "Desculpe, não consegui processar sua mensagem. Pode reformular sua pergunta?")
	}

	return as.reply(nil, session, answer)
}

// reply builds a non-terminal response carrying the freshest record known.
func (as *AssistantService) reply(updated *entities.UserSession, session *entities.UserSession, text string) dto.MessageResponse {
	userData := session.UserData
	if updated != nil {
		userData = updated.UserData
	}

	return dto.MessageResponse{
		JSON: &userData,
		Text: text,
		Done: false,
	}
}

func containsMedicalRequest(message string) bool {
	normalized := strings.ToLower(message)
	for _, keyword := range medicalKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

// lockSession serializes message processing per session id so concurrent
// messages for the same session cannot interleave merges.
func (as *AssistantService) lockSession(sessionID string) func() {
	as.locksMu.Lock()
	lock, ok := as.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		as.locks[sessionID] = lock
	}
	lock.refs++
	as.locksMu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		as.locksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(as.locks, sessionID)
		}
		as.locksMu.Unlock()
	}
}
