package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nutrition-assistant/internal/domain/entities"
	"nutrition-assistant/internal/infra/logger"
	"nutrition-assistant/internal/infra/provider"
)

var activityMultipliers = map[string]float64{
	"sedentário": 1.2,
	"leve":       1.375,
	"moderado":   1.55,
	"intenso":    1.725,
}

// PlanService derives the metabolic estimates from a completed record and
// produces the final nutrition plan text, asking the text generator first
// and falling back to a deterministic template when the call fails.
type PlanService struct {
	Logger     *logger.Logger
	Generator  provider.ITextGenerator
	LLMTimeout time.Duration
}

func NewPlanService(logger *logger.Logger, generator provider.ITextGenerator, llmTimeout time.Duration) *PlanService {
	return &PlanService{Logger: logger, Generator: generator, LLMTimeout: llmTimeout}
}

// CalculateBMR estimates the basal metabolic rate with the Mifflin-St Jeor
// equation. Any non-"masculino" sex, including "outro", uses the female
// offset. Returns 0 when weight, height or age is missing.
func CalculateBMR(weightKg int, heightCm int, age int, sex string) float64 {
	if weightKg == 0 || heightCm == 0 || age == 0 {
		return 0
	}

	if sex == "masculino" {
		return 10*float64(weightKg) + 6.25*float64(heightCm) - 5*float64(age) + 5
	}
	return 10*float64(weightKg) + 6.25*float64(heightCm) - 5*float64(age) - 161
}

// CalculateDailyCalories multiplies the basal estimate by the activity
// factor; unknown levels fall back to the sedentary multiplier.
func CalculateDailyCalories(bmr float64, activityLevel string) float64 {
	multiplier, ok := activityMultipliers[activityLevel]
	if !ok {
		multiplier = 1.2
	}
	return bmr * multiplier
}

// GenerateNutritionPlan never fails: when the generative backend errors or
// times out, the deterministic template built from the record is returned.
func (ps *PlanService) GenerateNutritionPlan(ctx context.Context, userData entities.UserData) string {
	user := userData.User

	sex := user.Sex
	if sex == "" {
		sex = "outro"
	}
	bmr := CalculateBMR(intValue(user.WeightKg), intValue(user.HeightCm), intValue(user.Age), sex)
	dailyCalories := CalculateDailyCalories(bmr, user.ActivityLevel)

	systemPrompt := buildPlanSystemPrompt(user, bmr, dailyCalories)
	userPrompt := "Crie um plano alimentar completo e personalizado para este usuário, seguindo todas as instruções e considerando todos os dados fornecidos."

	callCtx, cancel := context.WithTimeout(ctx, ps.LLMTimeout)
	defer cancel()

	plan, err := ps.Generator.Generate(callCtx, systemPrompt, userPrompt)
	if err != nil {
		ps.Logger.Error(fmt.Sprintf("Error generating nutrition plan, using fallback: %s", err.Error()))
		return GenerateFallbackPlan(userData)
	}

	return plan
}

func buildPlanSystemPrompt(user entities.UserProfile, bmr float64, dailyCalories float64) string {
	return fmt.Sprintf(`Você é um nutricionista experiente. Crie um plano alimentar personalizado detalhado e estruturado.

INSTRUÇÕES IMPORTANTES:
- Use linguagem clara e acessível
- Organize o plano de forma estruturada com seções bem definidas
- Inclua horários sugeridos para as refeições
- Considere todas as restrições e preferências informadas
- Forneça alternativas quando possível
- Inclua dicas práticas e motivacionais
- NÃO forneça diagnósticos ou prescrições médicas
- Recomende acompanhamento profissional quando necessário

DADOS DO USUÁRIO:
- Idade: %s anos
- Sexo: %s
- Altura: %s cm
- Peso: %s kg
- Nível de atividade: %s
- Objetivo: %s
- Refeições por dia: %s
- Restrições alimentares: %s
- Alergias: %s
- Preferências/aversões: %s
- Condições médicas: %s
- TMB estimada: %.0f kcal
- Gasto calórico diário estimado: %.0f kcal

ESTRUTURA DO PLANO:
1. RESUMO NUTRICIONAL
2. PLANO ALIMENTAR DIÁRIO
3. SUGESTÕES DE CARDÁPIO SEMANAL
4. DICAS IMPORTANTES
5. RECOMENDAÇÕES GERAIS`,
		numberOr(user.Age, "não informada"),
		stringOr(user.Sex, "não informado"),
		numberOr(user.HeightCm, "não informada"),
		numberOr(user.WeightKg, "não informado"),
		stringOr(user.ActivityLevel, "não informado"),
		stringOr(user.Goal, "não informado"),
		numberOr(user.MealsPerDay, "não informado"),
		listOrNenhuma(user.DietaryRestrictions),
		listOrNenhuma(user.Allergies),
		listOrNenhuma(user.Preferences),
		listOrNenhuma(user.MedicalConditions),
		bmr,
		dailyCalories,
	)
}

// GenerateFallbackPlan builds a fully templated plan from the record alone,
// so the flow still completes when the generative backend is unavailable.
func GenerateFallbackPlan(userData entities.UserData) string {
	user := userData.User

	goal := user.Goal
	if goal == "" {
		goal = "Melhoria da saúde geral"
	}
	meals := intValue(user.MealsPerDay)
	if meals == 0 {
		meals = 4
	}
	activity := user.ActivityLevel
	if activity == "" {
		activity = "moderado"
	}

	return fmt.Sprintf(`# PLANO ALIMENTAR PERSONALIZADO

## 📊 RESUMO NUTRICIONAL
- **Objetivo**: %s
- **Refeições diárias**: %d refeições
- **Nível de atividade**: %s

## 🍽️ PLANO ALIMENTAR DIÁRIO

### Café da Manhã (7h-8h)
- Fonte de carboidrato: aveia, pães integrais ou frutas
- Proteína: ovos, iogurte grego ou queijo branco
- Gordura saudável: castanhas ou abacate
- Hidratação: água, chá ou café

### Lanche da Manhã (10h-10h30)
- Fruta + oleaginosa
- Ou iogurte com granola caseira

### Almoço (12h-13h)
- Proteína: carnes magras, peixes ou leguminosas
- Carboidrato: arroz integral, batata doce ou quinoa
- Vegetais: salada variada e legumes refogados
- Gordura: azeite de oliva extravirgem

### Lanche da Tarde (15h-16h)
- Opção 1: Vitamina de frutas com leite
- Opção 2: Sanduíche natural integral
- Opção 3: Mix de castanhas e frutas secas

### Jantar (19h-20h)
- Similar ao almoço, mas com porções menores
- Priorizar preparações mais leves
- Incluir sempre vegetais

## 📅 SUGESTÕES DE CARDÁPIO SEMANAL
- Varie as fontes de proteína ao longo da semana (frango, peixe, ovos, leguminosas)
- Alterne os carboidratos entre arroz integral, batata doce, quinoa e mandioca
- Inclua pelo menos duas porções de peixe por semana
- Reserve um dia para preparar refeições com antecedência

## 💡 DICAS IMPORTANTES

### Hidratação
- Consuma pelo menos 2-3 litros de água por dia
- Inicie o dia com um copo de água

### Preparação
- Prefira alimentos in natura e minimamente processados
- Planeje as refeições com antecedência
- Tenha sempre lanches saudáveis disponíveis

### Horários
- Mantenha intervalos regulares entre as refeições
- Evite ficar mais de 4 horas sem comer
- Faça a última refeição até 3 horas antes de dormir

## ⚠️ RECOMENDAÇÕES GERAIS
- Este plano é uma orientação geral baseada nas informações fornecidas
- Para um acompanhamento personalizado e adequado, consulte um nutricionista
- Em caso de condições médicas específicas, procure orientação médica
- Ajuste as porções conforme sua fome e saciedade
- Implemente gradualmente as mudanças alimentares e monitore como seu corpo responde

*Lembre-se: uma alimentação saudável é um processo gradual. Seja paciente consigo mesmo!*`,
		goal, meals, activity)
}

func intValue(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

func numberOr(value *int, fallback string) string {
	if value == nil || *value == 0 {
		return fallback
	}
	return fmt.Sprintf("%d", *value)
}

func stringOr(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func listOrNenhuma(items []string) string {
	if len(items) == 0 {
		return "nenhuma"
	}
	return strings.Join(items, ", ")
}
