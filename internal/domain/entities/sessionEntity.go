package entities

import "time"

// QuestionStep is the position of a session inside the fixed intake sequence.
// Steps only move forward and never pass StepComplete.
type QuestionStep int

const (
	StepPermission QuestionStep = iota
	StepAge
	StepSex
	StepHeight
	StepWeight
	StepActivityLevel
	StepGoal
	StepMealsPerDay
	StepDietaryRestrictions
	StepAllergies
	StepPreferences
	StepMedicalConditions
	StepComplete
)

type UserSession struct {
	ID                  string                `json:"id"`
	CreatedAt           time.Time             `json:"createdAt"`
	LastActivity        time.Time             `json:"lastActivity"`
	UserData            UserData              `json:"userData"`
	ConversationHistory []ConversationMessage `json:"conversationHistory"`
	CurrentStep         QuestionStep          `json:"currentStep"`
}

type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type UserData struct {
	Completed   bool        `json:"completed"`
	CollectedAt string      `json:"collected_at,omitempty"`
	User        UserProfile `json:"user"`
}

// UserProfile accumulates the answers collected across the intake steps.
// Numeric fields are pointers so "not yet answered" is distinguishable from
// zero; the list fields are always present (empty, never absent).
type UserProfile struct {
	Age                 *int     `json:"age,omitempty"`
	Sex                 string   `json:"sex,omitempty"`
	HeightCm            *int     `json:"height_cm,omitempty"`
	WeightKg            *int     `json:"weight_kg,omitempty"`
	ActivityLevel       string   `json:"activity_level,omitempty"`
	Goal                string   `json:"goal,omitempty"`
	MealsPerDay         *int     `json:"meals_per_day,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           []string `json:"allergies"`
	Preferences         []string `json:"preferences"`
	MedicalConditions   []string `json:"medical_conditions"`
	Timezone            string   `json:"timezone,omitempty"`
}

// UserDataPatch is a partial update applied by the session store. A nil
// field means "leave unchanged"; a non-nil slice means "set", so an empty
// answer like "nenhuma" still overwrites with an empty list.
type UserDataPatch struct {
	Completed   *bool
	CollectedAt *string
	User        ProfilePatch
}

type ProfilePatch struct {
	Age                 *int
	Sex                 *string
	HeightCm            *int
	WeightKg            *int
	ActivityLevel       *string
	Goal                *string
	MealsPerDay         *int
	DietaryRestrictions []string
	Allergies           []string
	Preferences         []string
	MedicalConditions   []string
	Timezone            *string
}
