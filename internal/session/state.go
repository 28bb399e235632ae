package session

import (
	"errors"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
)

var (
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrNotOnboarded     = errors.New("onboarding not completed")
	ErrAlreadyOnboarded = errors.New("onboarding already completed")
	ErrInFlight         = errors.New("request already in flight")
)

// Phase is the session-level state, derived from whether a user and goals exist.
type Phase string

const (
	PhaseLoggedOut  Phase = "logged_out"
	PhaseOnboarding Phase = "onboarding"
	PhaseActive     Phase = "active"
)

// Action names an AI-backed operation that carries its own request state.
type Action string

const (
	ActionSearch   Action = "search"
	ActionScan     Action = "scan"
	ActionExercise Action = "exercise"
	ActionOnboard  Action = "onboard"
	ActionCoach    Action = "coach"
	ActionAnalysis Action = "analysis"
)

// Actions lists every guarded action.
var Actions = []Action{ActionSearch, ActionScan, ActionExercise, ActionOnboard, ActionCoach, ActionAnalysis}

type RequestState string

const (
	Idle      RequestState = "idle"
	InFlight  RequestState = "in_flight"
	Succeeded RequestState = "succeeded"
	Failed    RequestState = "failed"
)

// FallbackTargets apply when goal computation is unavailable.
var FallbackTargets = model.GoalTargets{
	DailyCalorieGoal: 2000,
	DailyProteinGoal: 150,
	DailyCarbsGoal:   200,
	DailyFatGoal:     60,
	DailyWaterGoal:   8,
}

// MockUser is the identity every login produces; there is no real sign-in.
func MockUser() model.User {
	return model.User{
		ID:    "google-123",
		Name:  "Auranut Explorer",
		Email: "hello@auranut.ai",
		Photo: model.Some("https://ui-avatars.com/api/?name=Auranut+Explorer&background=3b82f6&color=fff"),
	}
}
