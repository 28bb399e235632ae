package session

import (
	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
)

// Accessors return copies; callers never alias session state.

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseLocked()
}

func (s *Session) RequestState(action Action) RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.requests[action]; ok {
		return st
	}
	return Idle
}

func (s *Session) User() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

func (s *Session) Goals() (model.UserGoals, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.goals == nil {
		return model.UserGoals{}, false
	}
	return *s.goals, true
}

func (s *Session) Logs() []model.DailyLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nutrition.CloneLogs(s.logs)
}

// TodayLog returns today's log without creating it; a missing log reads as empty.
func (s *Session) TodayLog() model.DailyLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.todayLogLocked()
}

func (s *Session) todayLogLocked() model.DailyLog {
	date := nutrition.TodayKey(s.now())
	if i := nutrition.FindLog(s.logs, date); i >= 0 {
		return nutrition.CloneLogs(s.logs[i : i+1])[0]
	}
	return nutrition.NewDailyLog(date)
}

func (s *Session) WeightHistory() []model.WeightEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.WeightEntry{}, s.weights...)
}

func (s *Session) ChatHistory() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChatMessage{}, s.chat...)
}

// Today summarizes today's log against the current goals. Without goals
// every target reads as zero.
func (s *Session) Today() nutrition.DaySummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var goals model.UserGoals
	if s.goals != nil {
		goals = *s.goals
	}
	return nutrition.Summarize(s.todayLogLocked(), goals)
}

// History returns per-day calorie totals for the most recent days.
func (s *Session) History(days int) []nutrition.HistoryPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nutrition.CalorieHistory(s.logs, days)
}

// State is a point-in-time copy of everything the session owns.
type State struct {
	Phase         Phase                   `json:"phase"`
	Theme         model.Theme             `json:"theme"`
	User          *model.User             `json:"user"`
	UserGoals     *model.UserGoals        `json:"userGoals"`
	DailyLogs     []model.DailyLog        `json:"dailyLogs"`
	WeightHistory []model.WeightEntry     `json:"weightHistory"`
	ChatHistory   []model.ChatMessage     `json:"chatHistory"`
	Requests      map[Action]RequestState `json:"requests"`
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Phase:         s.phaseLocked(),
		Theme:         s.theme,
		DailyLogs:     nutrition.CloneLogs(s.logs),
		WeightHistory: append([]model.WeightEntry{}, s.weights...),
		ChatHistory:   append([]model.ChatMessage{}, s.chat...),
		Requests:      make(map[Action]RequestState, len(Actions)),
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	if s.goals != nil {
		g := *s.goals
		st.UserGoals = &g
	}
	for _, a := range Actions {
		st.Requests[a] = Idle
		if v, ok := s.requests[a]; ok {
			st.Requests[a] = v
		}
	}
	return st
}
