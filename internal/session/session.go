package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
	"github.com/arhaangamer7865-design/Auranut/internal/store"
)

// Gateway is the AI boundary. Every method reports unavailability through
// nil or a fallback string rather than an error.
type Gateway interface {
	LookupFoodByName(ctx context.Context, query string) []model.FoodItem
	LookupFoodByImage(ctx context.Context, image []byte, mimeType string) *model.FoodItem
	EstimateCaloriesBurned(ctx context.Context, activity string, duration float64, unit model.DurationUnit, bodyWeightKg float64) *float64
	ComputeInitialGoals(ctx context.Context, profile model.Profile) *model.GoalTargets
	ChatReply(ctx context.Context, history []model.ChatMessage, message string, goals model.UserGoals, today model.DailyLog) string
	DeepAnalysis(ctx context.Context, logs []model.DailyLog, goals model.UserGoals) string
}

// Session is the single owner of the user's state. Every mutation updates
// memory first and then writes the changed slice through to the store.
type Session struct {
	mu sync.Mutex

	kv  store.KV
	ai  Gateway
	log *slog.Logger

	now        func() time.Time
	newID      func() string
	loginDelay time.Duration

	theme   model.Theme
	user    *model.User
	goals   *model.UserGoals
	logs    []model.DailyLog
	weights []model.WeightEntry
	chat    []model.ChatMessage

	requests map[Action]RequestState
	// epoch changes on logout so results of calls issued before it are dropped.
	epoch uint64
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDFunc(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func WithLoginDelay(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.loginDelay = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func New(kv store.KV, ai Gateway, opts ...Option) *Session {
	s := &Session{
		kv:       kv,
		ai:       ai,
		log:      slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
		theme:    model.ThemeLight,
		logs:     []model.DailyLog{},
		weights:  []model.WeightEntry{},
		chat:     []model.ChatMessage{},
		requests: map[Action]RequestState{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads every persisted slice. A missing or undecodable slice leaves
// its default in place.
func (s *Session) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = loadSlice(s, store.KeyTheme, model.ThemeLight)
	if s.theme != model.ThemeDark {
		s.theme = model.ThemeLight
	}
	s.user = loadSlice[*model.User](s, store.KeyUser, nil)
	s.goals = loadSlice[*model.UserGoals](s, store.KeyUserGoals, nil)
	s.logs = loadSlice(s, store.KeyDailyLogs, []model.DailyLog{})
	s.weights = loadSlice(s, store.KeyWeightHistory, []model.WeightEntry{})
	s.chat = loadSlice(s, store.KeyChatHistory, []model.ChatMessage{})
	if s.logs == nil {
		s.logs = []model.DailyLog{}
	}
	if s.weights == nil {
		s.weights = []model.WeightEntry{}
	}
	if s.chat == nil {
		s.chat = []model.ChatMessage{}
	}
	for i := range s.logs {
		s.logs[i] = normalizeLog(s.logs[i])
	}
}

func loadSlice[T any](s *Session, key string, fallback T) T {
	v, err := store.Load(s.kv, key, fallback)
	if err != nil {
		s.log.Warn("load state failed", "key", key, "error", err)
		return fallback
	}
	return v
}

// normalizeLog restores empty meal slots dropped by older or hand-edited data.
func normalizeLog(l model.DailyLog) model.DailyLog {
	out := nutrition.NewDailyLog(l.Date)
	for _, m := range model.MealTypes {
		out.Meals[m] = append(out.Meals[m], l.Meals[m]...)
	}
	out.Exercises = append(out.Exercises, l.Exercises...)
	if l.WaterIntake > 0 {
		out.WaterIntake = l.WaterIntake
	}
	return out
}

// persist is best-effort: a failed write is logged and memory is kept.
func (s *Session) persist(key string, value any) {
	if err := store.Save(s.kv, key, value); err != nil {
		s.log.Warn("persist state failed", "key", key, "error", err)
	}
}

func (s *Session) phaseLocked() Phase {
	switch {
	case s.user == nil:
		return PhaseLoggedOut
	case s.goals == nil:
		return PhaseOnboarding
	default:
		return PhaseActive
	}
}

func (s *Session) requireUserLocked() error {
	if s.user == nil {
		return ErrNotLoggedIn
	}
	return nil
}

func (s *Session) requireActiveLocked() error {
	if err := s.requireUserLocked(); err != nil {
		return err
	}
	if s.goals == nil {
		return ErrNotOnboarded
	}
	return nil
}

// begin marks action InFlight and returns the epoch it started in.
func (s *Session) begin(action Action) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requests[action] == InFlight {
		return 0, fmt.Errorf("%s: %w", action, ErrInFlight)
	}
	s.requests[action] = InFlight
	return s.epoch, nil
}

func (s *Session) finish(action Action, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(action, ok)
}

func (s *Session) finishLocked(action Action, ok bool) {
	if ok {
		s.requests[action] = Succeeded
	} else {
		s.requests[action] = Failed
	}
}

// todayIndexLocked makes sure today's log exists and returns its index.
func (s *Session) todayIndexLocked() int {
	logs, i := nutrition.EnsureTodayLog(s.logs, nutrition.TodayKey(s.now()))
	s.logs = logs
	return i
}

// Login sets the user after the configured simulated delay. It always succeeds
// unless ctx is cancelled during the delay.
func (s *Session) Login(ctx context.Context, user model.User) error {
	if s.loginDelay > 0 {
		t := time.NewTimer(s.loginDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("login: %w", ctx.Err())
		case <-t.C:
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.user = &u
	s.persist(store.KeyUser, s.user)
	return nil
}

// Logout resets the whole session, persisted store included, once confirm
// returns true. It reports whether the reset happened.
func (s *Session) Logout(confirm func() bool) bool {
	if confirm == nil || !confirm() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.goals = nil
	s.logs = []model.DailyLog{}
	s.weights = []model.WeightEntry{}
	s.chat = []model.ChatMessage{}
	s.theme = model.ThemeLight
	s.requests = map[Action]RequestState{}
	s.epoch++
	if err := s.kv.Clear(); err != nil {
		s.log.Warn("clear state failed", "error", err)
	}
	return true
}

// CompleteOnboarding sets the goals. It succeeds once per session.
func (s *Session) CompleteOnboarding(goals model.UserGoals) error {
	if err := validateGoals(goals); err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeOnboardingLocked(goals)
}

func (s *Session) completeOnboardingLocked(goals model.UserGoals) error {
	if err := s.requireUserLocked(); err != nil {
		return err
	}
	if s.goals != nil {
		return ErrAlreadyOnboarded
	}
	g := goals
	s.goals = &g
	s.persist(store.KeyUserGoals, s.goals)
	return nil
}

// Onboard computes targets for profile and completes onboarding. When the
// gateway has no answer the fixed fallback targets are used and
// usedFallback is true.
func (s *Session) Onboard(ctx context.Context, profile model.Profile) (goals model.UserGoals, usedFallback bool, err error) {
	if err := validateProfile(profile); err != nil {
		return model.UserGoals{}, false, fmt.Errorf("onboard: %w", err)
	}
	s.mu.Lock()
	err = s.requireUserLocked()
	if err == nil && s.goals != nil {
		err = ErrAlreadyOnboarded
	}
	s.mu.Unlock()
	if err != nil {
		return model.UserGoals{}, false, err
	}

	epoch, err := s.begin(ActionOnboard)
	if err != nil {
		return model.UserGoals{}, false, err
	}
	targets := s.ai.ComputeInitialGoals(ctx, profile)
	if targets == nil {
		s.log.Info("goal computation unavailable, using fallback targets")
		fb := FallbackTargets
		targets = &fb
		usedFallback = true
	}
	goals = profile.WithTargets(*targets)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return model.UserGoals{}, false, ErrNotLoggedIn
	}
	if err := s.completeOnboardingLocked(goals); err != nil {
		s.finishLocked(ActionOnboard, false)
		return model.UserGoals{}, false, err
	}
	s.finishLocked(ActionOnboard, true)
	return goals, usedFallback, nil
}

// UpdateGoals replaces the profile and targets after onboarding.
func (s *Session) UpdateGoals(goals model.UserGoals) error {
	if err := validateGoals(goals); err != nil {
		return fmt.Errorf("update goals: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActiveLocked(); err != nil {
		return err
	}
	g := goals
	s.goals = &g
	s.persist(store.KeyUserGoals, s.goals)
	return nil
}

// LogFood appends items to meal in today's log. Every logged item gets a
// fresh id, so logging the same candidate twice yields two distinct entries.
func (s *Session) LogFood(meal model.MealType, items []model.FoodItem) ([]model.FoodItem, error) {
	if !validMeal(meal) {
		return nil, fmt.Errorf("log food: invalid meal %q", meal)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("log food: at least one item is required")
	}
	for _, item := range items {
		if err := validateFoodItem(item); err != nil {
			return nil, fmt.Errorf("log food: %s: %w", item.Name, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUserLocked(); err != nil {
		return nil, err
	}
	added := make([]model.FoodItem, len(items))
	for i, item := range items {
		item.ID = s.newID()
		if item.Source == "" {
			item.Source = model.SourceDatabase
		}
		added[i] = item
	}
	i := s.todayIndexLocked()
	s.logs[i] = nutrition.AddFoodsToMeal(s.logs[i], meal, added)
	s.persist(store.KeyDailyLogs, s.logs)
	return append([]model.FoodItem{}, added...), nil
}

// SearchFood returns candidates for query. A nil result with a nil error
// means the lookup was unavailable.
func (s *Session) SearchFood(ctx context.Context, query string) ([]model.FoodItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search food: query is required")
	}
	s.mu.Lock()
	err := s.requireUserLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if _, err := s.begin(ActionSearch); err != nil {
		return nil, err
	}
	items := s.ai.LookupFoodByName(ctx, query)
	s.finish(ActionSearch, items != nil)
	return items, nil
}

// ScanFood identifies a food from an image. A nil item with a nil error
// means identification was unavailable.
func (s *Session) ScanFood(ctx context.Context, image []byte, mimeType string) (*model.FoodItem, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("scan food: image is empty")
	}
	s.mu.Lock()
	err := s.requireUserLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if _, err := s.begin(ActionScan); err != nil {
		return nil, err
	}
	item := s.ai.LookupFoodByImage(ctx, image, mimeType)
	s.finish(ActionScan, item != nil)
	return item, nil
}

// LogExercise estimates calories burned at the user's current weight and
// appends the exercise to today's log. When no estimate is available it
// returns (nil, nil) and the log is unchanged.
func (s *Session) LogExercise(ctx context.Context, name string, duration float64, unit model.DurationUnit) (*model.ExerciseItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("log exercise: name is required")
	}
	if !positive(duration) {
		return nil, fmt.Errorf("log exercise: duration must be > 0")
	}
	if unit != model.Minutes && unit != model.Hours {
		return nil, fmt.Errorf("log exercise: invalid duration unit %q (use minutes or hours)", unit)
	}
	s.mu.Lock()
	err := s.requireActiveLocked()
	var weight float64
	if err == nil {
		weight = s.goals.CurrentWeight
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	epoch, err := s.begin(ActionExercise)
	if err != nil {
		return nil, err
	}
	burned := s.ai.EstimateCaloriesBurned(ctx, name, duration, unit, weight)

	s.mu.Lock()
	defer s.mu.Unlock()
	if burned == nil || !nonNegative(*burned) {
		s.finishLocked(ActionExercise, false)
		return nil, nil
	}
	if s.epoch != epoch || s.user == nil {
		return nil, ErrNotLoggedIn
	}
	item := model.ExerciseItem{
		ID:             s.newID(),
		Name:           name,
		Duration:       duration,
		DurationUnit:   unit,
		CaloriesBurned: *burned,
	}
	i := s.todayIndexLocked()
	s.logs[i] = nutrition.AddExercise(s.logs[i], item)
	s.persist(store.KeyDailyLogs, s.logs)
	s.finishLocked(ActionExercise, true)
	return &item, nil
}

// LogWeight records today's weight in kg and makes it the current weight.
func (s *Session) LogWeight(weightKg float64) (model.WeightEntry, error) {
	if !positive(weightKg) {
		return model.WeightEntry{}, fmt.Errorf("log weight: weight must be > 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActiveLocked(); err != nil {
		return model.WeightEntry{}, err
	}
	entry := model.WeightEntry{Date: nutrition.TodayKey(s.now()), Weight: weightKg}
	s.weights = nutrition.UpsertWeight(s.weights, entry)
	s.persist(store.KeyWeightHistory, s.weights)
	s.goals.CurrentWeight = weightKg
	s.persist(store.KeyUserGoals, s.goals)
	return entry, nil
}

// AdjustWater changes today's glass count by delta and returns the new count.
func (s *Session) AdjustWater(delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUserLocked(); err != nil {
		return 0, err
	}
	i := s.todayIndexLocked()
	s.logs[i] = nutrition.AdjustWater(s.logs[i], delta)
	s.persist(store.KeyDailyLogs, s.logs)
	return s.logs[i].WaterIntake, nil
}

// RequestDeepAnalysis returns the analysis report or the fallback text. It
// only errors when the session is not active or an analysis is running.
func (s *Session) RequestDeepAnalysis(ctx context.Context) (string, error) {
	s.mu.Lock()
	err := s.requireActiveLocked()
	var logs []model.DailyLog
	var goals model.UserGoals
	if err == nil {
		logs = nutrition.CloneLogs(s.logs)
		goals = *s.goals
	}
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	if _, err := s.begin(ActionAnalysis); err != nil {
		return "", err
	}
	report := s.ai.DeepAnalysis(ctx, logs, goals)
	s.finish(ActionAnalysis, strings.TrimSpace(report) != "")
	return report, nil
}

// Ask sends message to the coach and records both turns in the chat history.
func (s *Session) Ask(ctx context.Context, message string) (model.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return model.ChatMessage{}, fmt.Errorf("ask coach: message is required")
	}
	s.mu.Lock()
	err := s.requireActiveLocked()
	s.mu.Unlock()
	if err != nil {
		return model.ChatMessage{}, err
	}
	epoch, err := s.begin(ActionCoach)
	if err != nil {
		return model.ChatMessage{}, err
	}

	s.mu.Lock()
	if err := s.requireActiveLocked(); err != nil {
		s.finishLocked(ActionCoach, false)
		s.mu.Unlock()
		return model.ChatMessage{}, err
	}
	history := append([]model.ChatMessage{}, s.chat...)
	s.chat = append(s.chat, model.ChatMessage{Role: model.RoleUser, Text: message, Timestamp: s.now().UnixMilli()})
	s.persist(store.KeyChatHistory, s.chat)
	i := s.todayIndexLocked()
	today := nutrition.CloneLogs(s.logs[i : i+1])[0]
	goals := *s.goals
	s.mu.Unlock()

	text := s.ai.ChatReply(ctx, history, message, goals, today)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return model.ChatMessage{}, ErrNotLoggedIn
	}
	reply := model.ChatMessage{Role: model.RoleModel, Text: text, Timestamp: s.now().UnixMilli()}
	s.chat = append(s.chat, reply)
	s.persist(store.KeyChatHistory, s.chat)
	s.finishLocked(ActionCoach, true)
	return reply, nil
}

// ClearChat empties the chat history once confirm returns true.
func (s *Session) ClearChat(confirm func() bool) bool {
	if confirm == nil || !confirm() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = []model.ChatMessage{}
	s.persist(store.KeyChatHistory, s.chat)
	return true
}

func (s *Session) Theme() model.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Session) SetTheme(theme model.Theme) error {
	if theme != model.ThemeLight && theme != model.ThemeDark {
		return fmt.Errorf("set theme: invalid theme %q (use light or dark)", theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	s.persist(store.KeyTheme, s.theme)
	return nil
}

func (s *Session) ToggleTheme() model.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == model.ThemeDark {
		s.theme = model.ThemeLight
	} else {
		s.theme = model.ThemeDark
	}
	s.persist(store.KeyTheme, s.theme)
	return s.theme
}
