package session_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/session"
	"github.com/arhaangamer7865-design/Auranut/internal/store"
)

type fakeGateway struct {
	mu sync.Mutex

	foods    []model.FoodItem
	scanned  *model.FoodItem
	burned   *float64
	targets  *model.GoalTargets
	reply    string
	analysis string

	// block, when set, holds EstimateCaloriesBurned until it is closed.
	block   chan struct{}
	started chan struct{}

	lastWeight  float64
	lastHistory []model.ChatMessage
	lastLogs    []model.DailyLog
}

func (f *fakeGateway) LookupFoodByName(ctx context.Context, query string) []model.FoodItem {
	return f.foods
}

func (f *fakeGateway) LookupFoodByImage(ctx context.Context, image []byte, mimeType string) *model.FoodItem {
	return f.scanned
}

func (f *fakeGateway) EstimateCaloriesBurned(ctx context.Context, activity string, duration float64, unit model.DurationUnit, bodyWeightKg float64) *float64 {
	f.mu.Lock()
	f.lastWeight = bodyWeightKg
	f.mu.Unlock()
	if f.block != nil {
		close(f.started)
		<-f.block
	}
	return f.burned
}

func (f *fakeGateway) ComputeInitialGoals(ctx context.Context, profile model.Profile) *model.GoalTargets {
	return f.targets
}

func (f *fakeGateway) ChatReply(ctx context.Context, history []model.ChatMessage, message string, goals model.UserGoals, today model.DailyLog) string {
	f.lastHistory = history
	return f.reply
}

func (f *fakeGateway) DeepAnalysis(ctx context.Context, logs []model.DailyLog, goals model.UserGoals) string {
	f.lastLogs = logs
	return f.analysis
}

func floatPtr(v float64) *float64 { return &v }

var testNow = time.Date(2026, 2, 20, 9, 30, 0, 0, time.Local)

var testUser = model.User{ID: "google-123", Name: "Auranut Explorer", Email: "hello@auranut.ai"}

var testProfile = model.Profile{
	CurrentWeight: 80,
	GoalWeight:    75,
	Height:        180,
	Age:           30,
	Gender:        model.GenderMale,
	ActivityLevel: model.ActivityModerate,
}

func newTestSession(t *testing.T, kv store.KV, gw session.Gateway) *session.Session {
	t.Helper()
	n := 0
	s := session.New(kv, gw,
		session.WithClock(func() time.Time { return testNow }),
		session.WithIDFunc(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Load()
	return s
}

func activeSession(t *testing.T, kv store.KV, gw *fakeGateway) *session.Session {
	t.Helper()
	s := newTestSession(t, kv, gw)
	require.NoError(t, s.Login(context.Background(), testUser))
	require.NoError(t, s.CompleteOnboarding(testProfile.WithTargets(model.GoalTargets{
		DailyCalorieGoal: 2000, DailyProteinGoal: 150, DailyCarbsGoal: 200, DailyFatGoal: 60, DailyWaterGoal: 8,
	})))
	return s
}

func TestFreshSessionFlowReportsRemainingCalories(t *testing.T) {
	t.Parallel()

	kv := store.NewMemory()
	s := newTestSession(t, kv, &fakeGateway{})
	assert.Equal(t, session.PhaseLoggedOut, s.Phase())

	require.NoError(t, s.Login(context.Background(), testUser))
	assert.Equal(t, session.PhaseOnboarding, s.Phase())

	require.NoError(t, s.CompleteOnboarding(testProfile.WithTargets(session.FallbackTargets)))
	assert.Equal(t, session.PhaseActive, s.Phase())

	added, err := s.LogFood(model.Breakfast, []model.FoodItem{{Name: "Toast", Calories: 500}})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "id-1", added[0].ID)

	today := s.Today()
	assert.Equal(t, "2026-02-20", today.Date)
	assert.Equal(t, 500.0, today.ConsumedCalories)
	assert.Equal(t, 0.0, today.BurnedCalories)
	assert.Equal(t, 1500.0, today.RemainingCalories)

	reloaded := newTestSession(t, kv, &fakeGateway{})
	assert.Equal(t, session.PhaseActive, reloaded.Phase())
	assert.Equal(t, 1500.0, reloaded.Today().RemainingCalories)
}

func TestPhaseGuards(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, store.NewMemory(), &fakeGateway{})
	_, err := s.LogFood(model.Lunch, []model.FoodItem{{Name: "Soup"}})
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
	_, err = s.AdjustWater(1)
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)

	require.NoError(t, s.Login(context.Background(), testUser))
	_, err = s.LogWeight(80)
	assert.ErrorIs(t, err, session.ErrNotOnboarded)
	_, err = s.RequestDeepAnalysis(context.Background())
	assert.ErrorIs(t, err, session.ErrNotOnboarded)

	require.NoError(t, s.CompleteOnboarding(testProfile.WithTargets(session.FallbackTargets)))
	err = s.CompleteOnboarding(testProfile.WithTargets(session.FallbackTargets))
	assert.ErrorIs(t, err, session.ErrAlreadyOnboarded)
}

func TestLogoutClearsEverything(t *testing.T) {
	t.Parallel()

	kv := store.NewMemory()
	gw := &fakeGateway{reply: "Nice work."}
	s := activeSession(t, kv, gw)
	_, err := s.LogFood(model.Dinner, []model.FoodItem{{Name: "Pasta", Calories: 700}})
	require.NoError(t, err)
	_, err = s.LogWeight(79)
	require.NoError(t, err)
	_, err = s.Ask(context.Background(), "how am I doing?")
	require.NoError(t, err)
	require.NoError(t, s.SetTheme(model.ThemeDark))

	assert.False(t, s.Logout(func() bool { return false }))
	assert.Equal(t, session.PhaseActive, s.Phase())

	assert.True(t, s.Logout(func() bool { return true }))
	_, ok := s.User()
	assert.False(t, ok)
	_, ok = s.Goals()
	assert.False(t, ok)
	assert.Empty(t, s.Logs())
	assert.Empty(t, s.WeightHistory())
	assert.Empty(t, s.ChatHistory())
	assert.Equal(t, model.ThemeLight, s.Theme())
	assert.Equal(t, session.PhaseLoggedOut, s.Phase())

	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLogExerciseUsesCurrentWeight(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{burned: floatPtr(320)}
	s := activeSession(t, store.NewMemory(), gw)

	item, err := s.LogExercise(context.Background(), "Running", 30, model.Minutes)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 320.0, item.CaloriesBurned)
	assert.Equal(t, 80.0, gw.lastWeight)
	assert.Equal(t, session.Succeeded, s.RequestState(session.ActionExercise))

	today := s.Today()
	assert.Equal(t, 320.0, today.BurnedCalories)
	assert.Equal(t, 2320.0, today.RemainingCalories)
}

func TestLogExerciseUnavailableLeavesLogUnchanged(t *testing.T) {
	t.Parallel()

	s := activeSession(t, store.NewMemory(), &fakeGateway{burned: nil})

	item, err := s.LogExercise(context.Background(), "Cycling", 1, model.Hours)
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.Empty(t, s.TodayLog().Exercises)
	assert.Equal(t, session.Failed, s.RequestState(session.ActionExercise))
}

func TestLogExerciseValidatesInput(t *testing.T) {
	t.Parallel()

	s := activeSession(t, store.NewMemory(), &fakeGateway{burned: floatPtr(10)})
	_, err := s.LogExercise(context.Background(), " ", 10, model.Minutes)
	assert.ErrorContains(t, err, "name is required")
	_, err = s.LogExercise(context.Background(), "Walk", 0, model.Minutes)
	assert.ErrorContains(t, err, "duration must be > 0")
	_, err = s.LogExercise(context.Background(), "Walk", 10, "days")
	assert.ErrorContains(t, err, "invalid duration unit")
	assert.Equal(t, session.Idle, s.RequestState(session.ActionExercise))
}

func TestInFlightGuardRejectsDuplicate(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{burned: floatPtr(100), block: make(chan struct{}), started: make(chan struct{})}
	s := activeSession(t, store.NewMemory(), gw)

	done := make(chan error, 1)
	go func() {
		_, err := s.LogExercise(context.Background(), "Swim", 20, model.Minutes)
		done <- err
	}()
	<-gw.started
	assert.Equal(t, session.InFlight, s.RequestState(session.ActionExercise))

	_, err := s.LogExercise(context.Background(), "Swim", 20, model.Minutes)
	assert.ErrorIs(t, err, session.ErrInFlight)

	close(gw.block)
	require.NoError(t, <-done)
	assert.Equal(t, session.Succeeded, s.RequestState(session.ActionExercise))
	assert.Len(t, s.TodayLog().Exercises, 1)
}

func TestLogWeightUpsertsAndUpdatesCurrentWeight(t *testing.T) {
	t.Parallel()

	kv := store.NewMemory()
	require.NoError(t, store.Save(kv, store.KeyWeightHistory, []model.WeightEntry{
		{Date: "2026-02-19", Weight: 81},
		{Date: "2026-02-20", Weight: 80},
	}))
	s := activeSession(t, kv, &fakeGateway{})

	entry, err := s.LogWeight(78)
	require.NoError(t, err)
	assert.Equal(t, model.WeightEntry{Date: "2026-02-20", Weight: 78}, entry)

	history := s.WeightHistory()
	require.Len(t, history, 2)
	assert.Equal(t, 78.0, history[1].Weight)
	goals, _ := s.Goals()
	assert.Equal(t, 78.0, goals.CurrentWeight)

	_, err = s.LogWeight(0)
	assert.ErrorContains(t, err, "weight must be > 0")
}

func TestAdjustWaterClampsAtZero(t *testing.T) {
	t.Parallel()

	s := activeSession(t, store.NewMemory(), &fakeGateway{})
	n, err := s.AdjustWater(2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = s.AdjustWater(-1000)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, s.Logs(), 1)
}

func TestOnboardUsesFallbackTargets(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, store.NewMemory(), &fakeGateway{targets: nil})
	require.NoError(t, s.Login(context.Background(), testUser))

	goals, usedFallback, err := s.Onboard(context.Background(), testProfile)
	require.NoError(t, err)
	assert.True(t, usedFallback)
	assert.Equal(t, 2000.0, goals.DailyCalorieGoal)
	assert.Equal(t, 8, goals.DailyWaterGoal)
	assert.Equal(t, 80.0, goals.CurrentWeight)
	assert.Equal(t, session.PhaseActive, s.Phase())
}

func TestOnboardUsesComputedTargets(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{targets: &model.GoalTargets{DailyCalorieGoal: 2300, DailyProteinGoal: 170, DailyCarbsGoal: 250, DailyFatGoal: 75, DailyWaterGoal: 9.4}}
	s := newTestSession(t, store.NewMemory(), gw)
	require.NoError(t, s.Login(context.Background(), testUser))

	goals, usedFallback, err := s.Onboard(context.Background(), testProfile)
	require.NoError(t, err)
	assert.False(t, usedFallback)
	assert.Equal(t, 2300.0, goals.DailyCalorieGoal)
	assert.Equal(t, 9, goals.DailyWaterGoal)

	bad := testProfile
	bad.Gender = "other"
	_, _, err = newTestSession(t, store.NewMemory(), gw).Onboard(context.Background(), bad)
	assert.ErrorContains(t, err, "invalid gender")
}

func TestSearchAndScanReportUnavailable(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	s := activeSession(t, store.NewMemory(), gw)

	items, err := s.SearchFood(context.Background(), "apple")
	require.NoError(t, err)
	assert.Nil(t, items)
	assert.Equal(t, session.Failed, s.RequestState(session.ActionSearch))

	gw.foods = []model.FoodItem{{ID: "a", Name: "Apple", Calories: 95}}
	items, err = s.SearchFood(context.Background(), "apple")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, session.Succeeded, s.RequestState(session.ActionSearch))

	item, err := s.ScanFood(context.Background(), []byte{1, 2}, "image/png")
	require.NoError(t, err)
	assert.Nil(t, item)
	_, err = s.ScanFood(context.Background(), nil, "image/png")
	assert.ErrorContains(t, err, "image is empty")
}

func TestAskRecordsBothTurns(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{reply: "Drink more water."}
	s := activeSession(t, store.NewMemory(), gw)

	reply, err := s.Ask(context.Background(), "tips?")
	require.NoError(t, err)
	assert.Equal(t, model.RoleModel, reply.Role)
	assert.Empty(t, gw.lastHistory)

	_, err = s.Ask(context.Background(), "more?")
	require.NoError(t, err)
	require.Len(t, gw.lastHistory, 2)

	chat := s.ChatHistory()
	require.Len(t, chat, 4)
	assert.Equal(t, model.RoleUser, chat[0].Role)
	assert.Equal(t, "tips?", chat[0].Text)
	assert.Equal(t, testNow.UnixMilli(), chat[0].Timestamp)

	assert.False(t, s.ClearChat(func() bool { return false }))
	assert.True(t, s.ClearChat(func() bool { return true }))
	assert.Empty(t, s.ChatHistory())
}

func TestRequestDeepAnalysisPassesLogs(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{analysis: "Protein is low."}
	s := activeSession(t, store.NewMemory(), gw)
	_, err := s.AdjustWater(1)
	require.NoError(t, err)

	report, err := s.RequestDeepAnalysis(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Protein is low.", report)
	assert.Len(t, gw.lastLogs, 1)
}

func TestThemeToggleAndPersist(t *testing.T) {
	t.Parallel()

	kv := store.NewMemory()
	s := newTestSession(t, kv, &fakeGateway{})
	assert.Equal(t, model.ThemeLight, s.Theme())
	assert.Equal(t, model.ThemeDark, s.ToggleTheme())
	assert.Equal(t, model.ThemeDark, newTestSession(t, kv, &fakeGateway{}).Theme())
	assert.Error(t, s.SetTheme("sepia"))
}

func TestPersistFailureKeepsMemory(t *testing.T) {
	t.Parallel()

	kv := store.NewMemory()
	s := activeSession(t, kv, &fakeGateway{})
	kv.FailWrites = errors.New("disk full")

	n, err := s.AdjustWater(3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, s.TodayLog().WaterIntake)
}

func TestLoadIgnoresCorruptSlice(t *testing.T) {
	t.Parallel()

	kv := store.NewMemory()
	require.NoError(t, kv.Set(store.KeyDailyLogs, []byte(`{"not":"a list"}`)))
	require.NoError(t, store.Save(kv, store.KeyUser, testUser))

	s := newTestSession(t, kv, &fakeGateway{})
	assert.Empty(t, s.Logs())
	assert.Equal(t, session.PhaseOnboarding, s.Phase())
}

func TestNonFiniteInputsAreRejected(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		kv := store.NewMemory()
		s := activeSession(t, kv, &fakeGateway{burned: floatPtr(100)})

		_, err := s.LogWeight(v)
		assert.ErrorContains(t, err, "weight must be > 0", "weight %v", v)

		_, err = s.LogExercise(context.Background(), "Run", v, model.Minutes)
		assert.ErrorContains(t, err, "duration must be > 0", "duration %v", v)

		_, err = s.LogFood(model.Lunch, []model.FoodItem{{Name: "Rice", Calories: v}})
		assert.ErrorContains(t, err, "calories must be a finite number", "calories %v", v)
		_, err = s.LogFood(model.Lunch, []model.FoodItem{{Name: "Rice", Calories: 200, Fat: v}})
		assert.ErrorContains(t, err, "fat must be a finite number", "fat %v", v)

		goals, ok := s.Goals()
		require.True(t, ok)
		bad := goals
		bad.Height = v
		assert.ErrorContains(t, s.UpdateGoals(bad), "height must be > 0", "height %v", v)
		bad = goals
		bad.DailyCalorieGoal = v
		assert.ErrorContains(t, s.UpdateGoals(bad), "daily goals must be > 0", "calorie goal %v", v)

		after, _ := s.Goals()
		assert.Equal(t, 80.0, after.CurrentWeight)
		assert.Empty(t, s.WeightHistory())
		assert.Empty(t, s.Logs())

		// Everything that reached the store must still decode.
		_, err = store.Load(kv, store.KeyUserGoals, model.UserGoals{})
		require.NoError(t, err)
	}
}

func TestOnboardRejectsNonFiniteProfile(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, store.NewMemory(), &fakeGateway{})
	require.NoError(t, s.Login(context.Background(), testUser))
	p := testProfile
	p.CurrentWeight = math.NaN()
	_, _, err := s.Onboard(context.Background(), p)
	assert.ErrorContains(t, err, "current weight must be > 0")
	assert.Equal(t, session.PhaseOnboarding, s.Phase())
}

func TestLogExerciseIgnoresNonFiniteEstimate(t *testing.T) {
	t.Parallel()

	s := activeSession(t, store.NewMemory(), &fakeGateway{burned: floatPtr(math.Inf(1))})
	item, err := s.LogExercise(context.Background(), "Swim", 20, model.Minutes)
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.Empty(t, s.TodayLog().Exercises)
	assert.Equal(t, session.Failed, s.RequestState(session.ActionExercise))
}

func TestLogFoodAssignsFreshIDs(t *testing.T) {
	t.Parallel()

	s := activeSession(t, store.NewMemory(), &fakeGateway{})
	candidate := model.FoodItem{ID: "search-1", Name: "Banana", Calories: 105, Source: model.SourceSearch}

	first, err := s.LogFood(model.Snacks, []model.FoodItem{candidate})
	require.NoError(t, err)
	second, err := s.LogFood(model.Snacks, []model.FoodItem{candidate, candidate})
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, it := range s.TodayLog().Meals[model.Snacks] {
		assert.NotEqual(t, "search-1", it.ID)
		assert.False(t, ids[it.ID], "duplicate id %s", it.ID)
		ids[it.ID] = true
	}
	assert.Len(t, ids, 3)
	assert.Equal(t, model.SourceSearch, first[0].Source)
	assert.NotEqual(t, second[0].ID, second[1].ID)
}

func TestAdjustWaterSaturates(t *testing.T) {
	t.Parallel()

	s := activeSession(t, store.NewMemory(), &fakeGateway{})
	_, err := s.AdjustWater(1)
	require.NoError(t, err)
	n, err := s.AdjustWater(math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, n)
}
