package nutrition_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
)

func TestTodayKeyUsesLocalDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 20, 23, 59, 0, 0, time.Local)
	assert.Equal(t, "2026-02-20", nutrition.TodayKey(now))
	assert.Equal(t, "2026-02-21", nutrition.TodayKey(now.Add(2*time.Minute)))
}

func TestEnsureTodayLogIsIdempotent(t *testing.T) {
	t.Parallel()

	logs, i := nutrition.EnsureTodayLog(nil, "2026-02-20")
	require.Len(t, logs, 1)
	require.Equal(t, 0, i)

	logs, j := nutrition.EnsureTodayLog(logs, "2026-02-20")
	require.Len(t, logs, 1)
	assert.Equal(t, i, j)

	log := logs[0]
	assert.Equal(t, 0, log.WaterIntake)
	assert.Empty(t, log.Exercises)
	for _, m := range model.MealTypes {
		assert.NotNil(t, log.Meals[m], "meal %s", m)
		assert.Empty(t, log.Meals[m])
	}

	logs, k := nutrition.EnsureTodayLog(logs, "2026-02-21")
	assert.Len(t, logs, 2)
	assert.Equal(t, 1, k)
}

func TestDailyStatsSumsEveryMealSlot(t *testing.T) {
	t.Parallel()

	log := nutrition.NewDailyLog("2026-02-20")
	assert.Equal(t, nutrition.Stats{}, nutrition.DailyStats(log))

	log = nutrition.AddFoodsToMeal(log, model.Breakfast, []model.FoodItem{{Name: "Oats", Calories: 300}, {Name: "Milk", Calories: 120}})
	log = nutrition.AddFoodsToMeal(log, model.Lunch, []model.FoodItem{{Name: "Bowl", Calories: 550}})
	log = nutrition.AddFoodsToMeal(log, model.Dinner, []model.FoodItem{{Name: "Salmon", Calories: 480}})
	log = nutrition.AddFoodsToMeal(log, model.Snacks, []model.FoodItem{{Name: "Apple", Calories: 95}})
	log = nutrition.AddExercise(log, model.ExerciseItem{Name: "Run", CaloriesBurned: 320})
	log = nutrition.AddExercise(log, model.ExerciseItem{Name: "Walk", CaloriesBurned: 80})

	stats := nutrition.DailyStats(log)
	assert.Equal(t, 1545.0, stats.ConsumedCalories)
	assert.Equal(t, 400.0, stats.BurnedCalories)
}

func TestAddFoodsToMealAppendsWithoutDedupe(t *testing.T) {
	t.Parallel()

	base := nutrition.NewDailyLog("2026-02-20")
	item := model.FoodItem{ID: "same", Name: "Egg", Calories: 70}
	log := nutrition.AddFoodsToMeal(base, model.Breakfast, []model.FoodItem{item})
	log = nutrition.AddFoodsToMeal(log, model.Breakfast, []model.FoodItem{item})

	require.Len(t, log.Meals[model.Breakfast], 2)
	assert.Empty(t, base.Meals[model.Breakfast], "input log must not be mutated")
}

func TestNetRemaining(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100.0, nutrition.NetRemaining(2200, 300, 2000))
	assert.Equal(t, -500.0, nutrition.NetRemaining(2500, 0, 2000))
}

func TestAdjustWaterNeverNegative(t *testing.T) {
	t.Parallel()

	log := nutrition.NewDailyLog("2026-02-20")
	log = nutrition.AdjustWater(log, 3)
	assert.Equal(t, 3, log.WaterIntake)
	log = nutrition.AdjustWater(log, -1)
	assert.Equal(t, 2, log.WaterIntake)
	assert.Equal(t, 0, nutrition.AdjustWater(log, -1000).WaterIntake)
	assert.Equal(t, 102, nutrition.AdjustWater(log, 100).WaterIntake)
}

func TestAdjustWaterSaturatesInsteadOfWrapping(t *testing.T) {
	t.Parallel()

	log := nutrition.AdjustWater(nutrition.NewDailyLog("2026-02-20"), 1)
	log = nutrition.AdjustWater(log, math.MaxInt)
	assert.Equal(t, math.MaxInt, log.WaterIntake)
	assert.Equal(t, math.MaxInt, nutrition.AdjustWater(log, 5).WaterIntake)
	assert.Equal(t, 0, nutrition.AdjustWater(log, math.MinInt).WaterIntake)

	one := nutrition.AdjustWater(nutrition.NewDailyLog("2026-02-20"), 1)
	assert.Equal(t, 0, nutrition.AdjustWater(one, math.MinInt).WaterIntake)
}

func TestUpsertWeightReplacesSameDate(t *testing.T) {
	t.Parallel()

	history := []model.WeightEntry{{Date: "2024-01-04", Weight: 81}, {Date: "2024-01-05", Weight: 80}}
	out := nutrition.UpsertWeight(history, model.WeightEntry{Date: "2024-01-05", Weight: 78})

	require.Len(t, out, 2)
	assert.Equal(t, model.WeightEntry{Date: "2024-01-05", Weight: 78}, out[1])
	assert.Equal(t, 80.0, history[1].Weight, "input history must not be mutated")
}

func TestUpsertWeightAppendsAndSorts(t *testing.T) {
	t.Parallel()

	history := []model.WeightEntry{{Date: "2024-01-05", Weight: 80}, {Date: "2024-01-09", Weight: 79}}
	out := nutrition.UpsertWeight(history, model.WeightEntry{Date: "2024-01-07", Weight: 79.5})

	require.Len(t, out, 3)
	assert.Equal(t, []string{"2024-01-05", "2024-01-07", "2024-01-09"}, []string{out[0].Date, out[1].Date, out[2].Date})
}

func TestSummarizeReportsRemainingAndBands(t *testing.T) {
	t.Parallel()

	goals := model.UserGoals{DailyCalorieGoal: 2000, DailyProteinGoal: 150, DailyCarbsGoal: 200, DailyFatGoal: 60, DailyWaterGoal: 8}
	log := nutrition.NewDailyLog("2026-02-20")
	log = nutrition.AddFoodsToMeal(log, model.Breakfast, []model.FoodItem{{Calories: 500, Protein: 30, Carbs: 50, Fat: 10}})
	log = nutrition.AdjustWater(log, 4)

	s := nutrition.Summarize(log, goals)
	assert.Equal(t, 500.0, s.ConsumedCalories)
	assert.Equal(t, 1500.0, s.RemainingCalories)
	assert.Equal(t, 120.0, s.RemainingMacros.ProteinG)
	assert.Equal(t, 0.5, s.HydrationRatio)
	assert.Equal(t, nutrition.BandOnTrack, s.Band)
	assert.False(t, s.OverGoal)
	assert.Equal(t, 1, s.FoodCount)

	log = nutrition.AddFoodsToMeal(log, model.Dinner, []model.FoodItem{{Calories: 1750}})
	s = nutrition.Summarize(log, goals)
	assert.Equal(t, -250.0, s.RemainingCalories)
	assert.True(t, s.OverGoal)
	assert.Equal(t, nutrition.BandWayOver, s.Band)
}

func TestHydrationRatioWithoutGoal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, nutrition.HydrationRatio(5, 0))
	assert.Equal(t, 1.25, nutrition.HydrationRatio(10, 8))
}

func TestCalorieHistoryKeepsMostRecentDays(t *testing.T) {
	t.Parallel()

	a := nutrition.AddFoodsToMeal(nutrition.NewDailyLog("2026-02-19"), model.Lunch, []model.FoodItem{{Calories: 900}})
	b := nutrition.AddExercise(nutrition.NewDailyLog("2026-02-20"), model.ExerciseItem{CaloriesBurned: 200})
	c := nutrition.NewDailyLog("2026-02-18")

	points := nutrition.CalorieHistory([]model.DailyLog{b, a, c}, 2)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-02-19", points[0].Date)
	assert.Equal(t, 900.0, points[0].Net)
	assert.Equal(t, -200.0, points[1].Net)
}

func TestParseMealType(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]model.MealType{
		"breakfast": model.Breakfast,
		" LUNCH ":   model.Lunch,
		"Dinner":    model.Dinner,
		"snack":     model.Snacks,
		"snacks":    model.Snacks,
	} {
		got, err := nutrition.ParseMealType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := nutrition.ParseMealType("brunch")
	assert.ErrorContains(t, err, "invalid meal")
}

func TestWeightUnitConversion(t *testing.T) {
	t.Parallel()

	kg, err := nutrition.ToKg(180, "lb")
	require.NoError(t, err)
	assert.InDelta(t, 81.65, kg, 0.01)

	lb, err := nutrition.FromKg(kg, "lbs")
	require.NoError(t, err)
	assert.InDelta(t, 180, lb, 0.0001)

	_, err = nutrition.ToKg(0, "kg")
	assert.ErrorContains(t, err, "weight must be > 0")
	_, err = nutrition.ToKg(80, "stone")
	assert.ErrorContains(t, err, "invalid weight unit")
}

func TestToKgRejectsNonFinite(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := nutrition.ToKg(v, "kg")
		assert.ErrorContains(t, err, "weight must be > 0", "%v", v)
		assert.False(t, nutrition.Finite(v), "%v", v)
	}
	assert.True(t, nutrition.Finite(0))
	assert.True(t, nutrition.Finite(-3.5))
}
