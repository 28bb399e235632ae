package nutrition

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
)

const DateLayout = "2006-01-02"

// TodayKey returns the local calendar date of now. Callers pass time.Now() on
// every use so a session that runs across midnight rolls over.
func TodayKey(now time.Time) string {
	return now.Local().Format(DateLayout)
}

func NewDailyLog(date string) model.DailyLog {
	meals := make(map[model.MealType][]model.FoodItem, len(model.MealTypes))
	for _, m := range model.MealTypes {
		meals[m] = []model.FoodItem{}
	}
	return model.DailyLog{
		Date:      date,
		Meals:     meals,
		Exercises: []model.ExerciseItem{},
	}
}

// EnsureTodayLog returns logs with a log for date present and the index of
// that log. Calling it again with the same date never adds a second log.
func EnsureTodayLog(logs []model.DailyLog, date string) ([]model.DailyLog, int) {
	if i := FindLog(logs, date); i >= 0 {
		return logs, i
	}
	logs = append(logs, NewDailyLog(date))
	return logs, len(logs) - 1
}

func FindLog(logs []model.DailyLog, date string) int {
	for i := range logs {
		if logs[i].Date == date {
			return i
		}
	}
	return -1
}

// AddFoodsToMeal appends items to the meal slot. Items are not deduplicated or validated.
func AddFoodsToMeal(log model.DailyLog, meal model.MealType, items []model.FoodItem) model.DailyLog {
	out := cloneLog(log)
	out.Meals[meal] = append(out.Meals[meal], items...)
	return out
}

func AddExercise(log model.DailyLog, item model.ExerciseItem) model.DailyLog {
	out := cloneLog(log)
	out.Exercises = append(out.Exercises, item)
	return out
}

// AdjustWater never drives the glass count below zero. Large deltas saturate
// at math.MaxInt instead of wrapping.
func AdjustWater(log model.DailyLog, delta int) model.DailyLog {
	out := cloneLog(log)
	switch {
	case delta > 0 && out.WaterIntake > math.MaxInt-delta:
		out.WaterIntake = math.MaxInt
	case delta < 0 && out.WaterIntake < math.MinInt-delta:
		out.WaterIntake = 0
	default:
		out.WaterIntake += delta
	}
	if out.WaterIntake < 0 {
		out.WaterIntake = 0
	}
	return out
}

// UpsertWeight replaces the entry with the same date or appends a new one,
// then sorts ascending by date.
func UpsertWeight(history []model.WeightEntry, entry model.WeightEntry) []model.WeightEntry {
	out := make([]model.WeightEntry, 0, len(history)+1)
	replaced := false
	for _, e := range history {
		if e.Date == entry.Date {
			e.Weight = entry.Weight
			replaced = true
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, entry)
	}
	// ISO dates sort lexicographically.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

func ParseMealType(value string) (model.MealType, error) {
	v := strings.TrimSpace(value)
	if strings.EqualFold(v, "snack") {
		v = "snacks"
	}
	mt := model.MealType(cases.Title(language.English).String(strings.ToLower(v)))
	for _, m := range model.MealTypes {
		if m == mt {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid meal %q (use breakfast, lunch, dinner, or snacks)", value)
}

func ValidDate(date string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(date)); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return nil
}

func cloneLog(log model.DailyLog) model.DailyLog {
	out := log
	out.Meals = make(map[model.MealType][]model.FoodItem, len(model.MealTypes))
	for _, m := range model.MealTypes {
		out.Meals[m] = append([]model.FoodItem{}, log.Meals[m]...)
	}
	out.Exercises = append([]model.ExerciseItem{}, log.Exercises...)
	return out
}

// CloneLogs deep-copies a log collection so callers cannot alias session state.
func CloneLogs(logs []model.DailyLog) []model.DailyLog {
	out := make([]model.DailyLog, len(logs))
	for i := range logs {
		out[i] = cloneLog(logs[i])
	}
	return out
}
