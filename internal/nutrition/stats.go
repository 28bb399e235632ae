package nutrition

import (
	"sort"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
)

type Stats struct {
	ConsumedCalories float64 `json:"consumed_calories"`
	BurnedCalories   float64 `json:"burned_calories"`
}

type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// DaySummary is everything the dashboard shows for a single date.
type DaySummary struct {
	Date              string  `json:"date"`
	ConsumedCalories  float64 `json:"consumed_calories"`
	BurnedCalories    float64 `json:"burned_calories"`
	NetCalories       float64 `json:"net_calories"`
	GoalCalories      float64 `json:"goal_calories"`
	RemainingCalories float64 `json:"remaining_calories"`
	PercentOfGoal     float64 `json:"percent_of_goal"`
	OverGoal          bool    `json:"over_goal"`
	Band              Band    `json:"band"`
	Macros            Macros  `json:"macros"`
	GoalMacros        Macros  `json:"goal_macros"`
	RemainingMacros   Macros  `json:"remaining_macros"`
	WaterIntake       int     `json:"water_intake"`
	WaterGoal         int     `json:"water_goal"`
	HydrationRatio    float64 `json:"hydration_ratio"`
	FoodCount         int     `json:"food_count"`
	ExerciseCount     int     `json:"exercise_count"`
}

// Band classifies net intake against the calorie goal.
type Band string

const (
	BandOnTrack Band = "on_track"
	BandOver    Band = "over"
	BandWayOver Band = "way_over"
)

type HistoryPoint struct {
	Date     string  `json:"date"`
	Consumed float64 `json:"consumed"`
	Burned   float64 `json:"burned"`
	Net      float64 `json:"net"`
}

func DailyStats(log model.DailyLog) Stats {
	var s Stats
	for _, m := range model.MealTypes {
		for _, item := range log.Meals[m] {
			s.ConsumedCalories += item.Calories
		}
	}
	for _, e := range log.Exercises {
		s.BurnedCalories += e.CaloriesBurned
	}
	return s
}

// NetRemaining is goal - (consumed - burned). A negative result means the goal
// is exceeded, which is a normal state.
func NetRemaining(consumed, burned, goal float64) float64 {
	return goal - (consumed - burned)
}

func MacroTotals(log model.DailyLog) Macros {
	var m Macros
	for _, meal := range model.MealTypes {
		for _, item := range log.Meals[meal] {
			m.ProteinG += item.Protein
			m.CarbsG += item.Carbs
			m.FatG += item.Fat
		}
	}
	return m
}

func HydrationRatio(intake, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	return float64(intake) / float64(goal)
}

func Summarize(log model.DailyLog, goals model.UserGoals) DaySummary {
	stats := DailyStats(log)
	macros := MacroTotals(log)
	net := stats.ConsumedCalories - stats.BurnedCalories
	out := DaySummary{
		Date:              log.Date,
		ConsumedCalories:  stats.ConsumedCalories,
		BurnedCalories:    stats.BurnedCalories,
		NetCalories:       net,
		GoalCalories:      goals.DailyCalorieGoal,
		RemainingCalories: NetRemaining(stats.ConsumedCalories, stats.BurnedCalories, goals.DailyCalorieGoal),
		Macros:            macros,
		GoalMacros: Macros{
			ProteinG: goals.DailyProteinGoal,
			CarbsG:   goals.DailyCarbsGoal,
			FatG:     goals.DailyFatGoal,
		},
		RemainingMacros: Macros{
			ProteinG: goals.DailyProteinGoal - macros.ProteinG,
			CarbsG:   goals.DailyCarbsGoal - macros.CarbsG,
			FatG:     goals.DailyFatGoal - macros.FatG,
		},
		WaterIntake:    log.WaterIntake,
		WaterGoal:      goals.DailyWaterGoal,
		HydrationRatio: HydrationRatio(log.WaterIntake, goals.DailyWaterGoal),
		ExerciseCount:  len(log.Exercises),
	}
	for _, m := range model.MealTypes {
		out.FoodCount += len(log.Meals[m])
	}
	if goals.DailyCalorieGoal > 0 {
		out.PercentOfGoal = net / goals.DailyCalorieGoal * 100
	}
	out.OverGoal = out.RemainingCalories < 0
	switch {
	case out.PercentOfGoal > 110:
		out.Band = BandWayOver
	case out.PercentOfGoal > 100:
		out.Band = BandOver
	default:
		out.Band = BandOnTrack
	}
	return out
}

// CalorieHistory returns per-day totals for the most recent days logs, oldest first.
func CalorieHistory(logs []model.DailyLog, days int) []HistoryPoint {
	sorted := append([]model.DailyLog{}, logs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	if days > 0 && len(sorted) > days {
		sorted = sorted[len(sorted)-days:]
	}
	out := make([]HistoryPoint, 0, len(sorted))
	for _, l := range sorted {
		s := DailyStats(l)
		out = append(out, HistoryPoint{
			Date:     l.Date,
			Consumed: s.ConsumedCalories,
			Burned:   s.BurnedCalories,
			Net:      s.ConsumedCalories - s.BurnedCalories,
		})
	}
	return out
}
