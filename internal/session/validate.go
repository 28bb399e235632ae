package session

import (
	"fmt"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
)

func validMeal(m model.MealType) bool {
	for _, v := range model.MealTypes {
		if v == m {
			return true
		}
	}
	return false
}

func positive(v float64) bool {
	return nutrition.Finite(v) && v > 0
}

func nonNegative(v float64) bool {
	return nutrition.Finite(v) && v >= 0
}

func validateProfile(p model.Profile) error {
	if !positive(p.CurrentWeight) {
		return fmt.Errorf("current weight must be > 0")
	}
	if !positive(p.GoalWeight) {
		return fmt.Errorf("goal weight must be > 0")
	}
	if !positive(p.Height) {
		return fmt.Errorf("height must be > 0")
	}
	if p.Age <= 0 {
		return fmt.Errorf("age must be > 0")
	}
	switch p.Gender {
	case model.GenderMale, model.GenderFemale:
	default:
		return fmt.Errorf("invalid gender %q (use male or female)", p.Gender)
	}
	switch p.ActivityLevel {
	case model.ActivitySedentary, model.ActivityLight, model.ActivityModerate, model.ActivityActive, model.ActivityVeryActive:
	default:
		return fmt.Errorf("invalid activity level %q", p.ActivityLevel)
	}
	return nil
}

func validateGoals(g model.UserGoals) error {
	if err := validateProfile(g.Profile()); err != nil {
		return err
	}
	if !positive(g.DailyCalorieGoal) || !positive(g.DailyProteinGoal) || !positive(g.DailyCarbsGoal) || !positive(g.DailyFatGoal) {
		return fmt.Errorf("daily goals must be > 0")
	}
	if g.DailyWaterGoal <= 0 {
		return fmt.Errorf("daily water goal must be > 0")
	}
	return nil
}

// validateFoodItem rejects values that could not be persisted or summed.
func validateFoodItem(item model.FoodItem) error {
	for field, v := range map[string]float64{
		"calories":    item.Calories,
		"protein":     item.Protein,
		"carbs":       item.Carbs,
		"fat":         item.Fat,
		"servingSize": item.ServingSize,
	} {
		if !nonNegative(v) {
			return fmt.Errorf("%s must be a finite number >= 0", field)
		}
	}
	return nil
}
