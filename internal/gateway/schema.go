package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/provider/gemini"
)

const maxFoodCandidates = 3

var foodSchema = &gemini.Schema{
	Type: "OBJECT",
	Properties: map[string]*gemini.Schema{
		"name":        {Type: "STRING", Description: "Name of the food item"},
		"calories":    {Type: "NUMBER", Description: "Calories per serving"},
		"protein":     {Type: "NUMBER", Description: "Grams of protein per serving"},
		"carbs":       {Type: "NUMBER", Description: "Grams of carbohydrates per serving"},
		"fat":         {Type: "NUMBER", Description: "Grams of fat per serving"},
		"servingSize": {Type: "NUMBER", Description: "Size of a single serving"},
		"servingUnit": {Type: "STRING", Description: "Unit of the serving size, e.g. g, ml, oz"},
		"emoji":       {Type: "STRING", Description: "One emoji that represents the food"},
	},
	Required: []string{"name", "calories", "protein", "carbs", "fat", "servingSize", "servingUnit", "emoji"},
}

var foodListSchema = &gemini.Schema{Type: "ARRAY", Items: foodSchema}

var caloriesSchema = &gemini.Schema{
	Type:       "OBJECT",
	Properties: map[string]*gemini.Schema{"calories": {Type: "NUMBER"}},
	Required:   []string{"calories"},
}

var goalsSchema = &gemini.Schema{
	Type: "OBJECT",
	Properties: map[string]*gemini.Schema{
		"dailyCalorieGoal": {Type: "NUMBER"},
		"dailyProteinGoal": {Type: "NUMBER"},
		"dailyCarbsGoal":   {Type: "NUMBER"},
		"dailyFatGoal":     {Type: "NUMBER"},
		"dailyWaterGoal":   {Type: "NUMBER"},
	},
	Required: []string{"dailyCalorieGoal", "dailyProteinGoal", "dailyCarbsGoal", "dailyFatGoal", "dailyWaterGoal"},
}

// Pointer fields distinguish a missing key from a zero value.
type foodPayload struct {
	Name        *string  `json:"name"`
	Calories    *float64 `json:"calories"`
	Protein     *float64 `json:"protein"`
	Carbs       *float64 `json:"carbs"`
	Fat         *float64 `json:"fat"`
	ServingSize *float64 `json:"servingSize"`
	ServingUnit *string  `json:"servingUnit"`
	Emoji       *string  `json:"emoji"`
}

type caloriesPayload struct {
	Calories *float64 `json:"calories"`
}

type goalsPayload struct {
	DailyCalorieGoal *float64 `json:"dailyCalorieGoal"`
	DailyProteinGoal *float64 `json:"dailyProteinGoal"`
	DailyCarbsGoal   *float64 `json:"dailyCarbsGoal"`
	DailyFatGoal     *float64 `json:"dailyFatGoal"`
	DailyWaterGoal   *float64 `json:"dailyWaterGoal"`
}

func (p foodPayload) toFoodItem(id string, source model.FoodSource) (model.FoodItem, error) {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return model.FoodItem{}, fmt.Errorf("food name is required")
	}
	if p.ServingUnit == nil {
		return model.FoodItem{}, fmt.Errorf("servingUnit is required")
	}
	nums := []struct {
		name  string
		value *float64
	}{
		{"calories", p.Calories},
		{"protein", p.Protein},
		{"carbs", p.Carbs},
		{"fat", p.Fat},
		{"servingSize", p.ServingSize},
	}
	for _, n := range nums {
		if n.value == nil {
			return model.FoodItem{}, fmt.Errorf("%s is required", n.name)
		}
		if *n.value < 0 {
			return model.FoodItem{}, fmt.Errorf("%s must be >= 0", n.name)
		}
	}
	item := model.FoodItem{
		ID:          id,
		Name:        strings.TrimSpace(*p.Name),
		Calories:    *p.Calories,
		Protein:     *p.Protein,
		Carbs:       *p.Carbs,
		Fat:         *p.Fat,
		ServingSize: *p.ServingSize,
		ServingUnit: strings.TrimSpace(*p.ServingUnit),
		Source:      source,
	}
	if p.Emoji != nil && strings.TrimSpace(*p.Emoji) != "" {
		item.Emoji = model.Some(strings.TrimSpace(*p.Emoji))
	}
	return item, nil
}

func (p goalsPayload) toTargets() (model.GoalTargets, error) {
	fields := []struct {
		name  string
		value *float64
	}{
		{"dailyCalorieGoal", p.DailyCalorieGoal},
		{"dailyProteinGoal", p.DailyProteinGoal},
		{"dailyCarbsGoal", p.DailyCarbsGoal},
		{"dailyFatGoal", p.DailyFatGoal},
		{"dailyWaterGoal", p.DailyWaterGoal},
	}
	for _, f := range fields {
		if f.value == nil {
			return model.GoalTargets{}, fmt.Errorf("%s is required", f.name)
		}
		if *f.value <= 0 {
			return model.GoalTargets{}, fmt.Errorf("%s must be > 0", f.name)
		}
	}
	return model.GoalTargets{
		DailyCalorieGoal: *p.DailyCalorieGoal,
		DailyProteinGoal: *p.DailyProteinGoal,
		DailyCarbsGoal:   *p.DailyCarbsGoal,
		DailyFatGoal:     *p.DailyFatGoal,
		DailyWaterGoal:   *p.DailyWaterGoal,
	}, nil
}

// decodeStrict unmarshals model output. Models sometimes wrap JSON in a
// markdown fence even when a JSON mime type was requested.
func decodeStrict(text string, out any) error {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(text))))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("decode model output: trailing data")
	}
	return nil
}
