package model

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
	Snacks    MealType = "Snacks"
)

// MealTypes lists the meal slots in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snacks}

type FoodSource string

const (
	SourceDatabase FoodSource = "database"
	SourceSearch   FoodSource = "search"
)

type DurationUnit string

const (
	Minutes DurationUnit = "minutes"
	Hours   DurationUnit = "hours"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type User struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Photo Optional[string] `json:"photo"`
}

type UserGoals struct {
	CurrentWeight    float64       `json:"currentWeight"`
	GoalWeight       float64       `json:"goalWeight"`
	Height           float64       `json:"height"`
	Age              int           `json:"age"`
	Gender           Gender        `json:"gender"`
	ActivityLevel    ActivityLevel `json:"activityLevel"`
	DailyCalorieGoal float64       `json:"dailyCalorieGoal"`
	DailyProteinGoal float64       `json:"dailyProteinGoal"`
	DailyCarbsGoal   float64       `json:"dailyCarbsGoal"`
	DailyFatGoal     float64       `json:"dailyFatGoal"`
	DailyWaterGoal   int           `json:"dailyWaterGoal"`
}

// Profile is the onboarding intake: UserGoals without the daily targets.
type Profile struct {
	CurrentWeight float64       `json:"currentWeight"`
	GoalWeight    float64       `json:"goalWeight"`
	Height        float64       `json:"height"`
	Age           int           `json:"age"`
	Gender        Gender        `json:"gender"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
}

// GoalTargets are the daily targets computed for a Profile.
type GoalTargets struct {
	DailyCalorieGoal float64 `json:"dailyCalorieGoal"`
	DailyProteinGoal float64 `json:"dailyProteinGoal"`
	DailyCarbsGoal   float64 `json:"dailyCarbsGoal"`
	DailyFatGoal     float64 `json:"dailyFatGoal"`
	DailyWaterGoal   float64 `json:"dailyWaterGoal"`
}

func (p Profile) WithTargets(t GoalTargets) UserGoals {
	return UserGoals{
		CurrentWeight:    p.CurrentWeight,
		GoalWeight:       p.GoalWeight,
		Height:           p.Height,
		Age:              p.Age,
		Gender:           p.Gender,
		ActivityLevel:    p.ActivityLevel,
		DailyCalorieGoal: t.DailyCalorieGoal,
		DailyProteinGoal: t.DailyProteinGoal,
		DailyCarbsGoal:   t.DailyCarbsGoal,
		DailyFatGoal:     t.DailyFatGoal,
		DailyWaterGoal:   int(t.DailyWaterGoal + 0.5),
	}
}

func (g UserGoals) Profile() Profile {
	return Profile{
		CurrentWeight: g.CurrentWeight,
		GoalWeight:    g.GoalWeight,
		Height:        g.Height,
		Age:           g.Age,
		Gender:        g.Gender,
		ActivityLevel: g.ActivityLevel,
	}
}

type FoodItem struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Calories      float64            `json:"calories"`
	Protein       float64            `json:"protein"`
	Carbs         float64            `json:"carbs"`
	Fat           float64            `json:"fat"`
	ServingSize   float64            `json:"servingSize"`
	ServingUnit   string             `json:"servingUnit"`
	Emoji         Optional[string]   `json:"emoji"`
	Source        FoodSource         `json:"source"`
	GroundingURLs Optional[[]string] `json:"groundingUrls"`
}

type ExerciseItem struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Duration       float64      `json:"duration"`
	DurationUnit   DurationUnit `json:"durationUnit"`
	CaloriesBurned float64      `json:"caloriesBurned"`
}

type DailyLog struct {
	Date        string                  `json:"date"`
	Meals       map[MealType][]FoodItem `json:"meals"`
	Exercises   []ExerciseItem          `json:"exercises"`
	WaterIntake int                     `json:"waterIntake"`
}

type WeightEntry struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

type ChatMessage struct {
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
