package auranut

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
	"github.com/arhaangamer7865-design/Auranut/internal/session"
)

var (
	profileWeight     float64
	profileGoalWeight float64
	profileHeight     float64
	profileAge        int
	profileGender     string
	profileActivity   string
	profileUnit       string

	goalCalories float64
	goalProtein  float64
	goalCarbs    float64
	goalFat      float64
	goalWater    int
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Set up your profile and compute daily goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := profileFromFlags()
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			goals, usedFallback, err := s.Onboard(ctx, profile)
			if err != nil {
				return err
			}
			if usedFallback {
				fmt.Fprintln(cmd.OutOrStdout(), "AI goal calculation unavailable; using standard targets")
			}
			printGoals(cmd, goals)
			return nil
		})
	},
}

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show or edit your profile and daily targets",
}

var goalsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			goals, ok := s.Goals()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Goals: not set")
				return nil
			}
			printGoals(cmd, goals)
			return nil
		})
	},
}

var goalsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Edit profile fields and daily targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			goals, ok := s.Goals()
			if !ok {
				return session.ErrNotOnboarded
			}
			f := cmd.Flags()
			updates := 0
			if f.Changed("weight") {
				kg, err := nutrition.ToKg(profileWeight, profileUnit)
				if err != nil {
					return err
				}
				goals.CurrentWeight = kg
				updates++
			}
			if f.Changed("goal-weight") {
				kg, err := nutrition.ToKg(profileGoalWeight, profileUnit)
				if err != nil {
					return err
				}
				goals.GoalWeight = kg
				updates++
			}
			if f.Changed("height") {
				goals.Height = profileHeight
				updates++
			}
			if f.Changed("age") {
				goals.Age = profileAge
				updates++
			}
			if f.Changed("gender") {
				goals.Gender = model.Gender(strings.ToLower(strings.TrimSpace(profileGender)))
				updates++
			}
			if f.Changed("activity") {
				goals.ActivityLevel = model.ActivityLevel(strings.ToLower(strings.TrimSpace(profileActivity)))
				updates++
			}
			if f.Changed("calories") {
				goals.DailyCalorieGoal = goalCalories
				updates++
			}
			if f.Changed("protein") {
				goals.DailyProteinGoal = goalProtein
				updates++
			}
			if f.Changed("carbs") {
				goals.DailyCarbsGoal = goalCarbs
				updates++
			}
			if f.Changed("fat") {
				goals.DailyFatGoal = goalFat
				updates++
			}
			if f.Changed("water") {
				goals.DailyWaterGoal = goalWater
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			if err := s.UpdateGoals(goals); err != nil {
				return err
			}
			printGoals(cmd, goals)
			return nil
		})
	},
}

func profileFromFlags() (model.Profile, error) {
	weight, err := nutrition.ToKg(profileWeight, profileUnit)
	if err != nil {
		return model.Profile{}, fmt.Errorf("--weight: %w", err)
	}
	goalWeight, err := nutrition.ToKg(profileGoalWeight, profileUnit)
	if err != nil {
		return model.Profile{}, fmt.Errorf("--goal-weight: %w", err)
	}
	return model.Profile{
		CurrentWeight: weight,
		GoalWeight:    goalWeight,
		Height:        profileHeight,
		Age:           profileAge,
		Gender:        model.Gender(strings.ToLower(strings.TrimSpace(profileGender))),
		ActivityLevel: model.ActivityLevel(strings.ToLower(strings.TrimSpace(profileActivity))),
	}, nil
}

func printGoals(cmd *cobra.Command, g model.UserGoals) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Profile: %.1f kg -> %.1f kg | %.0f cm | %d y | %s | %s\n", g.CurrentWeight, g.GoalWeight, g.Height, g.Age, g.Gender, g.ActivityLevel)
	fmt.Fprintf(out, "Daily goal: %s | P %.0fg | C %.0fg | F %.0fg | Water %d glasses\n", formatKcal(g.DailyCalorieGoal), g.DailyProteinGoal, g.DailyCarbsGoal, g.DailyFatGoal, g.DailyWaterGoal)
}

func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&profileWeight, "weight", 0, "Current weight")
	cmd.Flags().Float64Var(&profileGoalWeight, "goal-weight", 0, "Goal weight")
	cmd.Flags().Float64Var(&profileHeight, "height", 0, "Height in cm")
	cmd.Flags().IntVar(&profileAge, "age", 0, "Age in years")
	cmd.Flags().StringVar(&profileGender, "gender", "", "male or female")
	cmd.Flags().StringVar(&profileActivity, "activity", string(model.ActivityModerate), "sedentary, light, moderate, active or very_active")
	cmd.Flags().StringVar(&profileUnit, "unit", "kg", "Weight unit: kg or lb")
}

func init() {
	rootCmd.AddCommand(onboardCmd, goalsCmd)
	goalsCmd.AddCommand(goalsShowCmd, goalsSetCmd)

	addProfileFlags(onboardCmd)
	addProfileFlags(goalsSetCmd)
	goalsSetCmd.Flags().Float64Var(&goalCalories, "calories", 0, "Daily calorie goal")
	goalsSetCmd.Flags().Float64Var(&goalProtein, "protein", 0, "Daily protein goal (g)")
	goalsSetCmd.Flags().Float64Var(&goalCarbs, "carbs", 0, "Daily carbs goal (g)")
	goalsSetCmd.Flags().Float64Var(&goalFat, "fat", 0, "Daily fat goal (g)")
	goalsSetCmd.Flags().IntVar(&goalWater, "water", 0, "Daily water goal (glasses)")
}
