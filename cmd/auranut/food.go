package auranut

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
	"github.com/arhaangamer7865-design/Auranut/internal/session"
)

var (
	foodSearchMeal  string
	foodScanMeal    string
	foodAddMeal     string
	foodPick        int
	foodImage       string
	foodLog         bool
	foodName        string
	foodCalories    float64
	foodProtein     float64
	foodCarbs       float64
	foodFat         float64
	foodServingSize float64
	foodServingUnit string
	foodEmoji       string
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Look up and log food",
}

var foodSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search nutrition facts by name (up to 3 matches)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var meal model.MealType
		if foodPick > 0 {
			m, err := nutrition.ParseMealType(foodSearchMeal)
			if err != nil {
				return err
			}
			meal = m
		}
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			items, err := s.SearchFood(ctx, joinArgs(args))
			if err != nil {
				return err
			}
			if items == nil {
				return fmt.Errorf("food lookup is unavailable right now; try again or use `auranut food add`")
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches")
				return nil
			}
			printFoods(cmd, items)
			if foodPick == 0 {
				return nil
			}
			if foodPick > len(items) {
				return fmt.Errorf("--pick must be between 1 and %d", len(items))
			}
			added, err := s.LogFood(meal, items[foodPick-1:foodPick])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s to %s\n", added[0].Name, meal)
			return nil
		})
	},
}

var foodScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Identify food from a photo",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(foodImage) == "" {
			return fmt.Errorf("--image is required")
		}
		image, err := os.ReadFile(foodImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(foodImage)))
		if mimeType == "" {
			mimeType = http.DetectContentType(image)
		}
		var meal model.MealType
		if foodLog {
			if meal, err = nutrition.ParseMealType(foodScanMeal); err != nil {
				return err
			}
		}
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			item, err := s.ScanFood(ctx, image, mimeType)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("could not identify food in %s", foodImage)
			}
			printFoods(cmd, []model.FoodItem{*item})
			if !foodLog {
				return nil
			}
			if _, err := s.LogFood(meal, []model.FoodItem{*item}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s to %s\n", item.Name, meal)
			return nil
		})
	},
}

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food entry manually",
	RunE: func(cmd *cobra.Command, args []string) error {
		meal, err := nutrition.ParseMealType(foodAddMeal)
		if err != nil {
			return err
		}
		item, err := manualFoodItem()
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			added, err := s.LogFood(meal, []model.FoodItem{item})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%s) to %s\n", added[0].Name, formatKcal(added[0].Calories), meal)
			return nil
		})
	},
}

func manualFoodItem() (model.FoodItem, error) {
	name := strings.TrimSpace(foodName)
	if name == "" {
		return model.FoodItem{}, fmt.Errorf("--name is required")
	}
	for flag, v := range map[string]float64{
		"calories":     foodCalories,
		"protein":      foodProtein,
		"carbs":        foodCarbs,
		"fat":          foodFat,
		"serving-size": foodServingSize,
	} {
		if !nutrition.Finite(v) || v < 0 {
			return model.FoodItem{}, fmt.Errorf("--%s must be a finite number >= 0", flag)
		}
	}
	item := model.FoodItem{
		Name:        name,
		Calories:    foodCalories,
		Protein:     foodProtein,
		Carbs:       foodCarbs,
		Fat:         foodFat,
		ServingSize: foodServingSize,
		ServingUnit: strings.TrimSpace(foodServingUnit),
		Source:      model.SourceDatabase,
	}
	if e := strings.TrimSpace(foodEmoji); e != "" {
		item.Emoji = model.Some(e)
	}
	return item, nil
}

func printFoods(cmd *cobra.Command, items []model.FoodItem) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "#\tNAME\tSERVING\tKCAL\tP\tC\tF\tSOURCE")
	for i, it := range items {
		name := it.Name
		if e, ok := it.Emoji.Get(); ok {
			name = e + " " + name
		}
		fmt.Fprintf(out, "%d\t%s\t%g %s\t%.0f\t%.1f\t%.1f\t%.1f\t%s\n", i+1, name, it.ServingSize, it.ServingUnit, it.Calories, it.Protein, it.Carbs, it.Fat, it.Source)
		if urls, ok := it.GroundingURLs.Get(); ok {
			for _, u := range urls {
				fmt.Fprintf(out, "\tsource: %s\n", u)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodSearchCmd, foodScanCmd, foodAddCmd)

	foodSearchCmd.Flags().IntVar(&foodPick, "pick", 0, "Log the Nth match (1-3)")
	foodSearchCmd.Flags().StringVar(&foodSearchMeal, "meal", "snacks", "Meal for --pick: breakfast, lunch, dinner or snacks")

	foodScanCmd.Flags().StringVar(&foodImage, "image", "", "Path to a food photo")
	foodScanCmd.Flags().BoolVar(&foodLog, "log", false, "Log the identified food")
	foodScanCmd.Flags().StringVar(&foodScanMeal, "meal", "snacks", "Meal for --log")

	foodAddCmd.Flags().StringVar(&foodAddMeal, "meal", "", "breakfast, lunch, dinner or snacks")
	foodAddCmd.Flags().StringVar(&foodName, "name", "", "Food name")
	foodAddCmd.Flags().Float64Var(&foodCalories, "calories", 0, "Calories")
	foodAddCmd.Flags().Float64Var(&foodProtein, "protein", 0, "Protein (g)")
	foodAddCmd.Flags().Float64Var(&foodCarbs, "carbs", 0, "Carbs (g)")
	foodAddCmd.Flags().Float64Var(&foodFat, "fat", 0, "Fat (g)")
	foodAddCmd.Flags().Float64Var(&foodServingSize, "serving-size", 1, "Serving size")
	foodAddCmd.Flags().StringVar(&foodServingUnit, "serving-unit", "serving", "Serving unit")
	foodAddCmd.Flags().StringVar(&foodEmoji, "emoji", "", "Optional emoji")
}
