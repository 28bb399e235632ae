package auranut

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
	"github.com/arhaangamer7865-design/Auranut/internal/session"
)

var historyDays int

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's intake, exercise, and goal progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			if s.Phase() == session.PhaseLoggedOut {
				return session.ErrNotLoggedIn
			}
			status := s.Today()
			log := s.TodayLog()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", status.Date)
			for _, m := range model.MealTypes {
				var kcal float64
				for _, it := range log.Meals[m] {
					kcal += it.Calories
				}
				fmt.Fprintf(out, "%s: %d item(s), %.0f kcal\n", m, len(log.Meals[m]), kcal)
			}
			fmt.Fprintf(out, "Intake: %s\n", formatKcal(status.ConsumedCalories))
			fmt.Fprintf(out, "Exercise: %s\n", formatKcal(status.BurnedCalories))
			fmt.Fprintf(out, "Net: %s\n", formatKcal(status.NetCalories))
			fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", status.Macros.ProteinG, status.Macros.CarbsG, status.Macros.FatG)
			if _, ok := s.Goals(); !ok {
				fmt.Fprintln(out, "Goal: not set")
				return nil
			}
			fmt.Fprintf(out, "Goal: %s | P %.1fg | C %.1fg | F %.1fg\n", formatKcal(status.GoalCalories), status.GoalMacros.ProteinG, status.GoalMacros.CarbsG, status.GoalMacros.FatG)
			fmt.Fprintf(out, "Remaining: %s | P %.1fg | C %.1fg | F %.1fg\n", formatKcal(status.RemainingCalories), status.RemainingMacros.ProteinG, status.RemainingMacros.CarbsG, status.RemainingMacros.FatG)
			fmt.Fprintf(out, "Water: %d/%d glasses\n", status.WaterIntake, status.WaterGoal)
			switch status.Band {
			case nutrition.BandWayOver:
				fmt.Fprintln(out, "Status: well over goal")
			case nutrition.BandOver:
				fmt.Fprintln(out, "Status: over goal")
			default:
				fmt.Fprintln(out, "Status: on track")
			}
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show daily calorie totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyDays <= 0 {
			return fmt.Errorf("--days must be > 0")
		}
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			fmt.Fprintln(cmd.OutOrStdout(), "DATE\tCONSUMED\tBURNED\tNET")
			for _, p := range s.History(historyDays) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.0f\t%.0f\t%.0f\n", p.Date, p.Consumed, p.Burned, p.Net)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd, historyCmd)
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "Number of most recent logged days")
}
