package auranut

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/session"
)

var (
	exerciseName     string
	exerciseDuration float64
	exerciseUnit     string
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Log exercise with an AI calorie estimate",
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Estimate calories burned and log an activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		unit := model.DurationUnit(strings.ToLower(strings.TrimSpace(exerciseUnit)))
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			item, err := s.LogExercise(ctx, exerciseName, exerciseDuration, unit)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("calorie estimate unavailable; %s was not logged", strings.TrimSpace(exerciseName))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%g %s): %s burned\n", item.Name, item.Duration, item.DurationUnit, formatKcal(item.CaloriesBurned))
			return nil
		})
	},
}

var exerciseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List today's exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			log := s.TodayLog()
			fmt.Fprintln(cmd.OutOrStdout(), "NAME\tDURATION\tKCAL")
			for _, e := range log.Exercises {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g %s\t%.0f\n", e.Name, e.Duration, e.DurationUnit, e.CaloriesBurned)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exerciseCmd)
	exerciseCmd.AddCommand(exerciseAddCmd, exerciseListCmd)

	exerciseAddCmd.Flags().StringVar(&exerciseName, "name", "", "Activity, e.g. \"running 10 km/h\"")
	exerciseAddCmd.Flags().Float64Var(&exerciseDuration, "duration", 0, "Duration")
	exerciseAddCmd.Flags().StringVar(&exerciseUnit, "unit", string(model.Minutes), "minutes or hours")
}
