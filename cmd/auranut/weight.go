package auranut

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
	"github.com/arhaangamer7865-design/Auranut/internal/session"
)

var weightUnit string

var weightCmd = &cobra.Command{
	Use:   "weight",
	Short: "Track body weight",
}

var weightLogCmd = &cobra.Command{
	Use:   "log <value>",
	Short: "Record today's weight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q", args[0])
		}
		kg, err := nutrition.ToKg(v, weightUnit)
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			entry, err := s.LogWeight(kg)
			if err != nil {
				return err
			}
			shown, _ := nutrition.FromKg(entry.Weight, weightUnit)
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %.1f %s for %s\n", shown, displayUnit(weightUnit), entry.Date)
			return nil
		})
	},
}

var weightListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show weight history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := nutrition.FromKg(1, weightUnit); err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			fmt.Fprintf(cmd.OutOrStdout(), "DATE\tWEIGHT (%s)\n", displayUnit(weightUnit))
			for _, e := range s.WeightHistory() {
				shown, _ := nutrition.FromKg(e.Weight, weightUnit)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.1f\n", e.Date, shown)
			}
			return nil
		})
	},
}

func displayUnit(unit string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(unit)), "lb") {
		return "lb"
	}
	return "kg"
}

func init() {
	rootCmd.AddCommand(weightCmd)
	weightCmd.AddCommand(weightLogCmd, weightListCmd)
	weightCmd.PersistentFlags().StringVar(&weightUnit, "unit", "kg", "Weight unit: kg or lb")
}
