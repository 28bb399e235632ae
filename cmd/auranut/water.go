package auranut

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/session"
)

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Count glasses of water",
}

var waterAddCmd = &cobra.Command{
	Use:   "add [glasses]",
	Short: "Add glasses (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adjustWater(cmd, args, 1)
	},
}

var waterRemoveCmd = &cobra.Command{
	Use:   "remove [glasses]",
	Short: "Remove glasses (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adjustWater(cmd, args, -1)
	},
}

func adjustWater(cmd *cobra.Command, args []string, sign int) error {
	n := 1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return fmt.Errorf("glasses must be a positive integer")
		}
		n = v
	}
	return withSession(cmd, func(ctx context.Context, s *session.Session) error {
		total, err := s.AdjustWater(sign * n)
		if err != nil {
			return err
		}
		goal := 0
		if g, ok := s.Goals(); ok {
			goal = g.DailyWaterGoal
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Water: %d/%d glasses\n", total, goal)
		return nil
	})
}

func init() {
	rootCmd.AddCommand(waterCmd)
	waterCmd.AddCommand(waterAddCmd, waterRemoveCmd)
}
