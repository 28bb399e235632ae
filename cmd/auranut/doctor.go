package auranut

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/service"
	"github.com/arhaangamer7865-design/Auranut/internal/store"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(kv store.KV) error {
			report, err := service.RunDoctor(kv, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			undecodable := "none"
			if len(report.UndecodableSlices) > 0 {
				undecodable = strings.Join(report.UndecodableSlices, ", ")
			}
			fmt.Fprintf(out, "Undecodable slices: %s\n", undecodable)
			fmt.Fprintf(out, "Duplicate log dates: %d\n", report.DuplicateLogDates)
			fmt.Fprintf(out, "Invalid log dates: %d\n", report.InvalidLogDates)
			fmt.Fprintf(out, "Negative water logs: %d\n", report.NegativeWaterLogs)
			fmt.Fprintf(out, "Duplicate weight dates: %d\n", report.DuplicateWeightDates)
			fmt.Fprintf(out, "Unsorted weights: %t\n", report.UnsortedWeights)
			if doctorFix {
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(kv, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
