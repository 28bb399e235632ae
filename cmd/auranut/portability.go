package auranut

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/service"
	"github.com/arhaangamer7865-design/Auranut/internal/store"
)

var (
	exportFormat string
	exportOut    string
	importIn     string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export local data (json or csv)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(exportOut) == "" {
			return fmt.Errorf("--out is required")
		}
		return withStore(func(kv store.KV) error {
			switch strings.ToLower(strings.TrimSpace(exportFormat)) {
			case "json":
				data, err := service.ExportDataSnapshot(kv, time.Now())
				if err != nil {
					return err
				}
				b, err := json.MarshalIndent(data, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal export json: %w", err)
				}
				if err := os.WriteFile(exportOut, b, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
			case "csv":
				logs, err := store.Load(kv, store.KeyDailyLogs, []model.DailyLog{})
				if err != nil {
					return err
				}
				f, err := os.Create(exportOut)
				if err != nil {
					return fmt.Errorf("create export csv: %w", err)
				}
				defer f.Close()
				if err := service.WriteFoodCSV(f, logs); err != nil {
					return err
				}
			default:
				return fmt.Errorf("invalid --format %q (use json or csv)", exportFormat)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported data to %s\n", exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace local data with a json export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		b, err := os.ReadFile(importIn)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		var data service.ExportData
		if err := json.Unmarshal(b, &data); err != nil {
			return fmt.Errorf("decode import json: %w", err)
		}
		return withStore(func(kv store.KV) error {
			report, err := service.ImportDataSnapshot(kv, &data, service.ImportOptions{DryRun: importDryRun})
			if err != nil {
				return err
			}
			verb := "Imported"
			if report.DryRun {
				verb = "Would import"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d slices: %d days, %d weights, %d chat messages\n",
				verb, report.Slices, report.DailyLogs, report.WeightEntries, report.ChatMessages)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or csv")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input json file path")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without writing")
}
