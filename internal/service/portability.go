package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/store"
)

const exportVersion = 1

// ExportData is the portable form of every persisted slice.
type ExportData struct {
	Version    int                        `json:"version"`
	ExportedAt time.Time                  `json:"exported_at"`
	State      map[string]json.RawMessage `json:"state"`
}

type ImportOptions struct {
	DryRun bool
}

type ImportReport struct {
	Slices        int  `json:"slices"`
	DailyLogs     int  `json:"daily_logs"`
	WeightEntries int  `json:"weight_entries"`
	ChatMessages  int  `json:"chat_messages"`
	DryRun        bool `json:"dry_run"`
}

func ExportDataSnapshot(kv store.KV, now time.Time) (*ExportData, error) {
	docs, err := store.Snapshot(kv)
	if err != nil {
		return nil, fmt.Errorf("export state: %w", err)
	}
	return &ExportData{Version: exportVersion, ExportedAt: now.UTC(), State: docs}, nil
}

// ImportDataSnapshot replaces the store with data. Every slice is decoded
// before anything is written, so a bad file leaves the store untouched.
func ImportDataSnapshot(kv store.KV, data *ExportData, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{DryRun: opts.DryRun}
	if data == nil {
		return report, fmt.Errorf("import data is required")
	}
	if data.Version != exportVersion {
		return report, fmt.Errorf("unsupported export version %d", data.Version)
	}
	staging := store.NewMemory()
	for k, v := range data.State {
		if !slices.Contains(store.Keys, k) {
			return report, fmt.Errorf("unknown state key %q", k)
		}
		if err := staging.Set(k, v); err != nil {
			return report, fmt.Errorf("stage %s: %w", k, err)
		}
	}
	logs, err := store.Load(staging, store.KeyDailyLogs, []model.DailyLog{})
	if err != nil {
		return report, fmt.Errorf("import daily logs: %w", err)
	}
	weights, err := store.Load(staging, store.KeyWeightHistory, []model.WeightEntry{})
	if err != nil {
		return report, fmt.Errorf("import weight history: %w", err)
	}
	chat, err := store.Load(staging, store.KeyChatHistory, []model.ChatMessage{})
	if err != nil {
		return report, fmt.Errorf("import chat history: %w", err)
	}
	if _, err := store.Load[*model.User](staging, store.KeyUser, nil); err != nil {
		return report, fmt.Errorf("import user: %w", err)
	}
	if _, err := store.Load[*model.UserGoals](staging, store.KeyUserGoals, nil); err != nil {
		return report, fmt.Errorf("import goals: %w", err)
	}
	if _, err := store.Load(staging, store.KeyTheme, model.ThemeLight); err != nil {
		return report, fmt.Errorf("import theme: %w", err)
	}
	report.Slices = len(data.State)
	report.DailyLogs = len(logs)
	report.WeightEntries = len(weights)
	report.ChatMessages = len(chat)
	if opts.DryRun {
		return report, nil
	}
	if err := store.Restore(kv, data.State); err != nil {
		return report, fmt.Errorf("import state: %w", err)
	}
	return report, nil
}

// WriteFoodCSV writes one row per logged food item, ordered by date and meal.
func WriteFoodCSV(w io.Writer, logs []model.DailyLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "meal", "name", "calories", "protein_g", "carbs_g", "fat_g", "serving_size", "serving_unit", "source"}); err != nil {
		return fmt.Errorf("write export csv header: %w", err)
	}
	for _, l := range logs {
		for _, m := range model.MealTypes {
			for _, item := range l.Meals[m] {
				record := []string{
					l.Date,
					string(m),
					item.Name,
					strconv.FormatFloat(item.Calories, 'f', -1, 64),
					strconv.FormatFloat(item.Protein, 'f', -1, 64),
					strconv.FormatFloat(item.Carbs, 'f', -1, 64),
					strconv.FormatFloat(item.Fat, 'f', -1, 64),
					strconv.FormatFloat(item.ServingSize, 'f', -1, 64),
					item.ServingUnit,
					string(item.Source),
				}
				if err := cw.Write(record); err != nil {
					return fmt.Errorf("write export csv row: %w", err)
				}
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export csv: %w", err)
	}
	return nil
}
