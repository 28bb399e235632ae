package service_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
	"github.com/arhaangamer7865-design/Auranut/internal/service"
	"github.com/arhaangamer7865-design/Auranut/internal/store"
)

func TestBackupCreateListRestore(t *testing.T) {
	t.Parallel()
	kv, dbPath := newTestStore(t)
	if err := store.Save(kv, store.KeyTheme, model.ThemeDark); err != nil {
		t.Fatalf("seed theme: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "backups")
	out := filepath.Join(dir, service.BackupFileName(time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC)))
	info, err := service.CreateBackup(dbPath, out)
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if !strings.HasSuffix(info.Path, "auranut-20260220-080000.db") || len(info.Checksum) != 64 {
		t.Fatalf("unexpected backup info: %+v", info)
	}

	list, err := service.ListBackups(dir)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list) != 1 || list[0].Checksum != info.Checksum {
		t.Fatalf("unexpected backup list: %+v", list)
	}

	target := filepath.Join(t.TempDir(), "restored.db")
	if err := service.RestoreBackup(out, target, false); err != nil {
		t.Fatalf("restore backup: %v", err)
	}
	if err := service.RestoreBackup(out, target, false); err == nil {
		t.Fatalf("expected restore onto existing db to require force")
	}

	if err := os.WriteFile(out+".sha256", []byte("deadbeef\n"), 0o644); err != nil {
		t.Fatalf("tamper checksum: %v", err)
	}
	if err := service.RestoreBackup(out, target, true); err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestDoctorFindsAndFixesProblems(t *testing.T) {
	t.Parallel()
	kv := store.NewMemory()

	a := nutrition.AddFoodsToMeal(nutrition.NewDailyLog("2026-02-20"), model.Lunch, []model.FoodItem{{ID: "a", Name: "Rice", Calories: 200}})
	b := nutrition.AddFoodsToMeal(nutrition.NewDailyLog("2026-02-20"), model.Dinner, []model.FoodItem{{ID: "b", Name: "Fish", Calories: 300}})
	c := nutrition.NewDailyLog("2026-02-21")
	c.WaterIntake = -2
	if err := store.Save(kv, store.KeyDailyLogs, []model.DailyLog{a, b, c}); err != nil {
		t.Fatalf("seed logs: %v", err)
	}
	if err := store.Save(kv, store.KeyWeightHistory, []model.WeightEntry{
		{Date: "2026-02-21", Weight: 80},
		{Date: "2026-02-20", Weight: 81},
		{Date: "2026-02-21", Weight: 79.5},
	}); err != nil {
		t.Fatalf("seed weights: %v", err)
	}
	if err := kv.Set(store.KeyChatHistory, []byte(`"not a list"`)); err != nil {
		t.Fatalf("seed chat: %v", err)
	}

	report, err := service.RunDoctor(kv, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.Healthy() {
		t.Fatalf("expected problems, got %+v", report)
	}
	if report.DuplicateLogDates != 1 || report.NegativeWaterLogs != 1 || report.DuplicateWeightDates != 1 || !report.UnsortedWeights {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.UndecodableSlices) != 1 || report.UndecodableSlices[0] != store.KeyChatHistory {
		t.Fatalf("expected chatHistory to be undecodable, got %+v", report.UndecodableSlices)
	}

	if _, err := service.RunDoctor(kv, true); err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	after, err := service.RunDoctor(kv, false)
	if err != nil {
		t.Fatalf("doctor after fix: %v", err)
	}
	if !after.Healthy() {
		t.Fatalf("expected healthy store after fix, got %+v", after)
	}

	logs, err := store.Load(kv, store.KeyDailyLogs, []model.DailyLog{})
	if err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(logs) != 2 || nutrition.DailyStats(logs[0]).ConsumedCalories != 500 || logs[1].WaterIntake != 0 {
		t.Fatalf("unexpected merged logs: %+v", logs)
	}
	weights, err := store.Load(kv, store.KeyWeightHistory, []model.WeightEntry{})
	if err != nil {
		t.Fatalf("load weights: %v", err)
	}
	if len(weights) != 2 || weights[0].Date != "2026-02-20" || weights[1].Weight != 79.5 {
		t.Fatalf("unexpected weights: %+v", weights)
	}
}

func TestBackupTargetAndLatest(t *testing.T) {
	t.Parallel()
	_, dbPath := newTestStore(t)
	at := time.Date(2026, 2, 21, 7, 5, 0, 0, time.UTC)

	if got := service.BackupTarget(dbPath, "", "/tmp/explicit.db", at); got != "/tmp/explicit.db" {
		t.Fatalf("expected explicit out to win, got %s", got)
	}
	want := filepath.Join(filepath.Dir(dbPath), "backups", "auranut-20260221-070500.db")
	if got := service.BackupTarget(dbPath, "", "", at); got != want {
		t.Fatalf("expected default target %s, got %s", want, got)
	}

	dir := filepath.Join(t.TempDir(), "custom")
	if _, err := service.LatestBackup(dir); err == nil {
		t.Fatalf("expected missing backup dir to fail")
	}
	older, err := service.CreateBackup(dbPath, service.BackupTarget(dbPath, dir, "", at))
	if err != nil {
		t.Fatalf("create older backup: %v", err)
	}
	newer, err := service.CreateBackup(dbPath, service.BackupTarget(dbPath, dir, "", at.Add(time.Hour)))
	if err != nil {
		t.Fatalf("create newer backup: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older.Path, past, past); err != nil {
		t.Fatalf("age older backup: %v", err)
	}
	latest, err := service.LatestBackup(dir)
	if err != nil {
		t.Fatalf("latest backup: %v", err)
	}
	if latest.Path != newer.Path {
		t.Fatalf("expected %s, got %s", newer.Path, latest.Path)
	}
}
