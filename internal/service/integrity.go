package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arhaangamer7865-design/Auranut/internal/app"
	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/nutrition"
	"github.com/arhaangamer7865-design/Auranut/internal/store"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	UndecodableSlices    []string `json:"undecodable_slices,omitempty"`
	DuplicateLogDates    int      `json:"duplicate_log_dates"`
	InvalidLogDates      int      `json:"invalid_log_dates"`
	NegativeWaterLogs    int      `json:"negative_water_logs"`
	DuplicateWeightDates int      `json:"duplicate_weight_dates"`
	UnsortedWeights      bool     `json:"unsorted_weights"`
	Fixed                bool     `json:"fixed,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return len(r.UndecodableSlices) == 0 && r.DuplicateLogDates == 0 && r.InvalidLogDates == 0 &&
		r.NegativeWaterLogs == 0 && r.DuplicateWeightDates == 0 && !r.UnsortedWeights
}

// BackupFileName is the default name for a backup taken at t.
func BackupFileName(t time.Time) string {
	return "auranut-" + t.UTC().Format("20060102-150405") + ".db"
}

// BackupDir is dir when set, otherwise the backups directory next to dbPath.
func BackupDir(dbPath, dir string) string {
	if strings.TrimSpace(dir) != "" {
		return dir
	}
	return app.DefaultBackupDir(dbPath)
}

// BackupTarget is out when set, otherwise a timestamped file in BackupDir.
func BackupTarget(dbPath, dir, out string, now time.Time) string {
	if strings.TrimSpace(out) != "" {
		return out
	}
	return filepath.Join(BackupDir(dbPath, dir), BackupFileName(now))
}

func CreateBackup(dbPath, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(dbPath) == "" {
		return BackupInfo{}, fmt.Errorf("db path is required")
	}
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if err := copyFile(dbPath, outPath); err != nil {
		return BackupInfo{}, err
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup copies a backup over dbPath. A checksum sidecar, when
// present, must match.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

// ListBackups returns the .db files in dir, newest first.
func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// LatestBackup returns the newest backup in dir.
func LatestBackup(dir string) (BackupInfo, error) {
	items, err := ListBackups(dir)
	if err != nil {
		return BackupInfo{}, err
	}
	if len(items) == 0 {
		return BackupInfo{}, fmt.Errorf("no backups in %s", dir)
	}
	return items[0], nil
}

// RunDoctor checks the persisted slices for states the app never produces
// itself. With fix it drops undecodable slices, merges logs that share a
// date, keeps the last weight per date and clamps negative water.
func RunDoctor(kv store.KV, fix bool) (DoctorReport, error) {
	report := DoctorReport{}

	logs, logsOK, err := doctorLoad(kv, store.KeyDailyLogs, []model.DailyLog{}, &report)
	if err != nil {
		return report, err
	}
	weights, weightsOK, err := doctorLoad(kv, store.KeyWeightHistory, []model.WeightEntry{}, &report)
	if err != nil {
		return report, err
	}
	if _, _, err := doctorLoad[*model.User](kv, store.KeyUser, nil, &report); err != nil {
		return report, err
	}
	if _, _, err := doctorLoad[*model.UserGoals](kv, store.KeyUserGoals, nil, &report); err != nil {
		return report, err
	}
	if _, _, err := doctorLoad(kv, store.KeyChatHistory, []model.ChatMessage{}, &report); err != nil {
		return report, err
	}
	if _, _, err := doctorLoad(kv, store.KeyTheme, model.ThemeLight, &report); err != nil {
		return report, err
	}

	seen := map[string]bool{}
	for _, l := range logs {
		if seen[l.Date] {
			report.DuplicateLogDates++
		}
		seen[l.Date] = true
		if nutrition.ValidDate(l.Date) != nil {
			report.InvalidLogDates++
		}
		if l.WaterIntake < 0 {
			report.NegativeWaterLogs++
		}
	}
	seenWeight := map[string]bool{}
	for i, w := range weights {
		if seenWeight[w.Date] {
			report.DuplicateWeightDates++
		}
		seenWeight[w.Date] = true
		if i > 0 && weights[i-1].Date > w.Date {
			report.UnsortedWeights = true
		}
	}

	if !fix || report.Healthy() {
		return report, nil
	}
	for _, key := range report.UndecodableSlices {
		if err := kv.Delete(key); err != nil {
			return report, fmt.Errorf("doctor fix delete %s: %w", key, err)
		}
	}
	if logsOK && (report.DuplicateLogDates > 0 || report.NegativeWaterLogs > 0) {
		if err := store.Save(kv, store.KeyDailyLogs, mergeLogs(logs)); err != nil {
			return report, fmt.Errorf("doctor fix logs: %w", err)
		}
	}
	if weightsOK && (report.DuplicateWeightDates > 0 || report.UnsortedWeights) {
		var fixed []model.WeightEntry
		for _, w := range weights {
			fixed = nutrition.UpsertWeight(fixed, w)
		}
		if fixed == nil {
			fixed = []model.WeightEntry{}
		}
		if err := store.Save(kv, store.KeyWeightHistory, fixed); err != nil {
			return report, fmt.Errorf("doctor fix weights: %w", err)
		}
	}
	report.Fixed = true
	return report, nil
}

func doctorLoad[T any](kv store.KV, key string, fallback T, report *DoctorReport) (T, bool, error) {
	_, ok, err := kv.Get(key)
	if err != nil {
		return fallback, false, fmt.Errorf("doctor read %s: %w", key, err)
	}
	if !ok {
		return fallback, false, nil
	}
	v, err := store.Load(kv, key, fallback)
	if err != nil {
		report.UndecodableSlices = append(report.UndecodableSlices, key)
		return fallback, false, nil
	}
	return v, true, nil
}

// mergeLogs folds logs sharing a date into the first one, in order.
func mergeLogs(logs []model.DailyLog) []model.DailyLog {
	out := make([]model.DailyLog, 0, len(logs))
	for _, l := range logs {
		var i int
		out, i = nutrition.EnsureTodayLog(out, l.Date)
		for _, m := range model.MealTypes {
			out[i] = nutrition.AddFoodsToMeal(out[i], m, l.Meals[m])
		}
		for _, e := range l.Exercises {
			out[i] = nutrition.AddExercise(out[i], e)
		}
		out[i] = nutrition.AdjustWater(out[i], l.WaterIntake)
	}
	return out
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
