package auranut

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/service"
)

var (
	backupDir     string
	backupOut     string
	restoreLatest bool
	restoreForce  bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the database to checksummed backup files",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Back up the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := resolveDBPath()
		if err != nil {
			return err
		}
		info, err := service.CreateBackup(db, service.BackupTarget(db, backupDir, backupOut, time.Now()))
		if err != nil {
			return err
		}
		printBackup(cmd, "Created backup", info)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := resolveDBPath()
		if err != nil {
			return err
		}
		items, err := service.ListBackups(service.BackupDir(db, backupDir))
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No backups")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "FILE\tSIZE\tCREATED\tCHECKSUM")
		for _, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", it.Path, it.SizeBytes, it.CreatedAt.Format(time.RFC3339), it.Checksum)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Replace the database with a backup",
	Long:  "Replace the database with a backup. With --force the current database is backed up first, since logout and import cannot be undone otherwise.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := resolveDBPath()
		if err != nil {
			return err
		}
		var src string
		switch {
		case len(args) == 1 && restoreLatest:
			return fmt.Errorf("pass a backup file or --latest, not both")
		case len(args) == 1:
			src = strings.TrimSpace(args[0])
		case restoreLatest:
			latest, err := service.LatestBackup(service.BackupDir(db, backupDir))
			if err != nil {
				return err
			}
			src = latest.Path
		default:
			return fmt.Errorf("a backup file or --latest is required")
		}

		if _, err := os.Stat(db); err == nil && restoreForce {
			name := strings.TrimSuffix(service.BackupFileName(time.Now()), ".db") + "-pre-restore.db"
			saved, err := service.CreateBackup(db, filepath.Join(service.BackupDir(db, backupDir), name))
			if err != nil {
				return fmt.Errorf("save current database: %w", err)
			}
			printBackup(cmd, "Saved current database", saved)
		}
		if err := service.RestoreBackup(src, db, restoreForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", db, src)
		return nil
	},
}

func printBackup(cmd *cobra.Command, label string, info service.BackupInfo) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, info.Path)
	fmt.Fprintf(cmd.OutOrStdout(), "Checksum: %s\n", info.Checksum)
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)

	backupCmd.PersistentFlags().StringVar(&backupDir, "dir", "", "Backup directory (default: backups/ next to the database)")
	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Backup file path (overrides --dir)")
	backupRestoreCmd.Flags().BoolVar(&restoreLatest, "latest", false, "Restore the newest backup in --dir")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite the existing database")
}
