package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"booktracker/internal/config"
	"booktracker/internal/database"
	"booktracker/internal/database/books"
	"booktracker/internal/database/sessions"
	"booktracker/internal/scheduler"
)

// BackupCommand takes a one-off timestamped CSV snapshot, the same one the
// in-server scheduler produces on its cron schedule.
type BackupCommand struct {
	DatabasePath string
	BackupDir    string
}

func NewBackupCommand() *BackupCommand {
	return &BackupCommand{}
}

func (cmd *BackupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the tracker database file")
	fs.StringVar(&cmd.BackupDir, "dir", "./backups", "Directory to write the timestamped snapshot into")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s backup [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Write a timestamped CSV snapshot of the catalog and reading log.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *BackupCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	if _, err := os.Stat(absDBPath); os.IsNotExist(err) {
		return fmt.Errorf("database file not found: %s", absDBPath)
	}

	db, err := database.NewDatabase(absDBPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := os.MkdirAll(cmd.BackupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	bookStore := books.NewRepository(db.DB)
	sessionStore := sessions.NewRepository(db.DB)

	s := scheduler.NewBackupScheduler(bookStore, sessionStore, cmd.BackupDir, "")
	if err := s.RunBackup(); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("Backup written to %s\n", cmd.BackupDir)
	return nil
}
