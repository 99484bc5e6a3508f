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
	"booktracker/internal/exporters"
)

// ExportCSVCommand dumps the catalog and reading log to CSV files.
type ExportCSVCommand struct {
	DatabasePath string
	OutputDir    string
	Verbose      bool
}

func NewExportCSVCommand() *ExportCSVCommand {
	return &ExportCSVCommand{}
}

func (cmd *ExportCSVCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export-csv", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the tracker database file")
	fs.StringVar(&cmd.OutputDir, "output", ".", "Directory to write books.csv and sessions.csv into")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export-csv [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export the book catalog and reading session log to CSV files.\n\n")
		fmt.Fprintf(os.Stderr, "Writes books.csv and sessions.csv to the output directory. The files\n")
		fmt.Fprintf(os.Stderr, "can be re-imported with the import-csv command.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export-csv -output ~/backups\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *ExportCSVCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	if _, err := os.Stat(cmd.DatabasePath); os.IsNotExist(err) {
		return fmt.Errorf("database file not found: %s", cmd.DatabasePath)
	}

	db, err := database.NewDatabase(cmd.DatabasePath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := os.MkdirAll(cmd.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	bookStore := books.NewRepository(db.DB)
	sessionStore := sessions.NewRepository(db.DB)

	allBooks, err := bookStore.List(books.Filter{})
	if err != nil {
		return fmt.Errorf("failed to load books: %w", err)
	}
	allSessions, err := sessionStore.List(sessions.Filter{})
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	booksPath := filepath.Join(cmd.OutputDir, "books.csv")
	if err := writeCSVFile(booksPath, func(f *os.File) error {
		return exporters.WriteBooksCSV(f, allBooks)
	}); err != nil {
		return err
	}
	fmt.Printf("Wrote %d books to %s\n", len(allBooks), booksPath)

	sessionsPath := filepath.Join(cmd.OutputDir, "sessions.csv")
	if err := writeCSVFile(sessionsPath, func(f *os.File) error {
		return exporters.WriteSessionsCSV(f, allSessions)
	}); err != nil {
		return err
	}
	fmt.Printf("Wrote %d sessions to %s\n", len(allSessions), sessionsPath)

	return nil
}

func writeCSVFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
