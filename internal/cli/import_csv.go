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
	"booktracker/internal/importers"
)

// ImportCSVCommand restores books and reading sessions from CSV files
// produced by export-csv (or hand-written ones with the same headers).
type ImportCSVCommand struct {
	BooksPath    string
	SessionsPath string
	DatabasePath string
	Verbose      bool
}

func NewImportCSVCommand() *ImportCSVCommand {
	return &ImportCSVCommand{}
}

func (cmd *ImportCSVCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-csv", flag.ExitOnError)

	fs.StringVar(&cmd.BooksPath, "books", "", "Path to a books CSV file")
	fs.StringVar(&cmd.SessionsPath, "sessions", "", "Path to a sessions CSV file")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the tracker database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-csv [-books <path>] [-sessions <path>] [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books and reading sessions from CSV files.\n\n")
		fmt.Fprintf(os.Stderr, "Rows are imported one by one; a bad row is reported and skipped without\n")
		fmt.Fprintf(os.Stderr, "aborting the rest of the file. Import books before sessions so that the\n")
		fmt.Fprintf(os.Stderr, "book_id column references existing books.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-csv -books books.csv -sessions sessions.csv\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.BooksPath == "" && cmd.SessionsPath == "" {
		return fmt.Errorf("at least one of -books or -sessions must be provided")
	}

	return nil
}

func (cmd *ImportCSVCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	db, err := database.NewDatabase(cmd.DatabasePath, false)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// When both files come from the same export, the books import renumbers
	// ids and the sessions import has to follow that renumbering.
	var bookIDs map[uint]uint

	if cmd.BooksPath != "" {
		store := books.NewRepository(db.DB)
		result, err := importFile(cmd.BooksPath, func(f *os.File) (*importers.Result, error) {
			return importers.ImportBooksCSV(f, store)
		})
		if err != nil {
			return err
		}
		bookIDs = result.BookIDs
		cmd.printResult("books", result)
	}

	if cmd.SessionsPath != "" {
		store := sessions.NewRepository(db.DB)
		result, err := importFile(cmd.SessionsPath, func(f *os.File) (*importers.Result, error) {
			return importers.ImportSessionsCSV(f, store, bookIDs)
		})
		if err != nil {
			return err
		}
		cmd.printResult("sessions", result)
	}

	return nil
}

func importFile(path string, run func(*os.File) (*importers.Result, error)) (*importers.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	result, err := run(f)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return result, nil
}

func (cmd *ImportCSVCommand) printResult(what string, result *importers.Result) {
	fmt.Printf("Imported %d/%d %s\n", result.Imported, result.TotalRows, what)
	if len(result.Errors) > 0 {
		fmt.Printf("%d rows skipped:\n", len(result.Errors))
		for _, rowErr := range result.Errors {
			if cmd.Verbose || len(result.Errors) <= 20 {
				fmt.Printf("  [line %d] %s: %s\n", rowErr.Line, rowErr.Field, rowErr.Message)
			}
		}
	}
}
