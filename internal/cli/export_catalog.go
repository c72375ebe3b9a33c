package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	activitysvc "github.com/mrlokans/librarium/internal/activity"
	"github.com/mrlokans/librarium/internal/config"
	"github.com/mrlokans/librarium/internal/database"
	activitydb "github.com/mrlokans/librarium/internal/database/activity"
	"github.com/mrlokans/librarium/internal/database/authors"
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/exporters"
)

// ExportCatalogCommand handles one-shot CSV exports of the catalog.
type ExportCatalogCommand struct {
	DatabasePath string
	OutputDir    string
	Timestamped  bool
	Verbose      bool
}

func NewExportCatalogCommand() *ExportCatalogCommand {
	return &ExportCatalogCommand{}
}

func (cmd *ExportCatalogCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.StringVar(&cmd.OutputDir, "output", config.DefaultSnapshotDir, "Output directory for the CSV files")
	fs.BoolVar(&cmd.Timestamped, "timestamped", false, "Write into a timestamped snapshot subdirectory instead of overwriting")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export the catalog as books.csv and authors.csv.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Export the default database to ./exports:\n")
		fmt.Fprintf(os.Stderr, "  %s export\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Keep dated snapshots instead of overwriting:\n")
		fmt.Fprintf(os.Stderr, "  %s export -output ~/backups/catalog -timestamped\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *ExportCatalogCommand) Run() error {
	fmt.Println("Catalog Export")
	fmt.Println("==============")

	// Verify the database exists; opening a missing path would silently
	// create an empty catalog.
	if _, err := os.Stat(cmd.DatabasePath); os.IsNotExist(err) {
		return fmt.Errorf("database not found: %s", cmd.DatabasePath)
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	absOutputDir, err := filepath.Abs(cmd.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for output: %w", err)
	}
	cmd.OutputDir = absOutputDir

	fmt.Printf("Database: %s\n", cmd.DatabasePath)
	fmt.Printf("Output: %s\n", cmd.OutputDir)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	bookRepo := books.NewRepository(db.DB)
	authorRepo := authors.NewRepository(db.DB)

	bookList, err := bookRepo.List(books.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to load books: %w", err)
	}
	authorList, err := authorRepo.List()
	if err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}

	fmt.Printf("\nExporting %d books and %d authors...\n", len(bookList), len(authorList))

	exporter := exporters.NewCSVExporter(cmd.OutputDir)

	var dir string
	var result exporters.ExportResult
	if cmd.Timestamped {
		dir, result, err = exporter.ExportSnapshot(bookList, authorList)
	} else {
		dir = cmd.OutputDir
		result, err = exporter.Export(bookList, authorList)
	}

	activityService := activitysvc.NewService(activitydb.NewRepository(db.DB))
	description := fmt.Sprintf("Exported %d books and %d authors to %s",
		result.BooksExported, result.AuthorsExported, dir)
	if err != nil {
		activityService.LogExport(fmt.Sprintf("Export to %s failed", dir), err)
		return fmt.Errorf("export failed: %w", err)
	}
	activityService.LogExport(description, nil)

	if cmd.Verbose {
		fmt.Printf("  -> %s\n", filepath.Join(dir, "books.csv"))
		fmt.Printf("  -> %s\n", filepath.Join(dir, "authors.csv"))
	}

	fmt.Println("\n=== Export Summary ===")
	fmt.Printf("Books exported: %d\n", result.BooksExported)
	fmt.Printf("Authors exported: %d\n", result.AuthorsExported)
	fmt.Printf("Directory: %s\n", dir)

	fmt.Println("\nExport complete!")
	return nil
}
