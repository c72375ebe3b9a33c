package cli

import (
	"context"
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
	"github.com/mrlokans/librarium/internal/importers"
)

// FeedImportCommand handles importing books from an RSS/Atom/OPDS feed.
type FeedImportCommand struct {
	FeedURL      string
	FilePath     string
	DatabasePath string
	DryRun       bool
}

func NewFeedImportCommand() *FeedImportCommand {
	return &FeedImportCommand{}
}

func (cmd *FeedImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("feed-import", flag.ExitOnError)

	fs.StringVar(&cmd.FeedURL, "url", "", "Feed URL to import from")
	fs.StringVar(&cmd.FilePath, "file", "", "Path to a local feed file to import from")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s feed-import (-url <url> | -file <path>) [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from an RSS, Atom or OPDS feed into the catalog.\n\n")
		fmt.Fprintf(os.Stderr, "Each feed entry becomes a book; the first entry author becomes the\n")
		fmt.Fprintf(os.Stderr, "catalog author, created on first sight. Entries already in the catalog\n")
		fmt.Fprintf(os.Stderr, "(same ISBN, or same title and author) are skipped.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import from an OPDS catalog feed:\n")
		fmt.Fprintf(os.Stderr, "  %s feed-import -url https://standardebooks.org/feeds/opds/all\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview a local feed file without writing anything:\n")
		fmt.Fprintf(os.Stderr, "  %s feed-import -file catalog.xml -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FeedURL == "" && cmd.FilePath == "" {
		return fmt.Errorf("one of -url or -file must be provided")
	}
	if cmd.FeedURL != "" && cmd.FilePath != "" {
		return fmt.Errorf("only one of -url or -file may be provided")
	}

	return nil
}

func (cmd *FeedImportCommand) Run() error {
	fmt.Println("Feed Import")
	fmt.Println("===========")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	source := cmd.FeedURL
	if source == "" {
		if _, err := os.Stat(cmd.FilePath); os.IsNotExist(err) {
			return fmt.Errorf("feed file not found: %s", cmd.FilePath)
		}
		source = cmd.FilePath
	}
	fmt.Printf("Feed: %s\n", source)

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath
	fmt.Printf("Database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	importer := importers.NewFeedImporter(
		authors.NewRepository(db.DB),
		books.NewRepository(db.DB),
	)
	importer.SetDryRun(cmd.DryRun)

	fmt.Println("\nImporting feed entries...")

	var result *importers.ImportResult
	if cmd.FeedURL != "" {
		result, err = importer.ImportURL(context.Background(), cmd.FeedURL)
	} else {
		var file *os.File
		file, err = os.Open(cmd.FilePath)
		if err != nil {
			return fmt.Errorf("failed to open feed file: %w", err)
		}
		defer file.Close()
		result, err = importer.ImportReader(file)
	}
	if err != nil {
		if !cmd.DryRun {
			activityService := activitysvc.NewService(activitydb.NewRepository(db.DB))
			activityService.LogImport(fmt.Sprintf("Import from %s failed", source), 0, 0, err)
		}
		return err
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Imported: %d\n", result.Imported)
	fmt.Printf("Skipped: %d\n", result.Skipped)
	if result.Failed > 0 {
		fmt.Printf("Failed: %d\n", result.Failed)
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	activityService := activitysvc.NewService(activitydb.NewRepository(db.DB))
	activityService.LogImport(fmt.Sprintf("Imported feed: %s", source), result.Imported, result.Skipped, nil)

	fmt.Println("\nImport complete!")
	return nil
}
