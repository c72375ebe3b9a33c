package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/librarium/internal/config"
	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/database/authors"
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/entities"
	"github.com/mrlokans/librarium/internal/metadata"
)

// SeedCommand populates a catalog database with sample data.
type SeedCommand struct {
	DatabasePath string
	Verbose      bool
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Populate a catalog database with sample public domain books.\n\n")
		fmt.Fprintf(os.Stderr, "Safe to run repeatedly: authors and books that are already in the\n")
		fmt.Fprintf(os.Stderr, "catalog are skipped.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *SeedCommand) Run() error {
	fmt.Println("Catalog Seed")
	fmt.Println("============")

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

	authorRepo := authors.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)

	fmt.Println("\nSeeding sample catalog...")

	var addedAuthors, addedBooks, skipped int

	for _, sample := range sampleCatalog() {
		author := &entities.Author{
			Name:      sample.Name,
			BirthDate: sample.BirthDate,
			DeathDate: sample.DeathDate,
		}

		err := authorRepo.Create(author)
		switch {
		case err == nil:
			addedAuthors++
			if cmd.Verbose {
				fmt.Printf("  -> Added author %s\n", author.Name)
			}
		case errors.Is(err, authors.ErrDuplicateName):
			author, err = authorRepo.GetByName(sample.Name)
			if err != nil {
				return fmt.Errorf("failed to look up author %q: %w", sample.Name, err)
			}
		default:
			return fmt.Errorf("failed to create author %q: %w", sample.Name, err)
		}

		for _, sampleBook := range sample.Books {
			exists, err := bookRepo.ExistsByTitleAndAuthor(sampleBook.Title, author.ID)
			if err != nil {
				return fmt.Errorf("failed to check for existing book: %w", err)
			}
			if exists {
				skipped++
				continue
			}

			book := &entities.Book{
				Title:    sampleBook.Title,
				ISBN:     sampleBook.ISBN,
				Year:     sampleBook.Year,
				AuthorID: author.ID,
				CoverURL: metadata.CoverURLForISBN(sampleBook.ISBN),
			}

			err = bookRepo.Create(book)
			switch {
			case err == nil:
				addedBooks++
				if cmd.Verbose {
					fmt.Printf("  -> \"%s\" (%d)\n", book.Title, book.Year)
				}
			case errors.Is(err, books.ErrDuplicateISBN):
				skipped++
			default:
				return fmt.Errorf("failed to create book %q: %w", sampleBook.Title, err)
			}
		}
	}

	fmt.Println("\n=== Seed Summary ===")
	fmt.Printf("Authors added: %d\n", addedAuthors)
	fmt.Printf("Books added: %d\n", addedBooks)
	if skipped > 0 {
		fmt.Printf("Already present: %d\n", skipped)
	}

	fmt.Println("\nSeed complete!")
	return nil
}

type seedBook struct {
	Title string
	ISBN  string
	Year  int
}

type seedAuthor struct {
	Name      string
	BirthDate string
	DeathDate string
	Books     []seedBook
}

// sampleCatalog returns public domain books with common paperback ISBNs,
// so cover lookups against OpenLibrary resolve to real images.
func sampleCatalog() []seedAuthor {
	return []seedAuthor{
		{
			Name: "Jane Austen", BirthDate: "1775-12-16", DeathDate: "1817-07-18",
			Books: []seedBook{
				{Title: "Pride and Prejudice", ISBN: "9780141439518", Year: 1813},
				{Title: "Emma", ISBN: "9780141439587", Year: 1815},
			},
		},
		{
			Name: "Mary Shelley", BirthDate: "1797-08-30", DeathDate: "1851-02-01",
			Books: []seedBook{
				{Title: "Frankenstein", ISBN: "9780141439471", Year: 1818},
			},
		},
		{
			Name: "Herman Melville", BirthDate: "1819-08-01", DeathDate: "1891-09-28",
			Books: []seedBook{
				{Title: "Moby-Dick", ISBN: "9780142437247", Year: 1851},
			},
		},
		{
			Name: "Charlotte Brontë", BirthDate: "1816-04-21", DeathDate: "1855-03-31",
			Books: []seedBook{
				{Title: "Jane Eyre", ISBN: "9780141441146", Year: 1847},
			},
		},
		{
			Name: "Emily Brontë", BirthDate: "1818-07-30", DeathDate: "1848-12-19",
			Books: []seedBook{
				{Title: "Wuthering Heights", ISBN: "9780141439556", Year: 1847},
			},
		},
		{
			Name: "Leo Tolstoy", BirthDate: "1828-09-09", DeathDate: "1910-11-20",
			Books: []seedBook{
				{Title: "Anna Karenina", ISBN: "9780140449174", Year: 1878},
			},
		},
		{
			Name: "Fyodor Dostoevsky", BirthDate: "1821-11-11", DeathDate: "1881-02-09",
			Books: []seedBook{
				{Title: "Crime and Punishment", ISBN: "9780140449136", Year: 1866},
			},
		},
		{
			Name: "Oscar Wilde", BirthDate: "1854-10-16", DeathDate: "1900-11-30",
			Books: []seedBook{
				{Title: "The Picture of Dorian Gray", ISBN: "9780141439570", Year: 1890},
			},
		},
		{
			Name: "Arthur Conan Doyle", BirthDate: "1859-05-22", DeathDate: "1930-07-07",
			Books: []seedBook{
				{Title: "The Hound of the Baskervilles", ISBN: "9780140437867", Year: 1902},
			},
		},
		{
			Name: "Mark Twain", BirthDate: "1835-11-30", DeathDate: "1910-04-21",
			Books: []seedBook{
				{Title: "Adventures of Huckleberry Finn", ISBN: "9780142437179", Year: 1884},
			},
		},
	}
}
