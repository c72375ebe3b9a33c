// Package exporters writes catalog snapshots to plain files that survive
// the database, one CSV per entity.
package exporters

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mrlokans/librarium/internal/entities"
)

// ExportResult summarizes a snapshot run.
type ExportResult struct {
	BooksExported   int `json:"books_exported"`
	AuthorsExported int `json:"authors_exported"`
}

// CSVExporter writes the catalog as books.csv and authors.csv.
type CSVExporter struct {
	outputDir string
}

// NewCSVExporter creates an exporter targeting the given directory.
func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{outputDir: outputDir}
}

// OutputDir returns the exporter's target directory.
func (e *CSVExporter) OutputDir() string {
	return e.outputDir
}

// Export writes the catalog into the output directory, creating it when
// missing. Existing snapshot files are overwritten.
func (e *CSVExporter) Export(books []entities.Book, authors []entities.Author) (ExportResult, error) {
	return e.exportTo(e.outputDir, books, authors)
}

// ExportSnapshot writes the catalog into a timestamped subdirectory of the
// output directory and returns its path.
func (e *CSVExporter) ExportSnapshot(books []entities.Book, authors []entities.Author) (string, ExportResult, error) {
	dir := filepath.Join(e.outputDir, "snapshot-"+time.Now().Format("20060102-150405"))
	result, err := e.exportTo(dir, books, authors)
	return dir, result, err
}

func (e *CSVExporter) exportTo(dir string, books []entities.Book, authors []entities.Author) (ExportResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ExportResult{}, fmt.Errorf("create export directory: %w", err)
	}

	result := ExportResult{}

	if err := e.writeBooks(filepath.Join(dir, "books.csv"), books); err != nil {
		return result, err
	}
	result.BooksExported = len(books)

	if err := e.writeAuthors(filepath.Join(dir, "authors.csv"), authors, books); err != nil {
		return result, err
	}
	result.AuthorsExported = len(authors)

	return result, nil
}

func (e *CSVExporter) writeBooks(path string, books []entities.Book) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "title", "isbn", "year", "author", "cover_url"}); err != nil {
		return err
	}

	for _, book := range books {
		record := []string{
			strconv.FormatUint(uint64(book.ID), 10),
			book.Title,
			book.ISBN,
			formatYear(book.Year),
			book.Author.Name,
			book.CoverURL,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write book %d: %w", book.ID, err)
		}
	}

	w.Flush()
	return w.Error()
}

func (e *CSVExporter) writeAuthors(path string, authors []entities.Author, books []entities.Book) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	// Book counts derived from the exported books, not extra queries
	counts := make(map[uint]int, len(authors))
	for _, book := range books {
		counts[book.AuthorID]++
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "birth_date", "death_date", "book_count"}); err != nil {
		return err
	}

	for _, author := range authors {
		record := []string{
			strconv.FormatUint(uint64(author.ID), 10),
			author.Name,
			author.BirthDate,
			author.DeathDate,
			strconv.Itoa(counts[author.ID]),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write author %d: %w", author.ID, err)
		}
	}

	w.Flush()
	return w.Error()
}

// formatYear renders unknown years as an empty cell instead of 0.
func formatYear(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
