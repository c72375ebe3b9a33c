// Package importers brings external book lists into the catalog.
//
// The feed importer reads RSS, Atom and JSON feeds where each entry
// describes a book, creating authors on demand and skipping entries
// already present in the catalog.
package importers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/entities"
	"github.com/mrlokans/librarium/internal/metadata"
)

const (
	userAgent     = "Librarium/1.0 (https://github.com/mrlokans/librarium)"
	isbnURNPrefix = "urn:isbn:"
)

// AuthorStore is the slice of the authors repository the importer uses.
type AuthorStore interface {
	GetByName(name string) (*entities.Author, error)
	GetOrCreate(name string) (*entities.Author, error)
}

// BookStore is the slice of the books repository the importer uses.
type BookStore interface {
	GetByISBN(isbn string) (*entities.Book, error)
	ExistsByTitleAndAuthor(title string, authorID uint) (bool, error)
	Create(book *entities.Book) error
}

// ImportResult summarizes a feed import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

type importOutcome int

const (
	outcomeImported importOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// FeedImporter turns feed entries into catalog books. Entries carry a
// title, an optional author (first one wins), an optional published
// year and an optional ISBN as a urn:isbn: identifier. Books without a
// year are left at 0 so metadata enrichment can fill them in later.
type FeedImporter struct {
	authors AuthorStore
	books   BookStore
	parser  *gofeed.Parser
	dryRun  bool
}

// NewFeedImporter creates a feed importer over the given repositories.
func NewFeedImporter(authors AuthorStore, books BookStore) *FeedImporter {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: 30 * time.Second}

	return &FeedImporter{
		authors: authors,
		books:   books,
		parser:  parser,
	}
}

// SetDryRun toggles dry-run mode: entries are parsed and checked
// against the catalog, but nothing is written.
func (i *FeedImporter) SetDryRun(dryRun bool) {
	i.dryRun = dryRun
}

// ImportURL fetches a feed over HTTP and imports its entries.
func (i *FeedImporter) ImportURL(ctx context.Context, feedURL string) (*ImportResult, error) {
	feed, err := i.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	return i.importFeed(feed), nil
}

// ImportReader imports entries from an already-open feed document.
func (i *FeedImporter) ImportReader(r io.Reader) (*ImportResult, error) {
	feed, err := i.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return i.importFeed(feed), nil
}

func (i *FeedImporter) importFeed(feed *gofeed.Feed) *ImportResult {
	result := &ImportResult{}

	// Tracks ISBNs and title|author pairs handled during this run, so
	// feeds listing the same book twice import it once. In dry-run mode
	// this is the only dedup across entries.
	seen := make(map[string]bool)

	for _, item := range feed.Items {
		switch i.importItem(item, seen) {
		case outcomeImported:
			result.Imported++
		case outcomeSkipped:
			result.Skipped++
		case outcomeFailed:
			result.Failed++
		}
	}

	return result
}

func (i *FeedImporter) importItem(item *gofeed.Item, seen map[string]bool) importOutcome {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		log.Printf("[IMPORT] Skipping entry without a title")
		return outcomeFailed
	}

	authorName := "Unknown"
	if len(item.Authors) > 0 {
		if name := strings.TrimSpace(item.Authors[0].Name); name != "" {
			authorName = name
		}
	}

	isbn := extractISBN(item)
	pairKey := strings.ToLower(authorName) + "|" + strings.ToLower(title)

	if isbn != "" {
		if seen[isbn] {
			return outcomeSkipped
		}
		_, err := i.books.GetByISBN(isbn)
		if err == nil {
			seen[isbn] = true
			return outcomeSkipped
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[IMPORT] Failed ISBN lookup for %q: %v", title, err)
			return outcomeFailed
		}
	}

	if seen[pairKey] {
		return outcomeSkipped
	}

	if i.dryRun {
		return i.checkItem(title, authorName, isbn, pairKey, seen)
	}

	author, err := i.authors.GetOrCreate(authorName)
	if err != nil {
		log.Printf("[IMPORT] Failed to resolve author %q: %v", authorName, err)
		return outcomeFailed
	}

	exists, err := i.books.ExistsByTitleAndAuthor(title, author.ID)
	if err != nil {
		log.Printf("[IMPORT] Failed duplicate check for %q: %v", title, err)
		return outcomeFailed
	}
	if exists {
		seen[pairKey] = true
		return outcomeSkipped
	}

	book := &entities.Book{
		Title:    title,
		ISBN:     isbn,
		AuthorID: author.ID,
		CoverURL: metadata.CoverURLForISBN(isbn),
	}
	if item.PublishedParsed != nil {
		book.Year = item.PublishedParsed.Year()
	}

	if err := i.books.Create(book); err != nil {
		log.Printf("[IMPORT] Failed to create book %q: %v", title, err)
		return outcomeFailed
	}

	seen[pairKey] = true
	if isbn != "" {
		seen[isbn] = true
	}
	return outcomeImported
}

// checkItem is the dry-run variant of importItem: same catalog checks,
// no writes.
func (i *FeedImporter) checkItem(title, authorName, isbn, pairKey string, seen map[string]bool) importOutcome {
	author, err := i.authors.GetByName(authorName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// New author, so the book is new too.
			i.markSeen(seen, isbn, pairKey)
			return outcomeImported
		}
		log.Printf("[IMPORT] Failed to look up author %q: %v", authorName, err)
		return outcomeFailed
	}

	exists, err := i.books.ExistsByTitleAndAuthor(title, author.ID)
	if err != nil {
		log.Printf("[IMPORT] Failed duplicate check for %q: %v", title, err)
		return outcomeFailed
	}
	if exists {
		seen[pairKey] = true
		return outcomeSkipped
	}

	i.markSeen(seen, isbn, pairKey)
	return outcomeImported
}

func (i *FeedImporter) markSeen(seen map[string]bool, isbn, pairKey string) {
	seen[pairKey] = true
	if isbn != "" {
		seen[isbn] = true
	}
}

// extractISBN pulls an ISBN from the entry's Dublin Core identifiers or
// its GUID. Book feeds commonly carry urn:isbn: URNs in either place.
func extractISBN(item *gofeed.Item) string {
	var candidates []string
	if item.DublinCoreExt != nil {
		candidates = append(candidates, item.DublinCoreExt.Identifier...)
	}
	if exts, ok := item.Extensions["dc"]; ok {
		for _, e := range exts["identifier"] {
			candidates = append(candidates, e.Value)
		}
	}
	candidates = append(candidates, item.GUID)

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if len(candidate) < len(isbnURNPrefix) {
			continue
		}
		if !strings.EqualFold(candidate[:len(isbnURNPrefix)], isbnURNPrefix) {
			continue
		}
		if isbn := metadata.NormalizeISBN(candidate[len(isbnURNPrefix):]); isbn != "" {
			return isbn
		}
	}
	return ""
}
