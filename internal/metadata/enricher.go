package metadata

import (
	"context"
	"fmt"

	"github.com/mrlokans/librarium/internal/entities"
)

// MetadataProvider defines the interface for fetching book metadata.
type MetadataProvider interface {
	SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}

// BookStore defines the interface for reading and updating catalogued books.
type BookStore interface {
	GetByID(id uint) (*entities.Book, error)
	UpdateMetadata(id uint, fields map[string]any) error
}

// CoverInvalidator defines the interface for invalidating cached covers.
type CoverInvalidator interface {
	InvalidateCover(bookID uint) error
}

// EnrichmentResult contains the result of an enrichment operation.
type EnrichmentResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
	SearchMethod  string         `json:"search_method"` // "isbn" or "title"
}

// Enricher fills missing book fields (publication year, cover) from an
// external metadata source.
type Enricher struct {
	provider         MetadataProvider
	books            BookStore
	coverInvalidator CoverInvalidator
}

// NewEnricher creates a new Enricher with the given metadata provider and book store.
func NewEnricher(provider MetadataProvider, books BookStore) *Enricher {
	return &Enricher{
		provider: provider,
		books:    books,
	}
}

// SetCoverInvalidator sets the cover cache invalidator (optional).
func (e *Enricher) SetCoverInvalidator(invalidator CoverInvalidator) {
	e.coverInvalidator = invalidator
}

// EnrichBook fetches metadata for a book and fills its missing fields.
// It tries ISBN first (if available), then falls back to title+author search.
// Fields the book already has are left untouched; only an empty year or a
// placeholder cover get overwritten.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*EnrichmentResult, error) {
	book, err := e.books.GetByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	var metadata *BookMetadata
	var searchMethod string

	// Try ISBN first if available
	if book.ISBN != "" {
		metadata, err = e.provider.SearchByISBN(ctx, book.ISBN)
		if err == nil {
			searchMethod = "isbn"
		}
	}

	// Fall back to title+author search
	if metadata == nil {
		metadata, err = e.provider.SearchByTitle(ctx, book.Title, book.Author.Name)
		if err != nil {
			return nil, fmt.Errorf("metadata search failed: %w", err)
		}
		searchMethod = "title"
	}

	updates, fieldsUpdated := e.buildUpdates(book, metadata)

	if len(fieldsUpdated) > 0 {
		// Invalidate cached cover if cover URL changed
		if _, ok := updates["cover_url"]; ok && e.coverInvalidator != nil {
			_ = e.coverInvalidator.InvalidateCover(bookID)
		}

		if err := e.books.UpdateMetadata(bookID, updates); err != nil {
			return nil, fmt.Errorf("update book metadata: %w", err)
		}

		// Refresh book from database
		book, err = e.books.GetByID(bookID)
		if err != nil {
			return nil, fmt.Errorf("refresh book: %w", err)
		}
	}

	return &EnrichmentResult{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
		Source:        "openlibrary",
		SearchMethod:  searchMethod,
	}, nil
}

// buildUpdates compares existing book data with fetched metadata and returns
// only the fields that should be filled in.
func (e *Enricher) buildUpdates(book *entities.Book, metadata *BookMetadata) (map[string]any, []string) {
	updates := make(map[string]any)
	var fieldsUpdated []string

	// Fill publication year if not set
	if book.Year == 0 && metadata.PublicationYear > 0 {
		updates["year"] = metadata.PublicationYear
		fieldsUpdated = append(fieldsUpdated, "year")
	}

	// Replace an empty or placeholder cover with a real one
	missingCover := book.CoverURL == "" || book.CoverURL == DefaultCoverURL()
	if missingCover && metadata.CoverURL != "" && metadata.CoverURL != book.CoverURL {
		updates["cover_url"] = metadata.CoverURL
		fieldsUpdated = append(fieldsUpdated, "cover_url")
	}

	return updates, fieldsUpdated
}
