// Package books provides database operations for catalog books.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	list, err := repo.List(books.ListOptions{Search: "earthsea", SortBy: "year"})
package books

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/entities"
)

var (
	// ErrEmptyTitle is returned when a book is created with a blank title.
	ErrEmptyTitle = errors.New("book title cannot be empty")

	// ErrAuthorNotFound is returned when a book references an author that
	// does not exist. Nothing is written in that case.
	ErrAuthorNotFound = errors.New("author not found")

	// ErrDuplicateISBN is returned when a non-empty ISBN is already in the catalog.
	ErrDuplicateISBN = errors.New("book with this ISBN already exists")
)

// Sort keys accepted by List, mapped to ORDER BY columns.
var sortColumns = map[string]string{
	"title":  "books.title",
	"author": "authors.name",
	"year":   "books.year",
}

// ListOptions controls filtering and ordering of the catalog listing.
type ListOptions struct {
	Search    string // case-insensitive substring match over book title or author name
	SortBy    string // "title", "author" or "year"; defaults to "title"
	SortOrder string // "asc" or "desc"; defaults to "asc"
}

// DeleteResult reports what a book deletion removed. AuthorDeleted is set
// when the deleted book was the author's last and the author row went with it.
type DeleteResult struct {
	Book          entities.Book
	AuthorDeleted bool
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new book. The referenced author must exist, and a
// non-empty ISBN must not already be in the catalog; on any validation
// failure no row is written.
func (r *Repository) Create(book *entities.Book) error {
	book.Title = strings.TrimSpace(book.Title)
	if book.Title == "" {
		return ErrEmptyTitle
	}

	var author entities.Author
	if err := r.db.First(&author, book.AuthorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuthorNotFound
		}
		return fmt.Errorf("failed to look up author: %w", err)
	}

	if book.ISBN != "" {
		var existing entities.Book
		err := r.db.Where("isbn = ?", book.ISBN).First(&existing).Error
		if err == nil {
			return ErrDuplicateISBN
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for existing ISBN: %w", err)
		}
	}

	if err := r.db.Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetByID retrieves a book with its author preloaded.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Preload("Author").First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByISBN retrieves a book by exact ISBN.
func (r *Repository) GetByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// ExistsByTitleAndAuthor reports whether the author already has a book
// with the given title.
func (r *Repository) ExistsByTitleAndAuthor(title string, authorID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).
		Where("title = ? AND author_id = ?", title, authorID).
		Count(&count).Error
	return count > 0, err
}

// List returns catalog books joined with their authors, filtered and
// ordered per opts. Unknown sort keys fall back to title ascending.
func (r *Repository) List(opts ListOptions) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{}).
		Joins("JOIN authors ON authors.id = books.author_id").
		Preload("Author")

	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		query = query.Where(
			"LOWER(books.title) LIKE LOWER(?) OR LOWER(authors.name) LIKE LOWER(?)",
			pattern, pattern,
		)
	}

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = sortColumns["title"]
	}
	direction := "ASC"
	if strings.EqualFold(opts.SortOrder, "desc") {
		direction = "DESC"
	}

	var books []entities.Book
	if err := query.Order(column + " " + direction).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// UpdateMetadata updates specific book fields, used by metadata enrichment.
func (r *Repository) UpdateMetadata(id uint, fields map[string]any) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a book. When the book was its author's last, the author
// row is removed in the same transaction.
func (r *Repository) Delete(id uint) (*DeleteResult, error) {
	var book entities.Book
	if err := r.db.Preload("Author").First(&book, id).Error; err != nil {
		return nil, err
	}

	result := &DeleteResult{Book: book}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entities.Book{}, id).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&entities.Book{}).
			Where("author_id = ?", book.AuthorID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Delete(&entities.Author{}, book.AuthorID).Error; err != nil {
				return err
			}
			result.AuthorDeleted = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}
	return result, nil
}
