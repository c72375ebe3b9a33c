// Package authors provides database operations for catalog authors.
//
// Usage:
//
//	repo := authors.NewRepository(db)
//	author := &entities.Author{Name: "Ursula K. Le Guin"}
//	err := repo.Create(author)
package authors

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/entities"
)

var (
	// ErrEmptyName is returned when an author is created with a blank name.
	ErrEmptyName = errors.New("author name cannot be empty")

	// ErrDuplicateName is returned when an author with the same name already exists.
	ErrDuplicateName = errors.New("author already exists")
)

// Repository provides author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new author. The name is trimmed and must be non-empty
// and unique across the catalog.
func (r *Repository) Create(author *entities.Author) error {
	author.Name = strings.TrimSpace(author.Name)
	if author.Name == "" {
		return ErrEmptyName
	}

	var existing entities.Author
	err := r.db.Where("name = ?", author.Name).First(&existing).Error
	if err == nil {
		return ErrDuplicateName
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for existing author: %w", err)
	}

	if err := r.db.Create(author).Error; err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}
	return nil
}

// GetOrCreate returns the author with the given name, creating it first
// when no such author exists. Used by feed imports, where authors arrive
// as free-form entry metadata.
func (r *Repository) GetOrCreate(name string) (*entities.Author, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	var author entities.Author
	err := r.db.Where("name = ?", name).First(&author).Error
	if err == nil {
		return &author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up author: %w", err)
	}

	author = entities.Author{Name: name}
	if err := r.db.Create(&author).Error; err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return &author, nil
}

// GetByID returns a single author by primary key.
func (r *Repository) GetByID(id uint) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// GetByName returns a single author by exact name.
func (r *Repository) GetByName(name string) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.Where("name = ?", name).First(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// List returns all authors ordered by name.
func (r *Repository) List() ([]entities.Author, error) {
	var authors []entities.Author
	if err := r.db.Order("name ASC").Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, nil
}

// ListNames returns all author names ordered alphabetically, for form dropdowns.
func (r *Repository) ListNames() ([]string, error) {
	var names []string
	err := r.db.Model(&entities.Author{}).Order("name ASC").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list author names: %w", err)
	}
	return names, nil
}

// CountBooks returns the number of books referencing the author.
func (r *Repository) CountBooks(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// Delete removes an author row. Books referencing the author are not touched;
// callers are expected to delete an author only once their books are gone.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Author{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete author: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
