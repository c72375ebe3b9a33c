package http

import (
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/entities"
)

// BookStore is the catalog surface the book pages and the API work against.
type BookStore interface {
	List(opts books.ListOptions) ([]entities.Book, error)
	GetByID(id uint) (*entities.Book, error)
	Create(book *entities.Book) error
	Delete(id uint) (*books.DeleteResult, error)
}

// AuthorStore backs the author form and the authors API.
type AuthorStore interface {
	Create(author *entities.Author) error
	GetByName(name string) (*entities.Author, error)
	List() ([]entities.Author, error)
	ListNames() ([]string, error)
}
