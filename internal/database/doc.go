// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── authors/         # Author CRUD operations
//	├── books/           # Book CRUD, listing, search and sorting
//	└── activity/        # Catalog activity event log
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./data/library.db")
//
//	// Create domain-specific repositories
//	authorsRepo := authors.NewRepository(db.DB)
//	booksRepo := books.NewRepository(db.DB)
//
//	// Use repositories
//	author, err := authorsRepo.GetByName("Ursula K. Le Guin")
//	list, err := booksRepo.List(books.ListOptions{Search: "dispossessed"})
//
// Controllers depend on narrow interfaces declared at the point of use, so
// repositories only need to satisfy the methods a given controller calls.
package database
