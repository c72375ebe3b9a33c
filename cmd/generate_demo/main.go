// Command generate_demo creates a demo catalog database with sample data
// from public domain books, ready to serve with DEMO_MODE=true.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	activitysvc "github.com/mrlokans/librarium/internal/activity"
	"github.com/mrlokans/librarium/internal/cli"
	"github.com/mrlokans/librarium/internal/database"
	activitydb "github.com/mrlokans/librarium/internal/database/activity"
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/entities"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}

	// Populate via the seed command so demo and seed data stay in sync
	seed := cli.NewSeedCommand()
	if err := seed.ParseFlags([]string{"-db", *dbPath, "-verbose"}); err != nil {
		log.Fatalf("Failed to parse seed flags: %v", err)
	}
	if err := seed.Run(); err != nil {
		log.Fatalf("Failed to seed demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open demo database: %v", err)
	}
	defer db.Close()

	backfillActivity(db)

	log.Println("Demo database generated successfully!")
}

// backfillActivity writes a creation event per book, spread over the past
// days, so the demo activity feed is not empty.
func backfillActivity(db *database.Database) {
	bookList, err := books.NewRepository(db.DB).List(books.ListOptions{})
	if err != nil {
		log.Fatalf("Failed to list seeded books: %v", err)
	}

	svc := activitysvc.NewService(activitydb.NewRepository(db.DB))
	now := time.Now()

	for i, book := range bookList {
		bookID := book.ID
		event := &entities.ActivityEvent{
			EventType:   entities.ActivityEventBookCreate,
			Description: "Added book: " + book.Title,
			EntityType:  "book",
			EntityID:    &bookID,
			Status:      entities.ActivityStatusSuccess,
			CreatedAt:   now.Add(-time.Duration(len(bookList)-i) * 7 * time.Hour),
		}
		if err := svc.Log(event); err != nil {
			log.Printf("Failed to log demo event for %s: %v", book.Title, err)
		}
	}

	log.Printf("Backfilled %d activity events", len(bookList))
}
