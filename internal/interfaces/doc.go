// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - http.BookStore / http.AuthorStore: what the controllers need from the
//     repositories (internal/http/stores.go)
//   - importers.BookStore / importers.AuthorStore: the repository slice the
//     feed importer writes through (internal/importers/feed.go)
//   - scheduler.BookSource / scheduler.AuthorSource: read-only listing for
//     snapshot exports (internal/scheduler/snapshot.go)
//   - metadata.BookStore: lookup plus field updates for enrichment
//     (internal/metadata/enricher.go)
//
// ## External Service Interfaces
//
//   - MetadataProvider: book metadata from external APIs
//     (internal/metadata/enricher.go)
//
// ## Background Task Interfaces
//
//   - tasks.CoverFetcher: downloads covers into the local cache
//   - tasks.EnrichmentRecorder / tasks.ActivityEventCleaner: activity-log
//     hooks for task outcomes and retention
//   - scheduler.ExportRecorder: activity-log hook for snapshot outcomes
//
// # Adding a New Metadata Provider
//
// To add a new source of book metadata (e.g., Google Books):
//
//  1. Implement MetadataProvider in internal/metadata/
//
//     type GoogleBooksClient struct {
//         apiKey     string
//         httpClient *http.Client
//     }
//
//     func (c *GoogleBooksClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
//     func (c *GoogleBooksClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
//
//     var _ MetadataProvider = (*GoogleBooksClient)(nil)
//
//  2. Add to enricher in entrypoint.go
//
// # Adding a New Database Domain
//
// To add a new data domain:
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full set.
package interfaces
