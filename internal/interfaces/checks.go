package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/librarium/internal/activity"
	"github.com/mrlokans/librarium/internal/covers"
	"github.com/mrlokans/librarium/internal/database/authors"
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/http"
	"github.com/mrlokans/librarium/internal/importers"
	"github.com/mrlokans/librarium/internal/metadata"
	"github.com/mrlokans/librarium/internal/scheduler"
	"github.com/mrlokans/librarium/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// The book and author repositories back every consumer-side store interface.
var _ http.BookStore = (*books.Repository)(nil)
var _ http.AuthorStore = (*authors.Repository)(nil)

var _ importers.BookStore = (*books.Repository)(nil)
var _ importers.AuthorStore = (*authors.Repository)(nil)

var _ scheduler.BookSource = (*books.Repository)(nil)
var _ scheduler.AuthorSource = (*authors.Repository)(nil)

var _ metadata.BookStore = (*books.Repository)(nil)

// =============================================================================
// External Services
// =============================================================================

// MetadataProvider implementations
var _ metadata.MetadataProvider = (*metadata.OpenLibraryClient)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

// The cover cache serves both task-side fetching and enricher-side invalidation.
var _ tasks.CoverFetcher = (*covers.Cache)(nil)
var _ metadata.CoverInvalidator = (*covers.Cache)(nil)

// The activity service records outcomes for every background subsystem.
var _ tasks.EnrichmentRecorder = (*activity.Service)(nil)
var _ tasks.ActivityEventCleaner = (*activity.Service)(nil)
var _ scheduler.ExportRecorder = (*activity.Service)(nil)
