package http

import (
	"github.com/mrlokans/librarium/internal/activity"
	"github.com/mrlokans/librarium/internal/covers"
	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/demo"
	"github.com/mrlokans/librarium/internal/scheduler"
	"github.com/mrlokans/librarium/internal/session"
	"github.com/mrlokans/librarium/internal/tasks"
)

// RouterConfig holds all dependencies needed to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Books    BookStore
	Authors  AuthorStore

	// Session manager for flash messages (nil disables flashes)
	Sessions *session.Manager

	// Activity log service (nil disables event recording)
	Activity *activity.Service

	// Cover cache (nil serves covers by redirecting to the remote URL)
	CoverCache *covers.Cache

	// Background task client (nil disables the enrichment and task APIs)
	TaskClient *tasks.Client

	// Snapshot scheduler (nil disables the snapshot API)
	Scheduler *scheduler.SnapshotScheduler

	// Demo mode middleware (nil when demo mode is off)
	DemoMiddleware *demo.Middleware

	// CSRF protection (empty secret disables it)
	CSRFSecret    []byte
	SecureCookies bool

	// Paths for UI assets
	TemplatesPath string
	StaticPath    string

	// Version for health endpoint
	Version string
}
