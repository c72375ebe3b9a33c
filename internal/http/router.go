package http

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/security"
)

// templateFuncs returns the function map the HTML templates are parsed with.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		security.CSRFTemplateField: func(token string) template.HTML {
			return template.HTML(security.CSRFTokenFieldFor(token))
		},
		"displayYear": func(year int) string {
			if year == 0 {
				return ""
			}
			return strconv.Itoa(year)
		},
		"currentYear": func() int {
			return time.Now().Year()
		},
	}
}

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(security.HeadersMiddleware())

	// CSRF must run before session so the session middleware sees the
	// request after gorilla/csrf has replaced it
	if len(cfg.CSRFSecret) > 0 {
		router.Use(security.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session middleware carries flash messages across redirects
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.LoadSave())
	}

	// Demo mode blocks writes; runs after session so blocked form
	// submissions can flash an explanation
	if cfg.DemoMiddleware != nil && cfg.DemoMiddleware.IsEnabled() {
		router.Use(cfg.DemoMiddleware.InjectContext())
		router.Use(cfg.DemoMiddleware.Handler())
	}

	// Load HTML templates with custom functions
	tmpl := template.Must(template.New("").Funcs(templateFuncs()).ParseGlob(cfg.TemplatesPath + "/*.html"))
	router.SetHTMLTemplate(tmpl)

	// Serve static files
	router.Static("/static", cfg.StaticPath)

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	home := NewHomeController(cfg.Books, cfg.Sessions)
	authorsController := NewAuthorsController(cfg.Authors, cfg.Sessions, cfg.Activity)
	addBook := NewAddBookController(cfg.Books, cfg.Authors, cfg.Sessions, cfg.Activity, cfg.TaskClient)
	deleteController := NewDeleteController(cfg.Books, cfg.Sessions, cfg.Activity)
	coversController := NewCoversController(cfg.CoverCache, cfg.Books)
	apiController := NewAPIController(cfg.Books, cfg.Authors)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Catalog pages
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/home")
	})
	router.GET("/home", home.Home)
	router.GET("/add_author", authorsController.AddAuthorPage)
	router.POST("/add_author", authorsController.AddAuthor)
	router.GET("/add_book", addBook.AddBookPage)
	router.POST("/add_book", addBook.AddBook)
	router.GET("/book/:id/delete", deleteController.DeletePage)
	router.POST("/book/:id/delete", deleteController.DeleteBook)

	// Book cover endpoint
	router.GET("/covers/:id", coversController.GetCover)

	// Catalog API endpoints
	router.GET("/api/books", apiController.ListBooks)
	router.GET("/api/authors", apiController.ListAuthors)

	// Activity feed
	if cfg.Activity != nil {
		activityController := NewActivityController(cfg.Activity)
		router.GET("/api/activity", activityController.ListEvents)
	}

	// Metadata enrichment and task status endpoints
	if cfg.TaskClient != nil {
		metadataController := NewMetadataController(cfg.Books, cfg.TaskClient)
		router.POST("/api/books/:id/enrich", metadataController.EnrichBook)

		tasksController := NewTasksController(cfg.TaskClient)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	// Snapshot scheduler endpoints
	if cfg.Scheduler != nil {
		snapshotController := NewSnapshotController(cfg.Scheduler)
		router.GET("/api/snapshot/status", snapshotController.GetStatus)
		router.POST("/api/snapshot/run", snapshotController.RunNow)
	}

	return router
}
