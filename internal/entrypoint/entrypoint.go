package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	activitysvc "github.com/mrlokans/librarium/internal/activity"
	"github.com/mrlokans/librarium/internal/config"
	"github.com/mrlokans/librarium/internal/covers"
	"github.com/mrlokans/librarium/internal/database"
	activitydb "github.com/mrlokans/librarium/internal/database/activity"
	"github.com/mrlokans/librarium/internal/database/authors"
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/demo"
	http_controllers "github.com/mrlokans/librarium/internal/http"
	"github.com/mrlokans/librarium/internal/metadata"
	"github.com/mrlokans/librarium/internal/scheduler"
	"github.com/mrlokans/librarium/internal/security"
	"github.com/mrlokans/librarium/internal/session"
	"github.com/mrlokans/librarium/internal/tasks"
	"github.com/mrlokans/librarium/internal/utils"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	if cfg.Browser.OpenOnStart {
		go func() {
			// Give the listener a moment to come up before pointing
			// the browser at it.
			time.Sleep(time.Second)
			utils.OpenBrowser(fmt.Sprintf("http://%s:%d/home", cfg.HTTP.Host, cfg.HTTP.Port))
		}()
	}

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 1 second.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscanll.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall. SIGKILL but can"t be catch, so don't need add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the scheduler and task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarium v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookRepo := books.NewRepository(db.DB)
	authorRepo := authors.NewRepository(db.DB)
	activityService := activitysvc.NewService(activitydb.NewRepository(db.DB))

	// Get underlying SQL DB for the session store
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := session.NewManager(sqlDB, cfg.Security)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	// Generate or use configured CSRF secret
	var csrfSecret []byte
	if cfg.Security.CSRFEnabled {
		if cfg.Security.CSRFSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Security.CSRFSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Security.CSRFSecret)
			}
		} else {
			// Generate a secret
			secret, err := security.GenerateSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated CSRF secret (set CSRF_SECRET to persist across restarts)")
		}
	}

	// Initialize demo mode middleware. It needs the session manager so
	// blocked form submissions can flash an explanation.
	var demoMiddleware *demo.Middleware
	if cfg.Demo.Enabled {
		log.Printf("Demo mode enabled - write operations will be blocked")
		demoMiddleware = demo.NewMiddleware(true, sessionManager)
	}

	// Create cover cache for locally caching book covers
	var coverCache *covers.Cache
	if cfg.Covers.CacheEnabled {
		coverCacheDir := cfg.Covers.CacheDir
		if coverCacheDir == "" {
			coverCacheDir = filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
		}
		coverCache, err = covers.NewCache(coverCacheDir)
		if err != nil {
			log.Printf("WARNING: Failed to initialize cover cache: %v", err)
			coverCache = nil
		} else {
			log.Printf("Cover cache initialized at %s", coverCacheDir)
		}
	}

	// Create metadata enricher for book enrichment from OpenLibrary
	openLibraryClient := metadata.NewOpenLibraryClient()
	metadataEnricher := metadata.NewEnricher(openLibraryClient, bookRepo)

	// Connect cover cache to enricher for invalidation on metadata refresh
	if coverCache != nil {
		metadataEnricher.SetCoverInvalidator(coverCache)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues. The cover fetcher stays nil when the
		// cache is disabled; the processor reports that as a task failure.
		var coverFetcher tasks.CoverFetcher
		if coverCache != nil {
			coverFetcher = coverCache
		}
		taskClient.Register(
			tasks.NewEnrichBookQueue(metadataEnricher, activityService),
			tasks.NewCacheCoverQueue(coverFetcher),
			tasks.NewCleanupActivityEventsQueue(activityService),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Initialize snapshot scheduler for periodic catalog exports
	snapshotScheduler := scheduler.NewSnapshotScheduler(cfg.Snapshot, cfg.Activity, bookRepo, authorRepo)
	snapshotScheduler.SetRecorder(activityService)
	if taskClient != nil {
		snapshotScheduler.SetTaskClient(taskClient)
	}
	if err := snapshotScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start snapshot scheduler: %v", err)
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Books:          bookRepo,
		Authors:        authorRepo,
		Sessions:       sessionManager,
		Activity:       activityService,
		CoverCache:     coverCache,
		TaskClient:     taskClient,
		Scheduler:      snapshotScheduler,
		DemoMiddleware: demoMiddleware,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Security.SecureCookies,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		snapshotScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
