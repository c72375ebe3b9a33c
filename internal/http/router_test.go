package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activitysvc "github.com/mrlokans/librarium/internal/activity"
	"github.com/mrlokans/librarium/internal/config"
	"github.com/mrlokans/librarium/internal/database"
	activitydb "github.com/mrlokans/librarium/internal/database/activity"
	"github.com/mrlokans/librarium/internal/database/authors"
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/demo"
	"github.com/mrlokans/librarium/internal/entities"
	"github.com/mrlokans/librarium/internal/scheduler"
	"github.com/mrlokans/librarium/internal/session"
	"github.com/mrlokans/librarium/internal/tasks"
)

type routerFixture struct {
	router  *gin.Engine
	db      *database.Database
	books   *books.Repository
	authors *authors.Repository
}

func setupRouter(t *testing.T, mutate func(*RouterConfig)) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_router_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	sessions, err := session.NewManager(sqlDB, config.Security{SessionLifetime: time.Hour})
	require.NoError(t, err)

	bookRepo := books.NewRepository(db.DB)
	authorRepo := authors.NewRepository(db.DB)

	cfg := RouterConfig{
		Database:      db,
		Books:         bookRepo,
		Authors:       authorRepo,
		Sessions:      sessions,
		Activity:      activitysvc.NewService(activitydb.NewRepository(db.DB)),
		TemplatesPath: "../../templates",
		StaticPath:    "../../static",
		Version:       "test",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	return &routerFixture{
		router:  NewRouter(cfg),
		db:      db,
		books:   bookRepo,
		authors: authorRepo,
	}
}

// get performs a GET request, attaching any cookies from earlier responses.
func (f *routerFixture) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// postForm submits a URL-encoded form, attaching any cookies from earlier
// responses.
func (f *routerFixture) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *routerFixture) seedAuthor(t *testing.T, name string) *entities.Author {
	t.Helper()
	author := &entities.Author{Name: name}
	require.NoError(t, f.authors.Create(author))
	return author
}

func (f *routerFixture) seedBook(t *testing.T, title string, authorID uint, isbn string, year int) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, AuthorID: authorID, ISBN: isbn, Year: year}
	require.NoError(t, f.books.Create(book))
	return book
}

func TestRouter_RootRedirectsToHome(t *testing.T) {
	f := setupRouter(t, nil)

	w := f.get("/")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
}

func TestRouter_HomePage(t *testing.T) {
	t.Run("renders empty state without books", func(t *testing.T) {
		f := setupRouter(t, nil)

		w := f.get("/home")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No books in the catalog yet")
	})

	t.Run("lists books with their authors", func(t *testing.T) {
		f := setupRouter(t, nil)
		author := f.seedAuthor(t, "Ursula K. Le Guin")
		f.seedBook(t, "The Dispossessed", author.ID, "9780060512750", 1974)

		w := f.get("/home")

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "The Dispossessed")
		assert.Contains(t, body, "Ursula K. Le Guin")
		assert.Contains(t, body, "1974")
	})

	t.Run("shows a message when the search finds nothing", func(t *testing.T) {
		f := setupRouter(t, nil)
		author := f.seedAuthor(t, "Ursula K. Le Guin")
		f.seedBook(t, "The Dispossessed", author.ID, "", 1974)

		w := f.get("/home?search=parrot")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Search term &#39;parrot&#39; not found.")
	})

	t.Run("filters by author name", func(t *testing.T) {
		f := setupRouter(t, nil)
		leGuin := f.seedAuthor(t, "Ursula K. Le Guin")
		leckie := f.seedAuthor(t, "Ann Leckie")
		f.seedBook(t, "The Dispossessed", leGuin.ID, "", 1974)
		f.seedBook(t, "Ancillary Justice", leckie.ID, "", 2013)

		w := f.get("/home?search=leckie")

		body := w.Body.String()
		assert.Contains(t, body, "Ancillary Justice")
		assert.NotContains(t, body, "The Dispossessed")
	})

	t.Run("sorts by year descending", func(t *testing.T) {
		f := setupRouter(t, nil)
		author := f.seedAuthor(t, "Ursula K. Le Guin")
		f.seedBook(t, "The Dispossessed", author.ID, "", 1974)
		f.seedBook(t, "The Left Hand of Darkness", author.ID, "", 1969)

		w := f.get("/home?sort=year&order=desc")

		body := w.Body.String()
		assert.Less(t, strings.Index(body, "The Dispossessed"), strings.Index(body, "The Left Hand of Darkness"))
	})
}

func TestRouter_AddAuthorFlow(t *testing.T) {
	f := setupRouter(t, nil)

	w := f.postForm("/add_author", url.Values{
		"name":       {"Ursula K. Le Guin"},
		"birth_date": {"1929-10-21"},
		"death_date": {"2018-01-22"},
	})

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/add_author", w.Header().Get("Location"))

	// The confirmation is flashed on the next page load
	followUp := f.get("/add_author", w.Result().Cookies()...)
	assert.Contains(t, followUp.Body.String(), "added successfully.")

	author, err := f.authors.GetByName("Ursula K. Le Guin")
	require.NoError(t, err)
	assert.Equal(t, "1929-10-21", author.BirthDate)
}

func TestRouter_AddAuthorValidation(t *testing.T) {
	t.Run("rejects an empty name", func(t *testing.T) {
		f := setupRouter(t, nil)

		w := f.postForm("/add_author", url.Values{"name": {"   "}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Author name cannot be empty.")
	})

	t.Run("rejects a malformed birth date", func(t *testing.T) {
		f := setupRouter(t, nil)

		w := f.postForm("/add_author", url.Values{
			"name":       {"Ursula K. Le Guin"},
			"birth_date": {"21/10/1929"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Birth date must be in YYYY-MM-DD format.")
	})

	t.Run("rejects a duplicate author", func(t *testing.T) {
		f := setupRouter(t, nil)
		f.seedAuthor(t, "Ursula K. Le Guin")

		w := f.postForm("/add_author", url.Values{"name": {"Ursula K. Le Guin"}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "already exists.")
	})
}

func TestRouter_AddBookFlow(t *testing.T) {
	f := setupRouter(t, nil)
	f.seedAuthor(t, "Ursula K. Le Guin")

	w := f.postForm("/add_book", url.Values{
		"title":  {"The Dispossessed"},
		"author": {"Ursula K. Le Guin"},
		"isbn":   {"9780060512750"},
		"year":   {"1974"},
	})

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/add_book", w.Header().Get("Location"))

	followUp := f.get("/add_book", w.Result().Cookies()...)
	assert.Contains(t, followUp.Body.String(), "added successfully.")

	book, err := f.books.GetByISBN("9780060512750")
	require.NoError(t, err)
	assert.Equal(t, "The Dispossessed", book.Title)
	assert.Equal(t, 1974, book.Year)
	assert.Equal(t, "https://covers.openlibrary.org/b/isbn/9780060512750-M.jpg", book.CoverURL)
}

func TestRouter_AddBookValidation(t *testing.T) {
	t.Run("rejects an empty title", func(t *testing.T) {
		f := setupRouter(t, nil)
		f.seedAuthor(t, "Ursula K. Le Guin")

		w := f.postForm("/add_book", url.Values{
			"title":  {""},
			"author": {"Ursula K. Le Guin"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Book title cannot be empty.")
	})

	t.Run("rejects an unknown author", func(t *testing.T) {
		f := setupRouter(t, nil)

		w := f.postForm("/add_book", url.Values{
			"title":  {"The Dispossessed"},
			"author": {"Nobody"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "is not in the catalog.")
	})

	t.Run("rejects a non-numeric year", func(t *testing.T) {
		f := setupRouter(t, nil)
		f.seedAuthor(t, "Ursula K. Le Guin")

		w := f.postForm("/add_book", url.Values{
			"title":  {"The Dispossessed"},
			"author": {"Ursula K. Le Guin"},
			"year":   {"MCMLXXIV"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Publication year must be a number.")
	})

	t.Run("rejects a duplicate ISBN", func(t *testing.T) {
		f := setupRouter(t, nil)
		author := f.seedAuthor(t, "Ursula K. Le Guin")
		f.seedBook(t, "The Dispossessed", author.ID, "9780060512750", 1974)

		w := f.postForm("/add_book", url.Values{
			"title":  {"The Dispossessed"},
			"author": {"Ursula K. Le Guin"},
			"isbn":   {"9780060512750"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "already exists.")
	})
}

func TestRouter_DeleteFlow(t *testing.T) {
	f := setupRouter(t, nil)
	author := f.seedAuthor(t, "Ursula K. Le Guin")
	book := f.seedBook(t, "The Dispossessed", author.ID, "", 1974)

	confirmPage := f.get("/book/" + itoa(book.ID) + "/delete")
	require.Equal(t, http.StatusOK, confirmPage.Code)
	assert.Contains(t, confirmPage.Body.String(), "The Dispossessed")

	w := f.postForm("/book/"+itoa(book.ID)+"/delete", url.Values{})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	followUp := f.get("/home", w.Result().Cookies()...)
	assert.Contains(t, followUp.Body.String(), "deleted successfully.")

	_, err := f.books.GetByID(book.ID)
	assert.Error(t, err)

	// The author's last book is gone, so the author is removed too
	_, err = f.authors.GetByName("Ursula K. Le Guin")
	assert.Error(t, err)
}

func TestRouter_DeleteMissingBook(t *testing.T) {
	f := setupRouter(t, nil)

	w := f.postForm("/book/9999/delete", url.Values{})
	require.Equal(t, http.StatusFound, w.Code)

	followUp := f.get("/home", w.Result().Cookies()...)
	assert.Contains(t, followUp.Body.String(), "Book not found.")
}

func TestRouter_BooksAPI(t *testing.T) {
	f := setupRouter(t, nil)
	author := f.seedAuthor(t, "Ursula K. Le Guin")
	f.seedBook(t, "The Dispossessed", author.ID, "9780060512750", 1974)
	f.seedBook(t, "The Left Hand of Darkness", author.ID, "", 1969)

	w := f.get("/api/books?sort=year&order=asc")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Books []entities.Book `json:"books"`
		Count int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	require.Len(t, response.Books, 2)
	assert.Equal(t, "The Left Hand of Darkness", response.Books[0].Title)
	assert.Equal(t, "Ursula K. Le Guin", response.Books[0].Author.Name)
}

func TestRouter_AuthorsAPI(t *testing.T) {
	f := setupRouter(t, nil)
	f.seedAuthor(t, "Ursula K. Le Guin")
	f.seedAuthor(t, "Ann Leckie")

	w := f.get("/api/authors")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Authors []entities.Author `json:"authors"`
		Count   int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "Ann Leckie", response.Authors[0].Name)
}

func TestRouter_ActivityAPI(t *testing.T) {
	f := setupRouter(t, nil)

	w := f.postForm("/add_author", url.Values{"name": {"Ursula K. Le Guin"}})
	require.Equal(t, http.StatusFound, w.Code)

	// Events are written asynchronously
	assert.Eventually(t, func() bool {
		resp := f.get("/api/activity")
		if resp.Code != http.StatusOK {
			return false
		}
		var response struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &response); err != nil {
			return false
		}
		return response.Count == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRouter_EnrichmentAndTasksAPI(t *testing.T) {
	var taskClient *tasks.Client
	f := setupRouter(t, func(cfg *RouterConfig) {
		var err error
		taskClient, err = tasks.NewClient(filepath.Join(t.TempDir(), "catalog.db"), tasks.DefaultConfig())
		require.NoError(t, err)
		cfg.TaskClient = taskClient
	})
	t.Cleanup(func() { taskClient.Close() })

	author := f.seedAuthor(t, "Ursula K. Le Guin")
	book := f.seedBook(t, "The Dispossessed", author.ID, "", 0)

	t.Run("queues enrichment for an existing book", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/books/"+itoa(book.ID)+"/enrich", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusAccepted, w.Code)

		var response struct {
			TaskID string `json:"task_id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.NotEmpty(t, response.TaskID)

		status := f.get("/api/tasks/" + response.TaskID)
		require.Equal(t, http.StatusOK, status.Code)
		assert.Contains(t, status.Body.String(), "pending")
	})

	t.Run("returns 404 for a missing book", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/books/9999/enrich", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("reports unknown tasks as not found", func(t *testing.T) {
		status := f.get("/api/tasks/no-such-task")
		require.Equal(t, http.StatusOK, status.Code)
		assert.Contains(t, status.Body.String(), "not_found")
	})
}

func TestRouter_SnapshotAPI(t *testing.T) {
	snapshotDir := t.TempDir()
	f := setupRouter(t, func(cfg *RouterConfig) {
		cfg.Scheduler = scheduler.NewSnapshotScheduler(
			config.Snapshot{Enabled: false, Schedule: "0 3 * * *", Dir: snapshotDir},
			config.Activity{RetentionDays: 30},
			cfg.Books,
			cfg.Authors,
		)
	})

	w := f.get("/api/snapshot/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status scheduler.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Enabled)
	assert.Nil(t, status.LastRun)

	run, _ := http.NewRequest("POST", "/api/snapshot/run", nil)
	runResp := httptest.NewRecorder()
	f.router.ServeHTTP(runResp, run)
	require.Equal(t, http.StatusAccepted, runResp.Code)

	assert.Eventually(t, func() bool {
		resp := f.get("/api/snapshot/status")
		var current scheduler.Status
		if err := json.Unmarshal(resp.Body.Bytes(), &current); err != nil {
			return false
		}
		return current.LastRun != nil && current.LastRun.Status == "success"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRouter_DemoMode(t *testing.T) {
	f := setupRouter(t, func(cfg *RouterConfig) {
		cfg.DemoMiddleware = demo.NewMiddleware(true, cfg.Sessions)
	})
	f.seedAuthor(t, "Ursula K. Le Guin")

	t.Run("renders the demo banner", func(t *testing.T) {
		w := f.get("/home")
		assert.Contains(t, w.Body.String(), "Demo mode")
	})

	t.Run("blocks form submissions", func(t *testing.T) {
		w := f.postForm("/add_author", url.Values{"name": {"Ann Leckie"}})
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/home", w.Header().Get("Location"))

		followUp := f.get("/home", w.Result().Cookies()...)
		assert.Contains(t, followUp.Body.String(), "This action is disabled in demo mode.")

		_, err := f.authors.GetByName("Ann Leckie")
		assert.Error(t, err)
	})

	t.Run("blocks API writes with a JSON error", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/books/1/enrich", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "demo_mode")
	})
}

func TestRouter_CSRFProtection(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	f := setupRouter(t, func(cfg *RouterConfig) {
		cfg.CSRFSecret = secret
	})

	t.Run("rejects a form post without a token", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/add_author", strings.NewReader("name=Intruder"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Referer", "http://localhost/add_author")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "error=Session+expired")
	})

	t.Run("accepts a form post with the issued token", func(t *testing.T) {
		page := f.get("/add_author")
		require.Equal(t, http.StatusOK, page.Code)

		matches := regexp.MustCompile(`name="gorilla\.csrf\.Token" value="([^"]+)"`).FindStringSubmatch(page.Body.String())
		require.Len(t, matches, 2)

		form := url.Values{
			"name":               {"Ursula K. Le Guin"},
			"gorilla.csrf.Token": {matches[1]},
		}
		w := f.postForm("/add_author", form, page.Result().Cookies()...)

		assert.Equal(t, http.StatusFound, w.Code)
	})

	t.Run("exempts the JSON API", func(t *testing.T) {
		w := f.get("/api/books")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRouter_HealthAndPing(t *testing.T) {
	f := setupRouter(t, nil)

	health := f.get("/health")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Contains(t, health.Body.String(), "healthy")

	ping := f.get("/ping")
	assert.Equal(t, http.StatusOK, ping.Code)
	assert.Contains(t, ping.Body.String(), "pong")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
