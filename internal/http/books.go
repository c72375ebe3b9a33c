package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/activity"
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/demo"
	"github.com/mrlokans/librarium/internal/entities"
	"github.com/mrlokans/librarium/internal/metadata"
	"github.com/mrlokans/librarium/internal/security"
	"github.com/mrlokans/librarium/internal/session"
	"github.com/mrlokans/librarium/internal/tasks"
)

// AddBookController serves the book creation form.
type AddBookController struct {
	books      BookStore
	authors    AuthorStore
	sessions   *session.Manager
	activity   *activity.Service
	taskClient *tasks.Client
}

func NewAddBookController(bookStore BookStore, authorStore AuthorStore, sessions *session.Manager, activitySvc *activity.Service, taskClient *tasks.Client) *AddBookController {
	return &AddBookController{
		books:      bookStore,
		authors:    authorStore,
		sessions:   sessions,
		activity:   activitySvc,
		taskClient: taskClient,
	}
}

// bookForm carries submitted values back into a re-rendered form.
type bookForm struct {
	Title  string
	Author string
	ISBN   string
	Year   string
}

// AddBookPage renders the empty book form with the author dropdown.
func (controller *AddBookController) AddBookPage(c *gin.Context) {
	controller.renderForm(c, bookForm{})
}

// AddBook validates the submitted form and stores the book. The author must
// already exist in the catalog. On success the cover URL is derived from the
// ISBN and a background task is queued to cache the cover image.
func (controller *AddBookController) AddBook(c *gin.Context) {
	form := bookForm{
		Title:  strings.TrimSpace(c.PostForm("title")),
		Author: strings.TrimSpace(c.PostForm("author")),
		ISBN:   strings.TrimSpace(c.PostForm("isbn")),
		Year:   strings.TrimSpace(c.PostForm("year")),
	}

	if form.Title == "" {
		controller.renderForm(c, form, errorFlash("Book title cannot be empty."))
		return
	}
	if form.Author == "" {
		controller.renderForm(c, form, errorFlash("Author must be selected."))
		return
	}

	year := 0
	if form.Year != "" {
		parsed, err := strconv.Atoi(form.Year)
		if err != nil {
			controller.renderForm(c, form, errorFlash("Publication year must be a number."))
			return
		}
		year = parsed
	}

	author, err := controller.authors.GetByName(form.Author)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			controller.renderForm(c, form, errorFlash("Author '"+form.Author+"' is not in the catalog."))
			return
		}
		log.Printf("Failed to look up author %q: %v", form.Author, err)
		controller.renderForm(c, form, errorFlash("Failed to add book."))
		return
	}

	book := &entities.Book{
		Title:    form.Title,
		ISBN:     form.ISBN,
		Year:     year,
		AuthorID: author.ID,
		CoverURL: metadata.CoverURLForISBN(form.ISBN),
	}
	if err := controller.books.Create(book); err != nil {
		switch {
		case errors.Is(err, books.ErrDuplicateISBN):
			controller.renderForm(c, form, errorFlash("Book with ISBN '"+form.ISBN+"', '"+form.Title+"', already exists."))
		case errors.Is(err, books.ErrEmptyTitle):
			controller.renderForm(c, form, errorFlash("Book title cannot be empty."))
		default:
			log.Printf("Failed to create book %q: %v", form.Title, err)
			controller.renderForm(c, form, errorFlash("Failed to add book."))
		}
		return
	}

	if controller.activity != nil {
		controller.activity.LogBookCreate(book.ID, book.Title)
	}
	if controller.taskClient != nil && book.CoverURL != "" {
		_, err := controller.taskClient.Add(tasks.CacheCoverTask{
			BookID:   book.ID,
			CoverURL: book.CoverURL,
		}).Save()
		if err != nil {
			log.Printf("Failed to enqueue cover caching for book %d: %v", book.ID, err)
		}
	}
	if controller.sessions != nil {
		controller.sessions.PutSuccess(c.Request, "Book '"+book.Title+"' added successfully.")
	}
	c.Redirect(http.StatusFound, "/add_book")
}

func (controller *AddBookController) renderForm(c *gin.Context, form bookForm, inline ...session.Flash) {
	names, err := controller.authors.ListNames()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading authors: %s", err.Error())
		return
	}

	c.HTML(http.StatusOK, "add_book", gin.H{
		"Title":     "Add Book",
		"Form":      form,
		"Authors":   names,
		"Flashes":   pageFlashes(c, controller.sessions, inline...),
		"CSRFToken": security.GetCSRFToken(c),
		"DemoMode":  demo.FromContext(c),
	})
}
