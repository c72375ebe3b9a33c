package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/activity"
	"github.com/mrlokans/librarium/internal/demo"
	"github.com/mrlokans/librarium/internal/security"
	"github.com/mrlokans/librarium/internal/session"
)

// DeleteController serves the book deletion confirmation flow.
type DeleteController struct {
	books    BookStore
	sessions *session.Manager
	activity *activity.Service
}

func NewDeleteController(books BookStore, sessions *session.Manager, activitySvc *activity.Service) *DeleteController {
	return &DeleteController{
		books:    books,
		sessions: sessions,
		activity: activitySvc,
	}
}

// DeletePage renders the confirmation page for a single book.
func (controller *DeleteController) DeletePage(c *gin.Context) {
	id, ok := controller.bookID(c)
	if !ok {
		return
	}

	book, err := controller.books.GetByID(id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to load book %d: %v", id, err)
		}
		controller.redirectNotFound(c)
		return
	}

	c.HTML(http.StatusOK, "delete_book", gin.H{
		"Title":     "Delete Book",
		"Book":      book,
		"Flashes":   pageFlashes(c, controller.sessions),
		"CSRFToken": security.GetCSRFToken(c),
		"DemoMode":  demo.FromContext(c),
	})
}

// DeleteBook removes the book. When the book was its author's last, the
// author row is removed along with it.
func (controller *DeleteController) DeleteBook(c *gin.Context) {
	id, ok := controller.bookID(c)
	if !ok {
		return
	}

	result, err := controller.books.Delete(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			controller.redirectNotFound(c)
			return
		}
		log.Printf("Failed to delete book %d: %v", id, err)
		if controller.sessions != nil {
			controller.sessions.PutError(c.Request, "Failed to delete book.")
		}
		c.Redirect(http.StatusFound, "/home")
		return
	}

	if controller.activity != nil {
		controller.activity.LogBookDelete(id, result.Book.Title, result.AuthorDeleted)
	}
	if controller.sessions != nil {
		controller.sessions.PutSuccess(c.Request, "Book '"+result.Book.Title+"' deleted successfully.")
	}
	c.Redirect(http.StatusFound, "/home")
}

// bookID parses the :id path parameter; malformed IDs are treated the same
// as a missing book.
func (controller *DeleteController) bookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		controller.redirectNotFound(c)
		return 0, false
	}
	return uint(id), true
}

func (controller *DeleteController) redirectNotFound(c *gin.Context) {
	if controller.sessions != nil {
		controller.sessions.PutError(c.Request, "Book not found.")
	}
	c.Redirect(http.StatusFound, "/home")
}
