package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/demo"
	"github.com/mrlokans/librarium/internal/session"
)

// HomeController renders the catalog listing page.
type HomeController struct {
	books    BookStore
	sessions *session.Manager
}

func NewHomeController(books BookStore, sessions *session.Manager) *HomeController {
	return &HomeController{
		books:    books,
		sessions: sessions,
	}
}

// Home renders the book list, filtered and sorted through query parameters.
func (controller *HomeController) Home(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	sortBy := c.DefaultQuery("sort", "title")
	sortOrder := c.DefaultQuery("order", "asc")

	list, err := controller.books.List(books.ListOptions{
		Search:    search,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	})
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading books: %s", err.Error())
		return
	}

	var inline []session.Flash
	if search != "" && len(list) == 0 {
		inline = append(inline, session.Flash{
			Status:  session.StatusError,
			Message: "Search term '" + search + "' not found.",
		})
	}

	c.HTML(http.StatusOK, "home", gin.H{
		"Title":     "Catalog",
		"Books":     list,
		"Count":     len(list),
		"Search":    search,
		"SortBy":    sortBy,
		"SortOrder": sortOrder,
		"Flashes":   pageFlashes(c, controller.sessions, inline...),
		"DemoMode":  demo.FromContext(c),
	})
}
