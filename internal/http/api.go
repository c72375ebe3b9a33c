package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/database/books"
)

// APIController serves the read-only JSON endpoints for the catalog.
type APIController struct {
	books   BookStore
	authors AuthorStore
}

func NewAPIController(bookStore BookStore, authorStore AuthorStore) *APIController {
	return &APIController{
		books:   bookStore,
		authors: authorStore,
	}
}

// ListBooks handles GET /api/books with the same search and sort parameters
// as the HTML catalog page.
func (controller *APIController) ListBooks(c *gin.Context) {
	list, err := controller.books.List(books.ListOptions{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.DefaultQuery("sort", "title"),
		SortOrder: c.DefaultQuery("order", "asc"),
	})
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": list, "count": len(list)})
}

// ListAuthors handles GET /api/authors.
func (controller *APIController) ListAuthors(c *gin.Context) {
	list, err := controller.authors.List()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"authors": list, "count": len(list)})
}
