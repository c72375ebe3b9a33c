package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/covers"
)

// CoversController serves book cover images.
type CoversController struct {
	cache *covers.Cache
	books BookStore
}

// NewCoversController creates a new CoversController. The cache may be nil,
// in which case covers are served by redirecting to the remote URL.
func NewCoversController(cache *covers.Cache, books BookStore) *CoversController {
	return &CoversController{
		cache: cache,
		books: books,
	}
}

// GetCover serves the cover image for a book.
// GET /covers/:id
func (cc *CoversController) GetCover(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	book, err := cc.books.GetByID(uint(id))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if book.CoverURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	if cc.cache == nil {
		c.Redirect(http.StatusTemporaryRedirect, book.CoverURL)
		return
	}

	// Get cached cover (fetched on first request)
	cachePath, err := cc.cache.GetCover(c.Request.Context(), uint(id), book.CoverURL)
	if err != nil || cachePath == "" {
		// Fallback: redirect to original URL
		c.Redirect(http.StatusTemporaryRedirect, book.CoverURL)
		return
	}

	c.File(cachePath)
}
