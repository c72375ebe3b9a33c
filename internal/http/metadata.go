package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/tasks"
)

// MetadataController queues book metadata enrichment.
type MetadataController struct {
	books      BookStore
	taskClient *tasks.Client
}

// NewMetadataController creates a new MetadataController.
func NewMetadataController(books BookStore, taskClient *tasks.Client) *MetadataController {
	return &MetadataController{
		books:      books,
		taskClient: taskClient,
	}
}

// EnrichBook handles POST /api/books/:id/enrich.
// The lookup against OpenLibrary runs as a background task; the response
// carries the task ID so clients can poll /api/tasks/:id for the outcome.
func (mc *MetadataController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := mc.books.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "enrich book")
		return
	}

	ids, err := mc.taskClient.Add(tasks.EnrichBookTask{BookID: id}).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue enrichment")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": ids[0],
		"message": "enrichment queued",
	})
}
