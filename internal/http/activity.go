package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/activity"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// ActivityController serves the recorded catalog activity feed.
type ActivityController struct {
	service *activity.Service
}

func NewActivityController(service *activity.Service) *ActivityController {
	return &ActivityController{service: service}
}

// ListEvents handles GET /api/activity
// Returns the newest events first, paged through limit/offset parameters.
func (controller *ActivityController) ListEvents(c *gin.Context) {
	limit := intQuery(c, "limit", defaultActivityLimit)
	if limit < 1 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	offset := intQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	events, total, err := controller.service.GetEvents(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list activity")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
