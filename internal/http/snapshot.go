package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/scheduler"
)

// SnapshotController exposes the CSV snapshot scheduler over the API.
type SnapshotController struct {
	scheduler *scheduler.SnapshotScheduler
}

func NewSnapshotController(snapshotScheduler *scheduler.SnapshotScheduler) *SnapshotController {
	return &SnapshotController{scheduler: snapshotScheduler}
}

// GetStatus handles GET /api/snapshot/status.
func (sc *SnapshotController) GetStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, sc.scheduler.Status())
}

// RunNow handles POST /api/snapshot/run.
// The snapshot is written in the background; poll the status endpoint for
// the outcome.
func (sc *SnapshotController) RunNow(c *gin.Context) {
	sc.scheduler.RunNow()
	c.JSON(http.StatusAccepted, gin.H{"message": "snapshot started"})
}
