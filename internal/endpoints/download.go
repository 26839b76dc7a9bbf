package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scuttle/internal/models"
	"scuttle/internal/queue"
)

// DownloadRequest is the wire form of a download job submission.
type DownloadRequest struct {
	ID         string                  `json:"id"`
	Query      string                  `json:"query"`
	Metadata   *models.Metadata        `json:"metadata"`
	Updates    []models.PlaylistUpdate `json:"updates"`
	QueueFirst bool                    `json:"queue_first"`
	QueueLast  bool                    `json:"queue_last"`
}

// HandleDownload enqueues a fetch job. A job naming neither id nor query is
// a 400; a job already queued under the same identifier is a 409. Already
// downloaded tracks skip the queue and go straight to playback placement.
func HandleDownload(store Store, downloadQueue *queue.DownloadQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body DownloadRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		job, err := models.NewDownloadJob(body.ID, body.Query, body.Metadata, body.Updates, body.QueueFirst, body.QueueLast)
		if err != nil {
			if errors.Is(err, models.ErrBadJob) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Either an id or a query is required"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build job"})
			return
		}

		if !downloadQueue.Push(job) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already queued"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "queued"})
	}
}
