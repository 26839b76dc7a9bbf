package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scuttle/internal/models"
	"scuttle/internal/queue"
)

type queueTrackRequest struct {
	ID string `json:"id" binding:"required"`
}

type queueSetAllRequest struct {
	IDs []string `json:"ids"`
}

type queueRemoveRequest struct {
	ID    string `json:"id" binding:"required"`
	Index *int   `json:"index" binding:"required"`
}

// HandleQueueContent returns the play queue snapshot and broadcasts it.
func HandleQueueContent(playQueue *queue.PlayQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		playQueue.SendContent()
		c.JSON(http.StatusOK, gin.H{"content": playQueue.Items()})
	}
}

// HandleQueueSetAll replaces the play queue. Tracks that are not downloaded
// are silently dropped; the queue only ever holds playable material.
func HandleQueueSetAll(store Store, playQueue *queue.PlayQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body queueSetAllRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		playable := make([]string, 0, len(body.IDs))
		for _, id := range body.IDs {
			if downloaded, err := store.IsDownloaded(id); err == nil && downloaded {
				playable = append(playable, id)
			}
		}
		playQueue.SetAll(playable)
		c.Status(http.StatusNoContent)
	}
}

// HandleQueueSetFirst puts a track at the front of the play queue, or
// schedules a priority download that lands there once fetched.
func HandleQueueSetFirst(store Store, playQueue *queue.PlayQueue, downloadQueue *queue.DownloadQueue) gin.HandlerFunc {
	return placementHandler(store, func(id string) {
		playQueue.SetFirst(id)
	}, func(job *models.DownloadJob) {
		downloadQueue.SetFirst(job)
	}, true)
}

// HandleQueueInsertNext schedules a track to play right after the current
// one, downloading first when needed.
func HandleQueueInsertNext(store Store, playQueue *queue.PlayQueue, downloadQueue *queue.DownloadQueue) gin.HandlerFunc {
	return placementHandler(store, func(id string) {
		playQueue.InsertNext(id)
	}, func(job *models.DownloadJob) {
		downloadQueue.InsertNext(job)
	}, true)
}

// HandleQueuePush appends a track to the play queue, downloading first when
// needed.
func HandleQueuePush(store Store, playQueue *queue.PlayQueue, downloadQueue *queue.DownloadQueue) gin.HandlerFunc {
	return placementHandler(store, func(id string) {
		playQueue.Push(id)
	}, func(job *models.DownloadJob) {
		downloadQueue.Push(job)
	}, false)
}

// placementHandler is the shared downloaded-or-enqueue logic behind the
// positional play queue endpoints. queueFirst decides which placement flag
// the fallback download job carries.
func placementHandler(store Store, place func(id string), enqueue func(job *models.DownloadJob), queueFirst bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body queueTrackRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		downloaded, err := store.IsDownloaded(body.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check download state"})
			return
		}

		if downloaded {
			place(body.ID)
		} else {
			job := &models.DownloadJob{ID: body.ID, QueueFirst: queueFirst, QueueLast: !queueFirst}
			// Duplicate pushes are suppressed inside the queue.
			enqueue(job)
		}
		c.Status(http.StatusNoContent)
	}
}

// HandleQueuePop drops the head of the play queue.
func HandleQueuePop(playQueue *queue.PlayQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		playQueue.Pop()
		c.Status(http.StatusNoContent)
	}
}

// HandleQueueRemove deletes the entry at the given index, but only when the
// id still matches; a stale client view removes nothing.
func HandleQueueRemove(playQueue *queue.PlayQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body queueRemoveRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		index := *body.Index
		items := playQueue.Items()
		if index < 0 || index >= len(items) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid index"})
			return
		}
		if items[index] != body.ID {
			c.JSON(http.StatusConflict, gin.H{"error": "Queue changed, refresh and retry"})
			return
		}

		playQueue.RemoveAt(index)
		c.Status(http.StatusNoContent)
	}
}

// HandleQueueClear empties the play queue.
func HandleQueueClear(playQueue *queue.PlayQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		playQueue.Clear()
		c.Status(http.StatusNoContent)
	}
}

// HandleDownloadQueueContent returns the pending download jobs and
// broadcasts them.
func HandleDownloadQueueContent(downloadQueue *queue.DownloadQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		downloadQueue.SendContent()
		c.JSON(http.StatusOK, gin.H{"content": downloadQueue.Items()})
	}
}
