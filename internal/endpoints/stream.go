package endpoints

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"scuttle/internal/config"
	"scuttle/internal/models"
	"scuttle/internal/queue"
)

// HandleAudioStream serves a downloaded track's audio file. gin's file
// response handles range requests, so seeking works out of the box. A track
// known to the catalog but missing on disk gets queued for download and the
// client is told to retry.
func HandleAudioStream(store Store, downloadQueue *queue.DownloadQueue, downloadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "No track id provided"})
			return
		}

		downloaded, err := store.IsDownloaded(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check download state"})
			return
		}
		if !downloaded {
			// Self-healing: asking to play something not yet fetched
			// schedules the fetch.
			downloadQueue.Push(&models.DownloadJob{ID: id, QueueLast: true})
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Track is downloading, try again shortly"})
			return
		}

		path, ok := resolveAudioPath(downloadDir, id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Audio file not found"})
			return
		}
		c.File(path)
	}
}

// resolveAudioPath probes the known extensions for the track's file.
func resolveAudioPath(dir, id string) (string, bool) {
	for _, ext := range config.AudioExtensions {
		path := filepath.Join(dir, id+"."+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
