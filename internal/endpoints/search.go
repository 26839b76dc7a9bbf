package endpoints

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleSearch queries the local catalog. An empty query returns the
// download history.
func HandleSearch(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracks, err := store.Search(c.Query("q"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"content": tracks})
	}
}

// HandleRemoteSearch asks the fetcher for candidates and registers their
// metadata so later downloads and searches know about them.
func HandleRemoteSearch(store Store, searcher Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")
		if q == "" {
			c.JSON(http.StatusOK, gin.H{"content": []any{}})
			return
		}

		tracks := searcher.Search(q)
		for _, track := range tracks {
			if err := store.RegisterTrack(track); err != nil {
				slog.Error("Failed to register search result", "id", track.ID, "error", err)
			}
		}
		c.JSON(http.StatusOK, gin.H{"content": tracks})
	}
}

// HandleDownloadsContent lists every downloaded track, newest first.
func HandleDownloadsContent(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracks, err := store.DownloadsContent()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list downloads"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"content": tracks})
	}
}

// HandleDeleteDownload removes the download record while keeping the
// track's metadata.
func HandleDeleteDownload(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.UnregisterDownload(c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete download"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}
