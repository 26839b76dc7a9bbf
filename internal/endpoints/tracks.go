package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scuttle/internal/models"
)

type editTrackRequest struct {
	Title     string                  `json:"title"`
	Artist    string                  `json:"artist"`
	Playlists []models.PlaylistUpdate `json:"playlists"`
}

type trackPlaylistsRequest struct {
	Playlists []models.PlaylistUpdate `json:"playlists" binding:"required"`
}

// HandleEditTrack applies custom metadata and playlist membership changes
// in one shot, matching the track edit dialog.
func HandleEditTrack(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var body editTrackRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if len(body.Playlists) > 0 {
			if err := store.UpdateTrackPlaylists(id, body.Playlists); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update playlists"})
				return
			}
		}

		track, err := store.SetCustomMetadata(id, body.Title, body.Artist)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update metadata"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated", "content": track})
	}
}

// HandleTrackPlaylists updates only the playlist memberships of a track.
func HandleTrackPlaylists(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body trackPlaylistsRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := store.UpdateTrackPlaylists(c.Param("id"), body.Playlists); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update playlists"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}

// HandleDeleteTrack fully removes a track's metadata; download, like and
// playlist rows cascade away.
func HandleDeleteTrack(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.UnregisterTrack(c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete track"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}
