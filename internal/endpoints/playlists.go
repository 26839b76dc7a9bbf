package endpoints

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scuttle/internal/models"
	"scuttle/internal/queue"
)

type createPlaylistRequest struct {
	TempID    string `json:"temp_id"`
	Name      string `json:"name"`
	ImportURL string `json:"import_url"`
}

type editPlaylistRequest struct {
	Name string `json:"name"`
}

// HandleGetPlaylists lists every playlist.
func HandleGetPlaylists(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		playlists, err := store.Playlists()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list playlists"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"content": playlists})
	}
}

// HandleCreatePlaylist creates a playlist. When import_url is present the
// linked playlist is scraped and every entry becomes a download job already
// pointed at the new playlist.
func HandleCreatePlaylist(store Store, downloadQueue *queue.DownloadQueue, playlistImporter PlaylistImporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body createPlaylistRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		name := strings.TrimSpace(body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Playlist name cannot be empty"})
			return
		}

		playlist, err := store.CreatePlaylist(name, body.TempID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create playlist"})
			return
		}

		if url := strings.TrimSpace(body.ImportURL); url != "" {
			checked := true
			for _, entry := range playlistImporter.Fetch(url) {
				meta := entry.Metadata
				job := &models.DownloadJob{
					Query:    entry.Query,
					Metadata: &meta,
					Updates: []models.PlaylistUpdate{
						{PlaylistID: playlist.ID, Checked: &checked},
					},
					QueueLast: true,
				}
				downloadQueue.Push(job)
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "created", "content": playlist})
	}
}

// HandlePlaylistContent returns a playlist's name and ordered track ids.
func HandlePlaylistContent(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := playlistID(c)
		if !ok {
			return
		}
		content, err := store.Content(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read playlist"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"content": content})
	}
}

// HandleEditPlaylist renames a playlist.
func HandleEditPlaylist(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := playlistID(c)
		if !ok {
			return
		}

		var body editPlaylistRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		name := strings.TrimSpace(body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Playlist name cannot be empty"})
			return
		}

		if err := store.EditPlaylist(id, name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename playlist"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}

// HandleDeletePlaylist removes a playlist.
func HandleDeletePlaylist(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := playlistID(c)
		if !ok {
			return
		}
		if err := store.DeletePlaylist(id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete playlist"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

// HandleReorderPlaylist moves a track within a playlist. The reserved id
// "likes" routes to the likes list, which reorders the same way.
func HandleReorderPlaylist(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body reorderRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		raw := c.Param("id")
		var ok bool
		var err error
		if id, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil {
			ok, err = store.ReorderPlaylistTrack(id, *body.FromIndex, *body.ToIndex)
		} else {
			ok, err = store.ReorderLikes(*body.FromIndex, *body.ToIndex)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder"})
			return
		}
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid index"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

func playlistID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid playlist id"})
		return 0, false
	}
	return id, true
}
