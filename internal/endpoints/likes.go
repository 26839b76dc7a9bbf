package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type toggleLikeRequest struct {
	ID string `json:"id" binding:"required"`
}

type reorderRequest struct {
	FromIndex *int `json:"from_index" binding:"required"`
	ToIndex   *int `json:"to_index" binding:"required"`
}

// HandleGetLikes returns the liked track ids in order.
func HandleGetLikes(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := store.LikedTracks()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list likes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"content": ids})
	}
}

// HandleToggleLike flips a track's liked state.
func HandleToggleLike(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body toggleLikeRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := store.ToggleLike(body.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "toggled"})
	}
}

// HandleReorderLikes moves a liked track to a new position.
func HandleReorderLikes(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body reorderRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		ok, err := store.ReorderLikes(*body.FromIndex, *body.ToIndex)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder likes"})
			return
		}
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid index"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}
