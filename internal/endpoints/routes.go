package endpoints

import (
	"github.com/gin-gonic/gin"

	"scuttle/internal/catalog"
	"scuttle/internal/events"
	"scuttle/internal/importer"
	"scuttle/internal/models"
	"scuttle/internal/queue"
)

// Store is the catalog surface the handlers depend on.
type Store interface {
	IsDownloaded(id string) (bool, error)
	Search(q string) ([]models.Track, error)
	DownloadsContent() ([]models.Track, error)
	RegisterTrack(track models.Track) error
	UnregisterTrack(id string) error
	UnregisterDownload(id string) error
	SetCustomMetadata(id, customTitle, customArtist string) (models.Track, error)
	ToggleLike(id string) error
	LikedTracks() ([]string, error)
	ReorderLikes(fromIndex, toIndex int) (bool, error)
	Playlists() ([]catalog.Playlist, error)
	Content(playlistID int64) (catalog.PlaylistContent, error)
	CreatePlaylist(name, tempID string) (catalog.Playlist, error)
	EditPlaylist(id int64, name string) error
	DeletePlaylist(id int64) error
	ReorderPlaylistTrack(playlistID int64, fromIndex, toIndex int) (bool, error)
	UpdateTrackPlaylists(trackID string, updates []models.PlaylistUpdate) error
}

// Searcher performs remote lookups through the fetcher.
type Searcher interface {
	Search(q string) []models.Track
}

// PlaylistImporter resolves playlist links into download entries.
type PlaylistImporter interface {
	Fetch(url string) []importer.Entry
}

// Deps bundles everything the HTTP layer touches.
type Deps struct {
	Store         Store
	PlayQueue     *queue.PlayQueue
	DownloadQueue *queue.DownloadQueue
	Searcher      Searcher
	Importer      PlaylistImporter
	Broadcaster   *events.Broadcaster
	DownloadDir   string
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, deps Deps) {
	r.GET("/ws", HandleWebsocket(deps.Broadcaster))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "healthy",
				"service": "scuttle",
			})
		})

		api.POST("/download", HandleDownload(deps.Store, deps.DownloadQueue))

		api.GET("/queue", HandleQueueContent(deps.PlayQueue))
		api.POST("/queue/set-all", HandleQueueSetAll(deps.Store, deps.PlayQueue))
		api.POST("/queue/set-first", HandleQueueSetFirst(deps.Store, deps.PlayQueue, deps.DownloadQueue))
		api.POST("/queue/insert-next", HandleQueueInsertNext(deps.Store, deps.PlayQueue, deps.DownloadQueue))
		api.POST("/queue/push", HandleQueuePush(deps.Store, deps.PlayQueue, deps.DownloadQueue))
		api.POST("/queue/pop", HandleQueuePop(deps.PlayQueue))
		api.POST("/queue/remove", HandleQueueRemove(deps.PlayQueue))
		api.POST("/queue/clear", HandleQueueClear(deps.PlayQueue))
		api.GET("/download-queue", HandleDownloadQueueContent(deps.DownloadQueue))

		api.GET("/search", HandleSearch(deps.Store))
		api.GET("/search/remote", HandleRemoteSearch(deps.Store, deps.Searcher))
		api.GET("/downloads", HandleDownloadsContent(deps.Store))
		api.DELETE("/downloads/:id", HandleDeleteDownload(deps.Store))

		api.GET("/likes", HandleGetLikes(deps.Store))
		api.POST("/likes/toggle", HandleToggleLike(deps.Store))
		api.POST("/likes/reorder", HandleReorderLikes(deps.Store))

		api.GET("/playlists", HandleGetPlaylists(deps.Store))
		api.POST("/playlists", HandleCreatePlaylist(deps.Store, deps.DownloadQueue, deps.Importer))
		api.GET("/playlists/:id", HandlePlaylistContent(deps.Store))
		api.PATCH("/playlists/:id", HandleEditPlaylist(deps.Store))
		api.DELETE("/playlists/:id", HandleDeletePlaylist(deps.Store))
		api.POST("/playlists/:id/reorder", HandleReorderPlaylist(deps.Store))

		api.POST("/tracks/:id/metadata", HandleEditTrack(deps.Store))
		api.POST("/tracks/:id/playlists", HandleTrackPlaylists(deps.Store))
		api.DELETE("/tracks/:id", HandleDeleteTrack(deps.Store))

		api.GET("/audio/:id", HandleAudioStream(deps.Store, deps.DownloadQueue, deps.DownloadDir))
	}
}
