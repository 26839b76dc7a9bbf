package events

// Event is a single state change published on the bus. Immutable once
// published; payload contents are component-defined.
type Event struct {
	Source  string
	Action  string
	Payload map[string]any
}

// Action names for each event source. These cross the websocket boundary,
// so renaming any of them breaks deployed clients.
const (
	// Play queue / download queue
	ActionSetAll      = "set_all"
	ActionSetFirst    = "set_first"
	ActionInsertNext  = "insert_next"
	ActionPush        = "push"
	ActionPop         = "pop"
	ActionRemove      = "remove"
	ActionClear       = "clear"
	ActionSendContent = "send_content"

	// Catalog
	ActionSetMetadata         = "set_metadata"
	ActionCreatePlaylist      = "create_playlist"
	ActionUpdatePlaylists     = "update_playlists"
	ActionEditPlaylist        = "edit_playlist"
	ActionDeletePlaylist      = "delete_playlist"
	ActionRegisterTrack       = "log_track"
	ActionUnregisterTrack     = "unlog_track"
	ActionRegisterDownload    = "log_download"
	ActionUnregisterDownload  = "unlog_download"
	ActionGetDownloadsContent = "get_downloads_content"
	ActionSearch              = "search"
	ActionFetchLikes          = "fetch_likes"
	ActionGetAllPlaylists     = "get_all_playlists"
	ActionGetPlaylistContent  = "get_playlist_content"

	// Fetcher
	ActionDownload  = "download"
	ActionTaskStart = "task_start"
	ActionTaskEnd   = "task_finish"
	ActionError     = "error"
)
