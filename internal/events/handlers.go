package events

import "scuttle/internal/config"

// subscriptions is the full set of (source, action) pairs mirrored to
// websocket clients. Every state change a client can render appears here.
var subscriptions = []struct {
	source  string
	actions []string
}{
	{config.PlayQueueName, []string{
		ActionSetAll, ActionSetFirst, ActionInsertNext, ActionPush,
		ActionPop, ActionRemove, ActionClear, ActionSendContent,
	}},
	{config.DownloadQueueName, []string{
		ActionSetAll, ActionSetFirst, ActionInsertNext, ActionPush,
		ActionPop, ActionRemove, ActionClear, ActionSendContent,
	}},
	{config.CatalogName, []string{
		ActionSetMetadata, ActionCreatePlaylist, ActionUpdatePlaylists,
		ActionEditPlaylist, ActionDeletePlaylist, ActionRegisterTrack,
		ActionUnregisterTrack, ActionRegisterDownload, ActionUnregisterDownload,
		ActionGetDownloadsContent, ActionSearch, ActionFetchLikes,
		ActionGetAllPlaylists, ActionGetPlaylistContent,
	}},
	{config.FetcherName, []string{
		ActionSearch, ActionDownload, ActionTaskStart, ActionTaskEnd, ActionError,
	}},
}

// RegisterEventHandlers wires every client-visible event to the broadcaster.
// Called once at boot, before the bus sees any traffic.
func RegisterEventHandlers(bus *Bus, broadcaster *Broadcaster) {
	for _, sub := range subscriptions {
		for _, action := range sub.actions {
			bus.Subscribe(sub.source, action, broadcaster.Broadcast)
		}
	}
}
