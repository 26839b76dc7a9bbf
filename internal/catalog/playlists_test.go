package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scuttle/internal/models"
)

func boolPtr(v bool) *bool { return &v }

func TestPlaylistLifecycle(t *testing.T) {
	c := newTestCatalog(t)

	playlist, err := c.CreatePlaylist("Road Trip", "tmp-1")
	require.NoError(t, err)
	assert.NotZero(t, playlist.ID)
	assert.Equal(t, "Road Trip", playlist.Name)

	require.NoError(t, c.EditPlaylist(playlist.ID, "Road Trip 2"))

	playlists, err := c.Playlists()
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, "Road Trip 2", playlists[0].Name)

	require.NoError(t, c.DeletePlaylist(playlist.ID))
	playlists, err = c.Playlists()
	require.NoError(t, err)
	assert.Empty(t, playlists)
}

func TestPlaylistCreationTimestamp(t *testing.T) {
	c := newTestCatalog(t)

	playlist, err := c.CreatePlaylist("Stamped", "")
	require.NoError(t, err)

	var createdAt string
	err = c.db.QueryRow(`SELECT created_at FROM playlists WHERE id = ?`, playlist.ID).Scan(&createdAt)
	require.NoError(t, err)
	assert.NotEmpty(t, createdAt)
}

func TestPlaylistContentUnknownID(t *testing.T) {
	c := newTestCatalog(t)

	content, err := c.Content(999)
	require.NoError(t, err)
	assert.Equal(t, int64(999), content.ID)
	assert.Empty(t, content.Name)
	assert.Empty(t, content.TrackIDs)
}

func TestUpdateTrackPlaylistsAppendsInOrder(t *testing.T) {
	c := newTestCatalog(t)
	registerTracks(t, c, "YT___a", "YT___b")

	playlist, err := c.CreatePlaylist("Mix", "")
	require.NoError(t, err)

	add := []models.PlaylistUpdate{{PlaylistID: playlist.ID, Checked: boolPtr(true)}}
	require.NoError(t, c.UpdateTrackPlaylists("YT___a", add))
	require.NoError(t, c.UpdateTrackPlaylists("YT___b", add))

	content, err := c.Content(playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"YT___a", "YT___b"}, content.TrackIDs)
}

func TestUpdateTrackPlaylistsIdempotentAdd(t *testing.T) {
	c := newTestCatalog(t)
	registerTracks(t, c, "YT___a")

	playlist, err := c.CreatePlaylist("Mix", "")
	require.NoError(t, err)

	add := []models.PlaylistUpdate{{PlaylistID: playlist.ID, Checked: boolPtr(true)}}
	require.NoError(t, c.UpdateTrackPlaylists("YT___a", add))
	require.NoError(t, c.UpdateTrackPlaylists("YT___a", add))

	content, err := c.Content(playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"YT___a"}, content.TrackIDs)
}

func TestUpdateTrackPlaylistsRemoveAndSkip(t *testing.T) {
	c := newTestCatalog(t)
	registerTracks(t, c, "YT___a")

	first, err := c.CreatePlaylist("First", "")
	require.NoError(t, err)
	second, err := c.CreatePlaylist("Second", "")
	require.NoError(t, err)

	require.NoError(t, c.UpdateTrackPlaylists("YT___a", []models.PlaylistUpdate{
		{PlaylistID: first.ID, Checked: boolPtr(true)},
		{PlaylistID: second.ID, Checked: boolPtr(true)},
	}))

	// Remove from first, leave second untouched via nil.
	require.NoError(t, c.UpdateTrackPlaylists("YT___a", []models.PlaylistUpdate{
		{PlaylistID: first.ID, Checked: boolPtr(false)},
		{PlaylistID: second.ID},
	}))

	content, err := c.Content(first.ID)
	require.NoError(t, err)
	assert.Empty(t, content.TrackIDs)

	content, err = c.Content(second.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"YT___a"}, content.TrackIDs)
}

func TestReorderPlaylistTrack(t *testing.T) {
	c := newTestCatalog(t)
	registerTracks(t, c, "YT___a", "YT___b", "YT___c")

	playlist, err := c.CreatePlaylist("Mix", "")
	require.NoError(t, err)
	add := []models.PlaylistUpdate{{PlaylistID: playlist.ID, Checked: boolPtr(true)}}
	for _, id := range []string{"YT___a", "YT___b", "YT___c"} {
		require.NoError(t, c.UpdateTrackPlaylists(id, add))
	}

	ok, err := c.ReorderPlaylistTrack(playlist.ID, 2, 0)
	require.NoError(t, err)
	require.True(t, ok)

	content, err := c.Content(playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"YT___c", "YT___a", "YT___b"}, content.TrackIDs)

	ok, err = c.ReorderPlaylistTrack(playlist.ID, 5, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletePlaylistCascadesMembership(t *testing.T) {
	c := newTestCatalog(t)
	registerTracks(t, c, "YT___a")

	playlist, err := c.CreatePlaylist("Mix", "")
	require.NoError(t, err)
	require.NoError(t, c.UpdateTrackPlaylists("YT___a", []models.PlaylistUpdate{
		{PlaylistID: playlist.ID, Checked: boolPtr(true)},
	}))

	require.NoError(t, c.DeletePlaylist(playlist.ID))

	// The track itself is untouched.
	registered, err := c.IsRegistered("YT___a")
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestDeleteTrackRemovesPlaylistMembership(t *testing.T) {
	c := newTestCatalog(t)
	registerTracks(t, c, "YT___a", "YT___b")

	playlist, err := c.CreatePlaylist("Mix", "")
	require.NoError(t, err)
	add := []models.PlaylistUpdate{{PlaylistID: playlist.ID, Checked: boolPtr(true)}}
	require.NoError(t, c.UpdateTrackPlaylists("YT___a", add))
	require.NoError(t, c.UpdateTrackPlaylists("YT___b", add))

	require.NoError(t, c.UnregisterTrack("YT___a"))

	content, err := c.Content(playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"YT___b"}, content.TrackIDs)
}
