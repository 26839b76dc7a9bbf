package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scuttle/internal/config"
	"scuttle/internal/events"
	"scuttle/internal/models"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "test.db"), events.NewBus())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleTrack(id string) models.Track {
	return models.Track{
		ID:       id,
		Title:    "Test Song",
		Artist:   "Test Artist",
		Duration: 123.4,
	}
}

func TestRegisterTrackRoundtrip(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.RegisterTrack(sampleTrack("YT___abc")))

	registered, err := c.IsRegistered("YT___abc")
	require.NoError(t, err)
	assert.True(t, registered)

	registered, err = c.IsRegistered("YT___missing")
	require.NoError(t, err)
	assert.False(t, registered)

	require.NoError(t, c.UnregisterTrack("YT___abc"))
	registered, err = c.IsRegistered("YT___abc")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestRegisterTrackUpsertsMetadata(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.RegisterTrack(sampleTrack("YT___abc")))

	updated := sampleTrack("YT___abc")
	updated.Title = "Renamed Song"
	require.NoError(t, c.RegisterTrack(updated))

	track, err := c.RegisterDownload("YT___abc")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Song", track.Title)
	assert.Equal(t, "Test Artist", track.Artist)
}

func TestRegisterDownloadUnknownTrack(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.RegisterDownload("YT___ghost")
	assert.ErrorIs(t, err, ErrUnknownTrack)
}

func TestRegisterDownloadIdempotent(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.RegisterTrack(sampleTrack("YT___abc")))
	_, err := c.RegisterDownload("YT___abc")
	require.NoError(t, err)
	_, err = c.RegisterDownload("YT___abc")
	require.NoError(t, err)

	tracks, err := c.DownloadsContent()
	require.NoError(t, err)
	assert.Len(t, tracks, 1)
}

func TestUnregisterTrackCascadesDownload(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.RegisterTrack(sampleTrack("YT___abc")))
	_, err := c.RegisterDownload("YT___abc")
	require.NoError(t, err)

	require.NoError(t, c.UnregisterTrack("YT___abc"))

	downloaded, err := c.IsDownloaded("YT___abc")
	require.NoError(t, err)
	assert.False(t, downloaded)
}

func TestUnregisterDownloadKeepsMetadata(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.RegisterTrack(sampleTrack("YT___abc")))
	_, err := c.RegisterDownload("YT___abc")
	require.NoError(t, err)

	require.NoError(t, c.UnregisterDownload("YT___abc"))

	downloaded, err := c.IsDownloaded("YT___abc")
	require.NoError(t, err)
	assert.False(t, downloaded)

	registered, err := c.IsRegistered("YT___abc")
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestSetCustomMetadata(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.RegisterTrack(sampleTrack("YT___abc")))

	track, err := c.SetCustomMetadata("YT___abc", "Custom Title", "Custom Artist")
	require.NoError(t, err)
	assert.Equal(t, "Custom Title", track.Title)
	assert.Equal(t, "Custom Artist", track.Artist)

	// Clearing the title override falls back to the fetched title; the
	// linked artist row keeps serving the artist column.
	track, err = c.SetCustomMetadata("YT___abc", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Test Song", track.Title)
	assert.Equal(t, "Test Artist", track.Artist)
}

func TestCatalogEmitsEvents(t *testing.T) {
	bus := events.NewBus()
	var actions []string
	record := func(e events.Event) error {
		actions = append(actions, e.Action)
		return nil
	}
	for _, action := range []string{
		events.ActionRegisterTrack,
		events.ActionRegisterDownload,
		events.ActionUnregisterDownload,
		events.ActionUnregisterTrack,
	} {
		bus.Subscribe(config.CatalogName, action, record)
	}

	c, err := Open(filepath.Join(t.TempDir(), "test.db"), bus)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.RegisterTrack(sampleTrack("YT___abc")))
	_, err = c.RegisterDownload("YT___abc")
	require.NoError(t, err)
	require.NoError(t, c.UnregisterDownload("YT___abc"))
	require.NoError(t, c.UnregisterTrack("YT___abc"))

	assert.Equal(t, []string{
		events.ActionRegisterTrack,
		events.ActionRegisterDownload,
		events.ActionUnregisterDownload,
		events.ActionUnregisterTrack,
	}, actions)
}

func TestCleanupDownloadDir(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.RegisterTrack(sampleTrack("YT___keep")))
	_, err := c.RegisterDownload("YT___keep")
	require.NoError(t, err)

	dir := t.TempDir()
	keep := filepath.Join(dir, "YT___keep.opus")
	orphan := filepath.Join(dir, "YT___orphan.opus")
	require.NoError(t, os.WriteFile(keep, []byte("audio"), 0o644))
	require.NoError(t, os.WriteFile(orphan, []byte("audio"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	require.NoError(t, c.CleanupDownloadDir(dir))

	assert.FileExists(t, keep)
	assert.NoFileExists(t, orphan)
	assert.DirExists(t, filepath.Join(dir, "subdir"))
}

func TestCleanupDownloadDirMissing(t *testing.T) {
	c := newTestCatalog(t)
	assert.NoError(t, c.CleanupDownloadDir(filepath.Join(t.TempDir(), "nope")))
}
