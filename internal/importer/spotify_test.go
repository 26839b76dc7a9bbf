package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotifyMatches(t *testing.T) {
	e := NewSpotifyExtractor()

	assert.True(t, e.Matches("https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M"))
	assert.True(t, e.Matches("spotify:playlist:37i9dQZF1DXcBWIGoYBM5M"))
	assert.True(t, e.Matches("https://spotify.link/abc123"))
	assert.False(t, e.Matches("https://open.spotify.com/album/xyz"))
	assert.False(t, e.Matches("https://music.youtube.com/playlist?list=abc"))
}

func TestEmbedURL(t *testing.T) {
	got, err := embedURL("https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc")
	require.NoError(t, err)
	assert.Equal(t, "https://open.spotify.com/embed/playlist/37i9dQZF1DXcBWIGoYBM5M", got)

	_, err = embedURL("https://open.spotify.com/album/nope")
	assert.Error(t, err)
}

func TestFindKey(t *testing.T) {
	data := map[string]any{
		"props": map[string]any{
			"pageProps": map[string]any{
				"state": map[string]any{
					"data": map[string]any{
						"entity": map[string]any{
							"trackList": []any{
								map[string]any{"title": "Song", "subtitle": "Artist"},
							},
						},
					},
				},
			},
		},
	}

	found, ok := findKey(data, "trackList").([]any)
	require.True(t, ok)
	require.Len(t, found, 1)

	assert.Nil(t, findKey(data, "absent"))
	assert.Nil(t, findKey([]any{"just", "strings"}, "trackList"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "A B", cleanText("A\u00a0B"))
	assert.Equal(t, "plain", cleanText("plain"))
}
