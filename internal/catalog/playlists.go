package catalog

import (
	"database/sql"
	"fmt"

	"scuttle/internal/events"
	"scuttle/internal/models"
)

// Playlist is a named ordered collection of tracks.
type Playlist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PlaylistContent pairs a playlist with its ordered track ids.
type PlaylistContent struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	TrackIDs []string `json:"trackIds"`
}

// CreatePlaylist inserts a playlist and returns its assigned id. tempID is
// a client-chosen correlation token echoed in the event payload so the
// creating client can reconcile its optimistic entry.
func (c *Catalog) CreatePlaylist(name, tempID string) (Playlist, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var id int64
	if err := c.db.QueryRow(`
		INSERT INTO playlists (name)
		VALUES (?)
		RETURNING id;
	`, name).Scan(&id); err != nil {
		return Playlist{}, fmt.Errorf("creating playlist %q: %w", name, err)
	}

	playlist := Playlist{ID: id, Name: name}
	c.emit(events.ActionCreatePlaylist, map[string]any{
		"temp_id": tempID,
		"id":      id,
		"name":    name,
	})
	return playlist, nil
}

// EditPlaylist renames a playlist.
func (c *Catalog) EditPlaylist(id int64, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`UPDATE playlists SET name = ? WHERE id = ?;`, name, id); err != nil {
		return fmt.Errorf("renaming playlist %d: %w", id, err)
	}

	c.emit(events.ActionEditPlaylist, map[string]any{"id": id, "name": name})
	return nil
}

// DeletePlaylist removes a playlist; membership rows cascade away with it.
func (c *Catalog) DeletePlaylist(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`DELETE FROM playlists WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("deleting playlist %d: %w", id, err)
	}

	c.emit(events.ActionDeletePlaylist, map[string]any{"id": id})
	return nil
}

// Playlists lists every playlist ordered by id and publishes the listing.
func (c *Catalog) Playlists() ([]Playlist, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`SELECT id, name FROM playlists ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	defer rows.Close()

	playlists := []Playlist{}
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	c.emit(events.ActionGetAllPlaylists, playlists)
	return playlists, nil
}

// Content returns a playlist's name and ordered track ids. An unknown
// playlist id yields an empty content with a zero name rather than an
// error; clients treat it as a deleted playlist.
func (c *Catalog) Content(playlistID int64) (PlaylistContent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	content := PlaylistContent{ID: playlistID, TrackIDs: []string{}}

	err := c.db.QueryRow(`SELECT name FROM playlists WHERE id = ?;`, playlistID).Scan(&content.Name)
	if err == sql.ErrNoRows {
		return content, nil
	}
	if err != nil {
		return content, fmt.Errorf("reading playlist %d: %w", playlistID, err)
	}

	rows, err := c.db.Query(`
		SELECT track_id
		FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position ASC;
	`, playlistID)
	if err != nil {
		return content, fmt.Errorf("reading playlist %d tracks: %w", playlistID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return content, err
		}
		content.TrackIDs = append(content.TrackIDs, id)
	}
	if err := rows.Err(); err != nil {
		return content, err
	}

	c.emit(events.ActionGetPlaylistContent, content)
	return content, nil
}

// UpdateTrackPlaylists applies a batch of membership changes for one track.
// Checked true appends the track at the bottom of the playlist when absent;
// checked false removes it; nil leaves the playlist alone.
func (c *Catalog) UpdateTrackPlaylists(trackID string, updates []models.PlaylistUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, update := range updates {
		if update.Checked == nil {
			continue
		}
		if *update.Checked {
			var maxPos sql.NullFloat64
			if err := c.db.QueryRow(`
				SELECT MAX(position) FROM playlist_tracks WHERE playlist_id = ?;
			`, update.PlaylistID).Scan(&maxPos); err != nil {
				return fmt.Errorf("reading playlist %d positions: %w", update.PlaylistID, err)
			}
			if _, err := c.db.Exec(`
				INSERT INTO playlist_tracks (playlist_id, track_id, position)
				VALUES (?, ?, ?)
				ON CONFLICT(playlist_id, track_id) DO NOTHING;
			`, update.PlaylistID, trackID, maxPos.Float64+1.0); err != nil {
				return fmt.Errorf("adding %s to playlist %d: %w", trackID, update.PlaylistID, err)
			}
		} else {
			if _, err := c.db.Exec(`
				DELETE FROM playlist_tracks
				WHERE playlist_id = ? AND track_id = ?;
			`, update.PlaylistID, trackID); err != nil {
				return fmt.Errorf("removing %s from playlist %d: %w", trackID, update.PlaylistID, err)
			}
		}
	}

	c.emit(events.ActionUpdatePlaylists, map[string]any{
		"id":      trackID,
		"updates": updates,
	})
	return nil
}

// ReorderPlaylistTrack moves the track at fromIndex to toIndex within a
// playlist, using the same fractional positioning as likes. Returns false
// for out-of-range indices or a playlist too small to reorder.
func (c *Catalog) ReorderPlaylistTrack(playlistID int64, fromIndex, toIndex int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`
		SELECT track_id, position
		FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position ASC;
	`, playlistID)
	if err != nil {
		return false, fmt.Errorf("listing playlist %d tracks: %w", playlistID, err)
	}
	entries, err := scanPositions(rows)
	if err != nil {
		return false, err
	}

	id, newPosition, ok := reposition(entries, fromIndex, toIndex)
	if !ok {
		return false, nil
	}

	if _, err := c.db.Exec(`
		UPDATE playlist_tracks
		SET position = ?
		WHERE playlist_id = ? AND track_id = ?;
	`, newPosition, playlistID, id); err != nil {
		return false, fmt.Errorf("reordering playlist %d: %w", playlistID, err)
	}
	return true, nil
}
