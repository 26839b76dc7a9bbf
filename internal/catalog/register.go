package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"scuttle/internal/events"
	"scuttle/internal/models"
)

// RegisterTrack upserts a track's metadata. Existing download, like and
// playlist rows are untouched; only the metadata layer changes.
func (c *Catalog) RegisterTrack(track models.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`
		INSERT INTO titles (id, title, source, duration)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    title = excluded.title,
		    source = excluded.source,
		    duration = excluded.duration;
	`, track.ID, track.Title, track.Artist, track.Duration); err != nil {
		return fmt.Errorf("registering track %s: %w", track.ID, err)
	}

	if track.Artist != "" {
		if _, err := c.db.Exec(`
			INSERT INTO artists (artist) VALUES (?)
			ON CONFLICT(artist) DO NOTHING;
		`, track.Artist); err != nil {
			return fmt.Errorf("registering artist: %w", err)
		}
		if _, err := c.db.Exec(`
			INSERT INTO title_artists (title_rowid, artist_rowid)
			SELECT t.rowid, a.rowid
			FROM titles t, artists a
			WHERE t.id = ? AND a.artist = ?
			ON CONFLICT DO NOTHING;
		`, track.ID, track.Artist); err != nil {
			return fmt.Errorf("linking artist: %w", err)
		}
	}

	c.refreshIndex()
	c.emit(events.ActionRegisterTrack, track)
	return nil
}

// UnregisterTrack removes a track's metadata. Downloads, likes and playlist
// rows referencing it go with it via the cascading foreign keys.
func (c *Catalog) UnregisterTrack(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`
		DELETE FROM title_artists
		WHERE title_rowid = (SELECT rowid FROM titles WHERE id = ?);
	`, id); err != nil {
		return fmt.Errorf("unlinking artists for %s: %w", id, err)
	}
	if _, err := c.db.Exec(`DELETE FROM titles WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("unregistering track %s: %w", id, err)
	}

	c.refreshIndex()
	c.emit(events.ActionUnregisterTrack, map[string]any{"id": id})
	return nil
}

// IsRegistered reports whether the track has a metadata row.
func (c *Catalog) IsRegistered(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var one int
	err := c.db.QueryRow(`SELECT 1 FROM titles WHERE id = ? LIMIT 1;`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RegisterDownload records that the track's audio now exists on disk and
// returns the effective metadata. The track must already be registered;
// ErrUnknownTrack otherwise. Registering an already-downloaded track keeps
// the original timestamp.
func (c *Catalog) RegisterDownload(id string) (models.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var one int
	err := c.db.QueryRow(`SELECT 1 FROM titles WHERE id = ? LIMIT 1;`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Track{}, fmt.Errorf("%w: %s", ErrUnknownTrack, id)
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("checking track %s: %w", id, err)
	}

	if _, err := c.db.Exec(`
		INSERT OR IGNORE INTO downloads (id, downloaded_at)
		VALUES (?, CURRENT_TIMESTAMP);
	`, id); err != nil {
		return models.Track{}, fmt.Errorf("registering download %s: %w", id, err)
	}

	var track models.Track
	var artist sql.NullString
	err = c.db.QueryRow(`
		SELECT
		    t.id,
		    COALESCE(t.title_display, t.title) AS title,
		    COALESCE(
		        GROUP_CONCAT(COALESCE(a.artist_display, a.artist), ', '),
		        t.source
		    ) AS artist,
		    t.duration
		FROM titles t
		LEFT JOIN title_artists ta ON t.rowid = ta.title_rowid
		LEFT JOIN artists a ON ta.artist_rowid = a.rowid
		WHERE t.id = ?
		GROUP BY t.id;
	`, id).Scan(&track.ID, &track.Title, &artist, &track.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Track{}, fmt.Errorf("%w: %s", ErrUnknownTrack, id)
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("fetching downloaded track %s: %w", id, err)
	}
	track.Artist = artist.String

	c.emit(events.ActionRegisterDownload, track)
	return track, nil
}

// UnregisterDownload removes the download row while keeping the metadata.
// Playlist memberships referencing the track survive; only the on-disk
// history entry is dropped.
func (c *Catalog) UnregisterDownload(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`DELETE FROM downloads WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("unregistering download %s: %w", id, err)
	}

	c.emit(events.ActionUnregisterDownload, map[string]any{"id": id})
	return nil
}

// IsDownloaded reports whether the track has a download row.
func (c *Catalog) IsDownloaded(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var one int
	err := c.db.QueryRow(`SELECT 1 FROM downloads WHERE id = ? LIMIT 1;`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
