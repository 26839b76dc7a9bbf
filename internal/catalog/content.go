package catalog

import (
	"database/sql"
	"fmt"

	"scuttle/internal/events"
	"scuttle/internal/models"
)

// DownloadsContent returns every downloaded track with its effective
// metadata, most recent download first, and publishes the listing.
func (c *Catalog) DownloadsContent() ([]models.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tracks, err := c.downloadsLocked()
	if err != nil {
		return nil, err
	}

	c.emit(events.ActionGetDownloadsContent, tracks)
	return tracks, nil
}

func (c *Catalog) downloadsLocked() ([]models.Track, error) {
	rows, err := c.db.Query(`
		SELECT
		    t.id,
		    COALESCE(t.title_display, t.title) AS title,
		    COALESCE(
		        GROUP_CONCAT(COALESCE(a.artist_display, a.artist), ', '),
		        t.source
		    ) AS artist,
		    t.duration
		FROM titles t
		INNER JOIN downloads d ON t.id = d.id
		LEFT JOIN title_artists ta ON t.rowid = ta.title_rowid
		LEFT JOIN artists a ON ta.artist_rowid = a.rowid
		GROUP BY t.id
		ORDER BY d.downloaded_at DESC;
	`)
	if err != nil {
		return nil, fmt.Errorf("listing downloads: %w", err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var track models.Track
		var artist sql.NullString
		if err := rows.Scan(&track.ID, &track.Title, &artist, &track.Duration); err != nil {
			return nil, err
		}
		track.Artist = artist.String
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// SetCustomMetadata stores user overrides for a track's display title and
// artist. Empty strings clear the override, falling back to the fetched
// values. Returns the effective metadata after the change.
func (c *Catalog) SetCustomMetadata(id, customTitle, customArtist string) (models.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	title := sql.NullString{String: customTitle, Valid: customTitle != ""}
	artist := sql.NullString{String: customArtist, Valid: customArtist != ""}

	if _, err := c.db.Exec(`
		UPDATE titles
		SET title_display = ?,
		    source = ?
		WHERE id = ?;
	`, title, artist, id); err != nil {
		return models.Track{}, fmt.Errorf("setting metadata for %s: %w", id, err)
	}

	var track models.Track
	var effectiveArtist sql.NullString
	err := c.db.QueryRow(`
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
	`, id).Scan(&track.ID, &track.Title, &effectiveArtist, &track.Duration)
	if err != nil {
		return models.Track{}, fmt.Errorf("reading metadata for %s: %w", id, err)
	}
	track.Artist = effectiveArtist.String

	c.refreshIndex()
	c.emit(events.ActionSetMetadata, track)
	return track, nil
}
