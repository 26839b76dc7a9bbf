package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"scuttle/internal/events"
	"scuttle/internal/models"
)

const searchResultLimit = 30

// Search runs a prefix full-text query over titles and artists, ranked by
// bm25 weighted by title and artist preference boosts. An empty query
// returns the download history instead, newest first. Results are published
// as a catalog search event.
func (c *Catalog) Search(q string) ([]models.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(q) == "" {
		tracks, err := c.downloadsLocked()
		if err != nil {
			return nil, err
		}
		c.emit(events.ActionSearch, tracks)
		return tracks, nil
	}

	rows, err := c.db.Query(`
		SELECT
		    t.id,
		    COALESCE(t.title_display, t.title) AS title,
		    COALESCE(
		        GROUP_CONCAT(COALESCE(a.artist_display, a.artist), ', '),
		        t.source
		    ) AS artist,
		    t.duration,
		    sub.score * LN_BOOST(t.pref) * COALESCE(MAX(LN_BOOST(a.pref)), 1.0) AS final_rank
		FROM (
		    SELECT
		        rowid,
		        bm25(catalog_fts, 1.0, 1.5) AS score
		    FROM catalog_fts
		    WHERE catalog_fts MATCH ?
		    LIMIT ?
		) AS sub
		JOIN titles t ON t.rowid = sub.rowid
		LEFT JOIN title_artists ta ON ta.title_rowid = t.rowid
		LEFT JOIN artists a ON a.rowid = ta.artist_rowid
		GROUP BY sub.rowid
		ORDER BY final_rank ASC;
	`, ftsQuery(q), searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", q, err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var track models.Track
		var artist sql.NullString
		var rank float64
		if err := rows.Scan(&track.ID, &track.Title, &artist, &track.Duration, &rank); err != nil {
			return nil, err
		}
		track.Artist = artist.String
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	c.emit(events.ActionSearch, tracks)
	return tracks, nil
}

// ftsQuery turns free text into a prefix-matching FTS expression. Quoting
// each token keeps user input from being parsed as FTS syntax.
func ftsQuery(q string) string {
	tokens := strings.Fields(q)
	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.ReplaceAll(token, `"`, `""`)
		parts = append(parts, fmt.Sprintf(`"%s"*`, token))
	}
	return strings.Join(parts, " ")
}
