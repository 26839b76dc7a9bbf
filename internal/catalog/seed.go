package catalog

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Seed loads an initial library of search candidates from a CSV export.
// Expected columns: track_id, track_name, popularity, duration,
// artist_names and artist_ids (pipe-delimited, pairwise). Runs once; a
// non-empty titles table skips the whole thing. A missing file is not an
// error, the catalog just starts empty.
func (c *Catalog) Seed(csvPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM titles;`).Scan(&count); err != nil {
		return fmt.Errorf("checking seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	f, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("No seed file found, starting with an empty catalog", "path", csvPath)
			return nil
		}
		return fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading seed header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("reading seed rows: %w", err)
	}
	slog.Info("Seeding catalog", "rows", len(records))

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	// Popularity floor for the title pref baseline.
	minPop := 0.0
	havePop := false
	for _, record := range records {
		if pop, err := strconv.ParseFloat(field(record, "popularity"), 64); err == nil {
			if !havePop || pop < minPop {
				minPop = pop
				havePop = true
			}
		}
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	defer tx.Rollback()

	maxFreq := 0
	artistFreq := map[string]int{}

	for _, record := range records {
		title := field(record, "track_name")
		if title == "" {
			continue
		}
		titleID := "SEED___" + field(record, "track_id")

		pop, _ := strconv.ParseFloat(field(record, "popularity"), 64)
		pref := (pop - minPop) / 50.0
		duration, _ := strconv.ParseFloat(field(record, "duration"), 64)

		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO titles (id, title, title_display, duration, pref)
			VALUES (?, ?, ?, ?, ?);
		`, titleID, strings.ToLower(title), title, duration, pref); err != nil {
			return fmt.Errorf("seeding title %s: %w", titleID, err)
		}

		names := strings.Split(field(record, "artist_names"), "|")
		ids := strings.Split(field(record, "artist_ids"), "|")
		for i := 0; i < len(names) && i < len(ids); i++ {
			name := strings.TrimSpace(names[i])
			artistID := strings.TrimSpace(ids[i])
			if name == "" || artistID == "" {
				continue
			}

			artistFreq[artistID]++
			if artistFreq[artistID] > maxFreq {
				maxFreq = artistFreq[artistID]
			}

			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO artists (id, artist, artist_display)
				VALUES (?, ?, ?);
			`, artistID, strings.ToLower(name), name); err != nil {
				return fmt.Errorf("seeding artist %s: %w", artistID, err)
			}
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO title_artists (title_rowid, artist_rowid)
				SELECT t.rowid, a.rowid
				FROM titles t, artists a
				WHERE t.id = ? AND a.id = ?;
			`, titleID, artistID); err != nil {
				return fmt.Errorf("linking seed artist %s: %w", artistID, err)
			}
		}
	}

	// Artist pref scales with how often the artist appears in the seed,
	// normalized so the most frequent artist lands at 0.5.
	if maxFreq > 0 {
		if _, err := tx.Exec(`
			UPDATE artists
			SET pref = (
			    SELECT CAST(COUNT(*) AS REAL) / ?
			    FROM title_artists
			    WHERE title_artists.artist_rowid = artists.rowid
			)
			WHERE EXISTS (
			    SELECT 1 FROM title_artists WHERE artist_rowid = artists.rowid
			);
		`, 2.0*float64(maxFreq)); err != nil {
			return fmt.Errorf("computing artist prefs: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	if err := c.rebuildIndexLocked(); err != nil {
		return err
	}
	slog.Info("Catalog seed complete")
	return nil
}
