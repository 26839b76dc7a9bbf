package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"scuttle/internal/events"
)

// ToggleLike flips a track's liked state. A new like lands at the top of
// the list by taking position MIN(position) - 1. Toggling twice restores
// membership but not the original position.
func (c *Catalog) ToggleLike(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var one int
	err := c.db.QueryRow(`SELECT 1 FROM likes WHERE id = ?;`, id).Scan(&one)
	switch {
	case err == nil:
		if _, err := c.db.Exec(`DELETE FROM likes WHERE id = ?;`, id); err != nil {
			return fmt.Errorf("removing like for %s: %w", id, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		var minPos sql.NullFloat64
		if err := c.db.QueryRow(`SELECT MIN(position) FROM likes;`).Scan(&minPos); err != nil {
			return fmt.Errorf("reading like positions: %w", err)
		}
		if _, err := c.db.Exec(`INSERT INTO likes (id, position) VALUES (?, ?);`,
			id, minPos.Float64-1.0); err != nil {
			return fmt.Errorf("adding like for %s: %w", id, err)
		}
	default:
		return fmt.Errorf("checking like for %s: %w", id, err)
	}
	return nil
}

// LikedTracks returns the liked track ids ordered by position and publishes
// the listing.
func (c *Catalog) LikedTracks() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`SELECT id FROM likes ORDER BY position ASC;`)
	if err != nil {
		return nil, fmt.Errorf("listing likes: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	c.emit(events.ActionFetchLikes, ids)
	return ids, nil
}

// ReorderLikes moves the liked track at fromIndex to toIndex. Indices are
// 0-based over the current ordering; toIndex refers to the list after the
// moved entry is taken out. Returns false for out-of-range indices or a
// list too small to reorder.
func (c *Catalog) ReorderLikes(fromIndex, toIndex int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`SELECT id, position FROM likes ORDER BY position ASC;`)
	if err != nil {
		return false, fmt.Errorf("listing likes: %w", err)
	}
	entries, err := scanPositions(rows)
	if err != nil {
		return false, err
	}

	id, newPosition, ok := reposition(entries, fromIndex, toIndex)
	if !ok {
		return false, nil
	}

	if _, err := c.db.Exec(`UPDATE likes SET position = ? WHERE id = ?;`, newPosition, id); err != nil {
		return false, fmt.Errorf("reordering like %s: %w", id, err)
	}
	return true, nil
}

type positionedRow struct {
	id       string
	position float64
}

func scanPositions(rows *sql.Rows) ([]positionedRow, error) {
	defer rows.Close()
	entries := []positionedRow{}
	for rows.Next() {
		var entry positionedRow
		if err := rows.Scan(&entry.id, &entry.position); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// reposition computes the fractional position that moves entries[fromIndex]
// to toIndex. toIndex is interpreted against the list with the moved entry
// removed: 0 goes above the new first entry, the last slot goes below the
// new last entry, anything between lands at the midpoint of its neighbors.
func reposition(entries []positionedRow, fromIndex, toIndex int) (id string, position float64, ok bool) {
	last := len(entries) - 1
	if last <= 0 || fromIndex < 0 || fromIndex > last || toIndex < 0 || toIndex > last {
		return "", 0, false
	}

	moved := entries[fromIndex]
	rest := append(append([]positionedRow{}, entries[:fromIndex]...), entries[fromIndex+1:]...)

	switch {
	case toIndex == 0:
		position = rest[0].position - 1.0
	case toIndex == last:
		position = rest[len(rest)-1].position + 1.0
	default:
		position = (rest[toIndex-1].position + rest[toIndex].position) / 2.0
	}
	return moved.id, position, true
}
