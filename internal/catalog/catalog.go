// Package catalog persists track metadata, download history, likes and
// playlists in a single sqlite database, and maintains the full-text index
// used by search. Every mutation publishes a catalog event so connected
// clients stay current.
package catalog

import (
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"modernc.org/sqlite"

	"scuttle/internal/config"
	"scuttle/internal/events"
)

//go:embed schema.sql
var schemaSQL string

// ErrUnknownTrack is returned when an operation references a track id that
// has no row in titles.
var ErrUnknownTrack = errors.New("track is not registered")

func init() {
	// Search ranking boost: 1 at pref 0, ~1.7 at pref 1. Registered on the
	// driver, so it is available on every connection.
	sqlite.MustRegisterDeterministicScalarFunction("ln_boost", 1,
		func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			var pref float64
			switch v := args[0].(type) {
			case int64:
				pref = float64(v)
			case float64:
				pref = v
			case nil:
				pref = 0
			default:
				return nil, fmt.Errorf("ln_boost: unsupported argument type %T", v)
			}
			return 1 + math.Log(pref+1), nil
		})
}

// Catalog wraps the sqlite connection. A single mutex serializes access;
// contention is negligible at personal-library scale and it keeps
// read-modify-write sequences like reorders atomic.
type Catalog struct {
	mu  sync.Mutex
	db  *sql.DB
	bus *events.Bus
}

// Open creates or opens the database at path, applies the schema and
// enables WAL. The parent directory is created when missing.
func Open(path string, bus *events.Bus) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps sqlite writes serialized.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Catalog{db: db, bus: bus}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// emit publishes a catalog event. Called while holding c.mu so observers see
// mutations in commit order.
func (c *Catalog) emit(action string, content any) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.Event{
		Source:  config.CatalogName,
		Action:  action,
		Payload: map[string]any{"content": content},
	})
}

// RebuildSearchIndex resynchronizes the full-text index with the catalog
// text view. Needed after any change to titles or artist names.
func (c *Catalog) RebuildSearchIndex() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuildIndexLocked()
}

func (c *Catalog) rebuildIndexLocked() error {
	if _, err := c.db.Exec("INSERT INTO catalog_fts(catalog_fts) VALUES('delete-all');"); err != nil {
		return fmt.Errorf("clearing search index: %w", err)
	}
	if _, err := c.db.Exec("INSERT INTO catalog_fts(catalog_fts) VALUES('rebuild');"); err != nil {
		return fmt.Errorf("rebuilding search index: %w", err)
	}
	return nil
}

// refreshIndex rebuilds the search index after a metadata mutation and logs
// instead of failing the mutation when the rebuild goes wrong.
func (c *Catalog) refreshIndex() {
	if err := c.rebuildIndexLocked(); err != nil {
		slog.Error("Search index rebuild failed", "error", err)
	}
}

// CleanupDownloadDir removes files in dir whose basename (without extension)
// is not a downloaded track id. Subdirectories are ignored.
func (c *Catalog) CleanupDownloadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading download directory: %w", err)
	}

	tracks, err := c.DownloadsContent()
	if err != nil {
		return fmt.Errorf("listing downloads: %w", err)
	}
	valid := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		valid[t.ID] = struct{}{}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		base := name[:len(name)-len(filepath.Ext(name))]
		if _, ok := valid[base]; ok {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			slog.Warn("Failed to remove orphaned file", "file", name, "error", err)
			continue
		}
		slog.Info("Removed orphaned file", "file", name)
	}
	return nil
}
