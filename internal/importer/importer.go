// Package importer turns public playlist links into download queries. Each
// supported service gets an Extractor; the registry picks the first one
// that recognizes the URL.
package importer

import (
	"log/slog"

	"scuttle/internal/models"
)

// Entry is one imported playlist item: the free-text query to fetch it by
// and the metadata the source already knows.
type Entry struct {
	Query    string
	Metadata models.Metadata
}

// Extractor handles playlist links for one service.
type Extractor interface {
	Matches(url string) bool
	Fetch(url string) ([]Entry, error)
}

// Registry routes a playlist URL to its extractor.
type Registry struct {
	extractors []Extractor
}

func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// Fetch resolves url with the first matching extractor. An unrecognized URL
// or a failed extraction yields an empty list; imports are best-effort.
func (r *Registry) Fetch(url string) []Entry {
	for _, extractor := range r.extractors {
		if !extractor.Matches(url) {
			continue
		}
		entries, err := extractor.Fetch(url)
		if err != nil {
			slog.Error("Playlist extraction failed", "url", url, "error", err)
			return []Entry{}
		}
		return entries
	}
	slog.Error("No extractor recognizes playlist URL", "url", url)
	return []Entry{}
}
