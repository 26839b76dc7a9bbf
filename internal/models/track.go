package models

// Track is the authoritative identity of an audio item. The id is opaque and
// source-prefixed (e.g. "YT___dQw4w9WgXcQ"); equality is by id only. Artist
// may be a comma-delimited aggregate of several artist names.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Duration float64 `json:"duration"`
}

// Metadata carries user-supplied overrides applied after a fetch. Empty
// fields leave the fetched value in place.
type Metadata struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
}

// Apply overwrites non-empty fields of t with the override values.
func (m *Metadata) Apply(t *Track) {
	if m == nil {
		return
	}
	if m.Title != "" {
		t.Title = m.Title
	}
	if m.Artist != "" {
		t.Artist = m.Artist
	}
}
