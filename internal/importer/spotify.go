package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"scuttle/internal/models"
)

var (
	spotifyPlaylistRe = regexp.MustCompile(`(?i)(spotify:playlist:|open\.spotify\.com/playlist|spotify\.link/)`)
	playlistIDRe      = regexp.MustCompile(`playlist/([A-Za-z0-9]+)`)
	embedJSONRe       = regexp.MustCompile(`(?s)<script[^>]+type="application/json"[^>]*>(.*?)</script>`)
)

// SpotifyExtractor scrapes the public embed page of a Spotify playlist.
// The embed page carries the full track list in a JSON script tag, no API
// credentials needed.
type SpotifyExtractor struct {
	client *http.Client
}

func NewSpotifyExtractor() *SpotifyExtractor {
	return &SpotifyExtractor{client: &http.Client{Timeout: 15 * time.Second}}
}

func (e *SpotifyExtractor) Matches(rawURL string) bool {
	return spotifyPlaylistRe.MatchString(rawURL)
}

func (e *SpotifyExtractor) Fetch(rawURL string) ([]Entry, error) {
	resolved := e.resolveLink(rawURL)

	embedURL, err := embedURL(resolved)
	if err != nil {
		return nil, err
	}

	html, err := e.get(embedURL)
	if err != nil {
		return nil, err
	}

	match := embedJSONRe.FindStringSubmatch(html)
	if match == nil {
		return nil, fmt.Errorf("no JSON script tag in embed page")
	}

	var data any
	if err := json.Unmarshal([]byte(match[1]), &data); err != nil {
		return nil, fmt.Errorf("parsing embed JSON: %w", err)
	}

	trackList, ok := findKey(data, "trackList").([]any)
	if !ok || len(trackList) == 0 {
		return nil, fmt.Errorf("no trackList in embed JSON, the page structure may have changed")
	}

	entries := make([]Entry, 0, len(trackList))
	for i, raw := range trackList {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("track at index %d has an unexpected shape", i)
		}
		title := cleanText(stringField(item, "title"))
		artist := cleanText(stringField(item, "subtitle"))
		if title == "" {
			return nil, fmt.Errorf("track at index %d is missing a title", i)
		}
		entries = append(entries, Entry{
			Query:    fmt.Sprintf("%s by %s", title, artist),
			Metadata: models.Metadata{Title: title, Artist: artist},
		})
	}
	return entries, nil
}

// resolveLink follows short-link redirects to the canonical playlist URL.
// Resolution failures fall back to the original URL.
func (e *SpotifyExtractor) resolveLink(rawURL string) string {
	resp, err := e.client.Get(rawURL)
	if err != nil {
		return rawURL
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.Request.URL.String()
}

func (e *SpotifyExtractor) get(pageURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.google.com/")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("embed page returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// embedURL maps a playlist URL to its embed page, which serves the track
// list without authentication.
func embedURL(rawURL string) (string, error) {
	var playlistID string
	if u, err := url.Parse(rawURL); err == nil {
		parts := strings.Split(u.Path, "/")
		for i, part := range parts {
			if part == "playlist" && i+1 < len(parts) {
				playlistID = parts[i+1]
				break
			}
		}
	}
	if playlistID == "" {
		if m := playlistIDRe.FindStringSubmatch(rawURL); m != nil {
			playlistID = m[1]
		}
	}
	if playlistID == "" {
		return "", fmt.Errorf("could not extract playlist id from %s", rawURL)
	}
	return "https://open.spotify.com/embed/playlist/" + playlistID, nil
}

// findKey depth-first searches nested JSON for the first value under key.
func findKey(data any, key string) any {
	switch v := data.(type) {
	case map[string]any:
		if value, ok := v[key]; ok {
			return value
		}
		for _, nested := range v {
			if found := findKey(nested, key); found != nil {
				return found
			}
		}
	case []any:
		for _, nested := range v {
			if found := findKey(nested, key); found != nil {
				return found
			}
		}
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// cleanText replaces the non-breaking spaces Spotify embeds in names.
func cleanText(s string) string {
	return strings.ReplaceAll(s, "\u00a0", " ")
}
