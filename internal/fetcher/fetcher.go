// Package fetcher wraps the yt-dlp binary: searching, downloading raw audio
// and running it through the post-processing pipeline. Fetched tracks carry
// a source-prefixed id so catalog ids stay unambiguous across sources.
package fetcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"scuttle/internal/config"
	"scuttle/internal/events"
	"scuttle/internal/models"
	"scuttle/internal/postprocess"
)

// ErrFetchFailed wraps any yt-dlp failure that survived the retry.
var ErrFetchFailed = errors.New("fetch failed")

const (
	// idPrefix marks catalog ids that originate from this fetcher.
	idPrefix = "YT___"

	// fieldDelim separates the printed metadata fields. The unit separator
	// cannot appear in titles or uploader names.
	fieldDelim = "\x1f"

	formatFilter = "bestaudio/best"
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
)

// Fetcher downloads audio with yt-dlp and finalizes it with the pipeline.
type Fetcher struct {
	bin         string
	downloadDir string
	bus         *events.Bus
	pipeline    *postprocess.Pipeline

	searchLimit     int
	searchTimeout   time.Duration
	downloadTimeout time.Duration
}

func New(bin, downloadDir string, bus *events.Bus, pipeline *postprocess.Pipeline) *Fetcher {
	return &Fetcher{
		bin:             bin,
		downloadDir:     downloadDir,
		bus:             bus,
		pipeline:        pipeline,
		searchLimit:     config.SearchLimit,
		searchTimeout:   config.SearchTimeout,
		downloadTimeout: config.DownloadTimeout,
	}
}

func (f *Fetcher) emit(action string, payload map[string]any) {
	if f.bus == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	f.bus.Publish(events.Event{Source: config.FetcherName, Action: action, Payload: payload})
}

// Search runs a metadata-only query and returns up to the configured number
// of candidate tracks, publishing them as a fetcher search event. A failed
// search returns an empty slice rather than an error; searching is always
// best-effort.
func (f *Fetcher) Search(q string) []models.Track {
	f.emit(events.ActionTaskStart, nil)
	defer f.emit(events.ActionTaskEnd, nil)

	tracks := f.search(q, f.searchLimit)
	f.emit(events.ActionSearch, map[string]any{"content": tracks})
	return tracks
}

func (f *Fetcher) search(q string, limit int) []models.Track {
	args := []string{
		fmt.Sprintf("ytsearch%d:%s", limit, q),
		"--format", formatFilter,
		"--user-agent", userAgent,
		"--no-download",
		"--no-cache-dir",
		"--print", printFormat(""),
	}

	out, err := f.runWithRecovery(args, f.searchTimeout)
	if err != nil {
		slog.Error("Search failed", "query", q, "error", err)
		return []models.Track{}
	}

	tracks := []models.Track{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		track, err := parseTrackLine(line)
		if err != nil {
			slog.Warn("Skipping malformed result line", "line", line, "error", err)
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// DownloadByID fetches the audio for a prefixed track id, post-processes it
// and returns the final metadata. Overrides from meta replace the fetched
// title or artist when non-empty.
func (f *Fetcher) DownloadByID(id string, meta *models.Metadata) (models.Track, error) {
	f.emit(events.ActionTaskStart, nil)
	defer f.emit(events.ActionTaskEnd, nil)

	track, err := f.download(id, meta)
	if err != nil {
		f.emit(events.ActionError, map[string]any{"id": id})
		return models.Track{}, err
	}

	f.emit(events.ActionDownload, map[string]any{"content": track})
	return track, nil
}

// DownloadByQuery resolves a free-text query to its best match and
// downloads that.
func (f *Fetcher) DownloadByQuery(q string, meta *models.Metadata) (models.Track, error) {
	results := f.search(q, 1)
	if len(results) == 0 {
		f.emit(events.ActionError, map[string]any{"query": q})
		return models.Track{}, fmt.Errorf("%w: no results for %q", ErrFetchFailed, q)
	}
	return f.DownloadByID(results[0].ID, meta)
}

func (f *Fetcher) download(id string, meta *models.Metadata) (models.Track, error) {
	rawID := strings.TrimPrefix(id, idPrefix)
	url := "https://www.youtube.com/watch?v=" + rawID

	if err := os.MkdirAll(f.downloadDir, 0o755); err != nil {
		return models.Track{}, fmt.Errorf("creating download directory: %w", err)
	}

	// yt-dlp picks the container, so the output template leaves the
	// extension to it; the post-processing pipeline settles the final format.
	outputTemplate := filepath.Join(f.downloadDir, idPrefix+rawID+".%(ext)s")
	args := []string{
		"-x",
		"-f", formatFilter,
		"--audio-format", "wav",
		"--audio-quality", "0",
		"--user-agent", userAgent,
		"--quiet",
		"--no-playlist",
		"--no-cache-dir",
		"--retries", "10",
		"--fragment-retries", "3",
		"--retry-sleep", "linear=1::5",
		"-o", outputTemplate,
		"--print", "after_move:" + printFormat(""),
		url,
	}

	out, err := f.runWithRecovery(args, f.downloadTimeout)
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: downloading %s: %v", ErrFetchFailed, id, err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return models.Track{}, fmt.Errorf("%w: no metadata printed for %s", ErrFetchFailed, id)
	}
	track, err := parseTrackLine(lines[0])
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	wavPath := filepath.Join(f.downloadDir, track.ID+".wav")
	finalPath, err := f.pipeline.Process(wavPath)
	if err != nil {
		return models.Track{}, fmt.Errorf("post-processing %s: %w", track.ID, err)
	}

	// Trimming changes the length, so measure the final file.
	if duration, err := f.pipeline.Duration(finalPath); err == nil {
		track.Duration = duration
	} else {
		slog.Warn("Could not measure final duration", "id", track.ID, "error", err)
	}

	meta.Apply(&track)
	return track, nil
}

// runWithRecovery executes yt-dlp and, on failure, self-updates the binary
// once and retries. Extractor breakage after a site change is the dominant
// failure mode and an update usually clears it.
func (f *Fetcher) runWithRecovery(args []string, timeout time.Duration) (string, error) {
	out, err := runCommand(f.bin, args, timeout)
	if err == nil {
		return out, nil
	}
	slog.Warn("Fetch attempt failed, updating fetcher binary", "error", err)

	if _, updateErr := runCommand(f.bin, []string{"-U"}, 2*time.Minute); updateErr != nil {
		slog.Warn("Fetcher self-update failed", "error", updateErr)
	}
	return runCommand(f.bin, args, timeout)
}

// runCommand runs bin in its own process group and kills the whole group on
// timeout, so ffmpeg children spawned by yt-dlp do not outlive it.
func runCommand(bin string, args []string, timeout time.Duration) (string, error) {
	cmd := exec.Command(bin, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("starting %s: %w", bin, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("%s: %w: %s", bin, err, lastLine(stderr.String()))
		}
		return strings.ToValidUTF8(stdout.String(), "�"), nil
	case <-time.After(timeout):
		syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done
		return "", fmt.Errorf("%s timed out after %s", bin, timeout)
	}
}

// lastLine returns the last non-empty line of s, for compact error messages.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func printFormat(prefix string) string {
	return prefix + strings.Join([]string{"%(id)s", "%(title)s", "%(uploader)s", "%(duration)s"}, fieldDelim)
}

// parseTrackLine decodes one delimiter-separated metadata line into a track
// with the prefixed id. Missing fields get placeholder values.
func parseTrackLine(line string) (models.Track, error) {
	parts := strings.Split(strings.ToValidUTF8(line, "�"), fieldDelim)
	if len(parts) != 4 {
		return models.Track{}, fmt.Errorf("unexpected metadata line with %d fields", len(parts))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		duration = 0
	}

	track := models.Track{
		ID:       idPrefix + parts[0],
		Title:    parts[1],
		Artist:   parts[2],
		Duration: duration,
	}
	if track.Title == "" {
		track.Title = "Unknown Title"
	}
	if track.Artist == "" {
		track.Artist = "Unknown Artist"
	}
	return track, nil
}
