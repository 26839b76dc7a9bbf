// Package postprocess shells out to ffmpeg to clean up freshly downloaded
// audio: silence trimming, two-pass loudness normalization and a final
// compression to opus. Every step writes to a temp file and swaps it in
// only on success, so a failed step leaves the input untouched.
package postprocess

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Pipeline runs the ffmpeg processing chain on downloaded files.
type Pipeline struct {
	FFmpegBin  string
	FFprobeBin string
}

func New(ffmpegBin, ffprobeBin string) *Pipeline {
	return &Pipeline{FFmpegBin: ffmpegBin, FFprobeBin: ffprobeBin}
}

// Process runs the full chain on path and returns the path of the final
// opus file. The input file is consumed on success.
func (p *Pipeline) Process(path string) (string, error) {
	if err := p.TrimSilence(path); err != nil {
		return "", err
	}
	if err := p.Normalize(path); err != nil {
		return "", err
	}
	return p.CompressOpus(path)
}

// Duration reads the length of an audio file in seconds via ffprobe.
func (p *Pipeline) Duration(path string) (float64, error) {
	out, err := exec.Command(p.FFprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("probing %s: %w", filepath.Base(path), err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration of %s: %w", filepath.Base(path), err)
	}
	return duration, nil
}

// TrimSilence strips leading and trailing silence in place. The reverse
// passes let silenceremove handle the tail.
func (p *Pipeline) TrimSilence(path string) error {
	temp := tempPath(path)
	filter := "silenceremove=start_periods=1:start_duration=0.02:start_threshold=-50dB:detection=peak," +
		"areverse," +
		"silenceremove=start_periods=1:start_duration=0.02:start_threshold=-50dB:detection=peak," +
		"areverse"

	if err := p.run(p.FFmpegBin, "-y", "-i", path, "-af", filter, temp); err != nil {
		os.Remove(temp)
		return fmt.Errorf("trimming silence: %w", err)
	}
	return replaceFile(path, temp)
}

// Normalize applies two-pass loudnorm in place, targeting -16 LUFS
// integrated, -1.5 dB true peak, 11 LU range. The first pass measures, the
// second applies the measured values.
func (p *Pipeline) Normalize(path string) error {
	// ffmpeg prints the analysis JSON on stderr.
	cmd := exec.Command(p.FFmpegBin,
		"-i", path,
		"-af", "loudnorm=I=-16:TP=-1.5:LRA=11:print_format=json",
		"-f", "null", "-",
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("loudnorm analysis: %w: %s", err, tail(stderr.String()))
	}

	stats, err := parseLoudnormStats(stderr.String())
	if err != nil {
		return err
	}

	filter := fmt.Sprintf(
		"loudnorm=I=-16:TP=-1.5:LRA=11:measured_I=%s:measured_TP=%s:measured_LRA=%s:measured_thresh=%s:offset=%s",
		stats.InputI, stats.InputTP, stats.InputLRA, stats.InputThresh, stats.TargetOffset,
	)

	temp := tempPath(path)
	if err := p.run(p.FFmpegBin, "-y", "-i", path, "-af", filter, temp); err != nil {
		os.Remove(temp)
		return fmt.Errorf("applying loudnorm: %w", err)
	}
	return replaceFile(path, temp)
}

// CompressOpus transcodes path to opus at 192k and removes the input.
// Returns the path of the opus file.
func (p *Pipeline) CompressOpus(path string) (string, error) {
	target := strings.TrimSuffix(path, filepath.Ext(path)) + ".opus"
	if err := p.run(p.FFmpegBin, "-y", "-i", path, "-c:a", "libopus", "-b:a", "192k", target); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("compressing to opus: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("removing %s: %w", filepath.Base(path), err)
	}
	return target, nil
}

func (p *Pipeline) run(bin string, args ...string) error {
	cmd := exec.Command(bin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, tail(stderr.String()))
	}
	return nil
}

// loudnormStats is the measurement block from the analysis pass. ffmpeg
// reports the numbers as strings.
type loudnormStats struct {
	InputI       string `json:"input_i"`
	InputTP      string `json:"input_tp"`
	InputLRA     string `json:"input_lra"`
	InputThresh  string `json:"input_thresh"`
	TargetOffset string `json:"target_offset"`
}

var loudnormJSON = regexp.MustCompile(`\{[\s\S]*\}`)

func parseLoudnormStats(stderr string) (loudnormStats, error) {
	var stats loudnormStats
	match := loudnormJSON.FindString(stderr)
	if match == "" {
		return stats, fmt.Errorf("no loudnorm stats in ffmpeg output")
	}
	if err := json.Unmarshal([]byte(match), &stats); err != nil {
		return stats, fmt.Errorf("parsing loudnorm stats: %w", err)
	}
	return stats, nil
}

// tempPath inserts ".tmp" before the extension: haiku.wav -> haiku.tmp.wav.
func tempPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".tmp" + ext
}

// replaceFile swaps the processed temp file into the original's place.
func replaceFile(original, temp string) error {
	if err := os.Rename(temp, original); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(original), err)
	}
	return nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 400 {
		s = s[len(s)-400:]
	}
	return s
}
