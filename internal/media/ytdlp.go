package media

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"transcript-fetcher/pkg/log"
)

// YTDLP wraps the yt-dlp CLI. It implements FastExtractor, AudioRetriever
// and DurationProber.
type YTDLP struct {
	cmd string
}

var (
	_ FastExtractor  = (*YTDLP)(nil)
	_ AudioRetriever = (*YTDLP)(nil)
	_ DurationProber = (*YTDLP)(nil)
)

func NewYTDLP() *YTDLP {
	return &YTDLP{cmd: "yt-dlp"}
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// FastExtract downloads the creator-supplied (or auto-generated) caption
// track and flattens it to plain text.
func (y *YTDLP) FastExtract(ctx context.Context, videoID string) (string, error) {
	dir, err := os.MkdirTemp("", "captions-*")
	if err != nil {
		return "", fmt.Errorf("create caption scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	cmd := exec.CommandContext(ctx, y.cmd,
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", "en.*,en",
		"--convert-subs", "srt",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		watchURL(videoID),
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Debug("yt-dlp caption fetch for %s failed: %v: %s", videoID, err, strings.TrimSpace(string(out)))
		return "", fmt.Errorf("fetch captions: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, videoID+"*.srt"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no caption track for %s", videoID)
	}

	content, err := os.ReadFile(matches[0])
	if err != nil {
		return "", fmt.Errorf("read caption file: %w", err)
	}
	return flattenSRT(string(content)), nil
}

// RetrieveAudio downloads the best audio-only format into dir.
func (y *YTDLP) RetrieveAudio(ctx context.Context, videoID, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, y.cmd,
		"-f", "bestaudio/best",
		"--no-playlist",
		"-o", filepath.Join(dir, videoID+".%(ext)s"),
		watchURL(videoID),
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Debug("yt-dlp audio fetch for %s failed: %v: %s", videoID, err, strings.TrimSpace(string(out)))
		return "", fmt.Errorf("download audio: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, videoID+".*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("audio download for %s produced no file", videoID)
	}
	return matches[0], nil
}

// Duration probes the video metadata without downloading media.
func (y *YTDLP) Duration(ctx context.Context, videoID string) (int, bool, error) {
	cmd := exec.CommandContext(ctx, y.cmd,
		"-J",
		"--skip-download",
		"--no-playlist",
		watchURL(videoID),
	)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			log.Debug("yt-dlp probe for %s failed: %s", videoID, strings.TrimSpace(string(ee.Stderr)))
		}
		return 0, false, fmt.Errorf("probe metadata: %w", err)
	}

	var meta struct {
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(out, &meta); err != nil {
		return 0, false, fmt.Errorf("parse metadata: %w", err)
	}
	if meta.Duration <= 0 {
		return 0, false, nil
	}
	return int(meta.Duration), true, nil
}

// flattenSRT reduces an SRT caption file to the spoken lines: cue indices,
// timestamp lines and blanks are dropped, consecutive duplicate lines
// (common in auto-generated rolling captions) are collapsed.
func flattenSRT(content string) string {
	var parts []string
	var prev string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.Contains(line, "-->") || isCueIndex(line) {
			continue
		}
		if line == prev {
			continue
		}
		parts = append(parts, line)
		prev = line
	}
	return strings.Join(parts, " ")
}

func isCueIndex(line string) bool {
	if line == "" {
		return false
	}
	for _, c := range line {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
