package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"youtube-summarizer/internal/runner"
)

// Reason classifies why a fetch failed.
type Reason string

const (
	ReasonUnreachable       Reason = "unreachable"
	ReasonUnavailable       Reason = "unavailable"
	ReasonUnsupportedFormat Reason = "unsupported-format"
)

// FetchError reports a failed audio download with its classified reason.
type FetchError struct {
	URL    string
	Reason Reason
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %s: %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AudioArtifact is a downloaded audio file plus its video metadata.
type AudioArtifact struct {
	Path     string  `json:"path"`
	Size     int64   `json:"size"`
	Duration float64 `json:"duration"` // seconds
	Title    string  `json:"title"`
	VideoID  string  `json:"video_id"`
}

// Client downloads audio streams from video URLs via yt-dlp.
type Client struct {
	ytdlpPath string
	audioDir  string
	runner    runner.Runner
	sleep     func(time.Duration)
}

// NewClient creates a fetch client writing audio files into audioDir.
func NewClient(audioDir string) *Client {
	return &Client{
		ytdlpPath: "yt-dlp",
		audioDir:  audioDir,
		runner:    &runner.Exec{},
		sleep:     time.Sleep,
	}
}

// NewClientForTests constructs a client with an injectable runner.
func NewClientForTests(ytdlpPath, audioDir string, r runner.Runner, sleep func(time.Duration)) *Client {
	return &Client{ytdlpPath: ytdlpPath, audioDir: audioDir, runner: r, sleep: sleep}
}

// videoInfo is the subset of yt-dlp -J output we consume.
type videoInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// Fetch downloads the audio stream for a video URL. It retries once on
// transient network failures; all other failures are terminal.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*AudioArtifact, error) {
	videoID, err := ParseVideoID(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: ReasonUnsupportedFormat, Err: err}
	}

	if err := os.MkdirAll(c.audioDir, 0o755); err != nil {
		return nil, &FetchError{URL: rawURL, Reason: ReasonUnavailable, Err: fmt.Errorf("creating audio directory: %w", err)}
	}

	info, err := c.metadata(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	artifact, err := c.download(ctx, rawURL, videoID)
	if err != nil {
		ferr, ok := err.(*FetchError)
		if !ok || ferr.Reason != ReasonUnreachable {
			return nil, err
		}
		// One retry on transient network failure.
		c.sleep(1 * time.Second)
		artifact, err = c.download(ctx, rawURL, videoID)
		if err != nil {
			return nil, err
		}
	}

	artifact.Title = info.Title
	artifact.Duration = info.Duration
	artifact.VideoID = videoID
	return artifact, nil
}

// metadata queries yt-dlp for video metadata without downloading.
func (c *Client) metadata(ctx context.Context, rawURL string) (*videoInfo, error) {
	result, err := c.runner.Run(ctx, c.ytdlpPath, "-J", "--no-download", rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: classifyStderr(result.Stderr, ctx), Err: fmt.Errorf("yt-dlp metadata query: %w", err)}
	}

	var info videoInfo
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return nil, &FetchError{URL: rawURL, Reason: ReasonUnsupportedFormat, Err: fmt.Errorf("parsing yt-dlp metadata: %w", err)}
	}
	return &info, nil
}

// download extracts the audio stream to <audioDir>/audio_<id>.m4a.
// The 160K quality preference mirrors the original stream selection.
func (c *Client) download(ctx context.Context, rawURL, videoID string) (*AudioArtifact, error) {
	outPath := filepath.Join(c.audioDir, "audio_"+videoID+".m4a")
	args := []string{
		"-f", "bestaudio",
		"-x",
		"--audio-format", "m4a",
		"--audio-quality", "160K",
		"--no-playlist",
		"-o", outPath,
		rawURL,
	}

	result, err := c.runner.Run(ctx, c.ytdlpPath, args...)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: classifyStderr(result.Stderr, ctx), Err: fmt.Errorf("yt-dlp download: %w", err)}
	}

	stat, err := os.Stat(outPath)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: ReasonUnavailable, Err: fmt.Errorf("yt-dlp completed but audio file is missing: %w", err)}
	}
	if stat.Size() == 0 {
		return nil, &FetchError{URL: rawURL, Reason: ReasonUnavailable, Err: fmt.Errorf("yt-dlp produced an empty audio file")}
	}

	return &AudioArtifact{Path: outPath, Size: stat.Size()}, nil
}

// classifyStderr maps yt-dlp failure output to a fetch reason.
func classifyStderr(stderr string, ctx context.Context) Reason {
	if ctx.Err() != nil {
		return ReasonUnreachable
	}

	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "private video"),
		strings.Contains(lower, "not available in your country"),
		strings.Contains(lower, "removed"):
		return ReasonUnavailable
	case strings.Contains(lower, "unsupported url"),
		strings.Contains(lower, "no video formats"),
		strings.Contains(lower, "requested format is not available"):
		return ReasonUnsupportedFormat
	default:
		return ReasonUnreachable
	}
}

// ParseVideoID extracts the video ID from the common YouTube URL forms.
func ParseVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL %q: missing http(s) scheme", rawURL)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return "", fmt.Errorf("invalid URL %q: no video ID", rawURL)
		}
		return id, nil
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
				if id != "" {
					return id, nil
				}
			}
		}
		return "", fmt.Errorf("invalid URL %q: no video ID", rawURL)
	default:
		return "", fmt.Errorf("unsupported video host %q", host)
	}
}
