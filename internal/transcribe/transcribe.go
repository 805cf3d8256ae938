package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"youtube-summarizer/internal/fetch"
	"youtube-summarizer/internal/runner"
)

// Reason classifies why a transcription failed.
type Reason string

const (
	ReasonUnsupportedInput Reason = "unsupported-input"
	ReasonEmptyResult      Reason = "empty-result"
	ReasonTimeout          Reason = "timeout"
)

// TranscriptionError reports a failed transcription with its reason.
type TranscriptionError struct {
	Path   string
	Reason Reason
	Err    error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribing %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// supportedExtensions are the audio encodings ffmpeg accepts from yt-dlp.
var supportedExtensions = map[string]bool{
	".m4a":  true,
	".mp3":  true,
	".wav":  true,
	".webm": true,
	".opus": true,
	".ogg":  true,
	".flac": true,
}

// Transcriber converts audio artifacts to text using ffmpeg preprocessing
// and a local whisper.cpp model. Speech inference is expensive, so there
// is deliberately no retry here.
type Transcriber struct {
	ffmpegPath  string
	whisperPath string
	modelPath   string
	runner      runner.Runner
	mkdirTemp   func(dir, pattern string) (string, error)
	removeAll   func(path string) error
}

// New creates a transcriber using the whisper model at modelPath.
func New(modelPath string) *Transcriber {
	return &Transcriber{
		ffmpegPath:  "ffmpeg",
		whisperPath: "whisper-cli",
		modelPath:   modelPath,
		runner:      &runner.Exec{},
		mkdirTemp:   os.MkdirTemp,
		removeAll:   os.RemoveAll,
	}
}

// NewForTests constructs a transcriber with injectable dependencies.
func NewForTests(ffmpegPath, whisperPath, modelPath string, r runner.Runner) *Transcriber {
	return &Transcriber{
		ffmpegPath:  ffmpegPath,
		whisperPath: whisperPath,
		modelPath:   modelPath,
		runner:      r,
		mkdirTemp:   os.MkdirTemp,
		removeAll:   os.RemoveAll,
	}
}

// Transcribe converts one audio artifact to transcript text. A blank
// transcript is a failure, never a valid result.
func (t *Transcriber) Transcribe(ctx context.Context, artifact *fetch.AudioArtifact) (string, error) {
	if artifact == nil || artifact.Path == "" {
		return "", &TranscriptionError{Reason: ReasonUnsupportedInput, Err: errors.New("no audio artifact")}
	}

	ext := strings.ToLower(filepath.Ext(artifact.Path))
	if !supportedExtensions[ext] {
		return "", &TranscriptionError{
			Path:   artifact.Path,
			Reason: ReasonUnsupportedInput,
			Err:    fmt.Errorf("unsupported audio encoding %q", ext),
		}
	}
	if _, err := os.Stat(artifact.Path); err != nil {
		return "", &TranscriptionError{Path: artifact.Path, Reason: ReasonUnsupportedInput, Err: err}
	}

	tempDir, err := t.mkdirTemp("", "yt-summarizer-*")
	if err != nil {
		return "", &TranscriptionError{Path: artifact.Path, Reason: ReasonUnsupportedInput, Err: fmt.Errorf("creating temp workspace: %w", err)}
	}
	defer func() {
		_ = t.removeAll(tempDir)
	}()

	// whisper.cpp wants mono 16kHz PCM input.
	wavPath := filepath.Join(tempDir, "preprocessed-16k-mono.wav")
	ffmpegArgs := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", artifact.Path,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		wavPath,
	}
	if _, err := t.runner.Run(ctx, t.ffmpegPath, ffmpegArgs...); err != nil {
		return "", &TranscriptionError{Path: artifact.Path, Reason: t.reasonFor(ctx, ReasonUnsupportedInput), Err: fmt.Errorf("ffmpeg audio conversion: %w", err)}
	}
	if _, err := os.Stat(wavPath); err != nil {
		return "", &TranscriptionError{Path: artifact.Path, Reason: ReasonUnsupportedInput, Err: fmt.Errorf("ffmpeg completed but output file is missing: %w", err)}
	}

	textBase := filepath.Join(tempDir, "transcript")
	whisperArgs := []string{
		"-m", t.modelPath,
		"-f", wavPath,
		"-of", textBase,
		"-otxt",
		"-np",
	}
	if _, err := t.runner.Run(ctx, t.whisperPath, whisperArgs...); err != nil {
		return "", &TranscriptionError{Path: artifact.Path, Reason: t.reasonFor(ctx, ReasonEmptyResult), Err: fmt.Errorf("whisper.cpp transcription: %w", err)}
	}

	content, err := os.ReadFile(textBase + ".txt")
	if err != nil {
		return "", &TranscriptionError{Path: artifact.Path, Reason: ReasonEmptyResult, Err: fmt.Errorf("reading transcript output: %w", err)}
	}

	transcript := strings.TrimSpace(string(content))
	if transcript == "" {
		return "", &TranscriptionError{Path: artifact.Path, Reason: ReasonEmptyResult, Err: errors.New("model produced a blank transcript")}
	}
	return transcript, nil
}

// reasonFor distinguishes deadline expiry from the stage's own failure.
func (t *Transcriber) reasonFor(ctx context.Context, fallback Reason) Reason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return fallback
}
