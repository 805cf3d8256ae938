package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"youtube-summarizer/internal/runner"
)

const testURL = "https://www.youtube.com/watch?v=h5id4erwD4s"

// fakeRunner scripts yt-dlp invocations. Each call pops the next
// scripted step; download steps write the output file themselves.
type fakeRunner struct {
	t     *testing.T
	steps []fakeStep
	calls [][]string
}

type fakeStep struct {
	stdout    string
	stderr    string
	err       error
	audioSize int // bytes written to the -o target, -1 to skip writing
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (runner.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(f.steps) == 0 {
		f.t.Fatalf("Unexpected command: %s %v", name, args)
	}
	step := f.steps[0]
	f.steps = f.steps[1:]

	if step.audioSize >= 0 {
		if path := outputArg(args); path != "" {
			data := make([]byte, step.audioSize)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				f.t.Fatalf("Failed to write fake audio: %v", err)
			}
		}
	}

	return runner.Result{Stdout: step.stdout, Stderr: step.stderr}, step.err
}

func outputArg(args []string) string {
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

const metadataJSON = `{"id":"h5id4erwD4s","title":"Test Video","duration":245.5}`

func newTestClient(t *testing.T, steps []fakeStep) (*Client, *fakeRunner) {
	r := &fakeRunner{t: t, steps: steps}
	client := NewClientForTests("yt-dlp", t.TempDir(), r, func(time.Duration) {})
	return client, r
}

func TestFetchSuccess(t *testing.T) {
	client, r := newTestClient(t, []fakeStep{
		{stdout: metadataJSON, audioSize: -1},
		{audioSize: 2048},
	})

	artifact, err := client.Fetch(context.Background(), testURL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if artifact.VideoID != "h5id4erwD4s" {
		t.Errorf("Expected video ID 'h5id4erwD4s', got '%s'", artifact.VideoID)
	}
	if artifact.Title != "Test Video" {
		t.Errorf("Expected title 'Test Video', got '%s'", artifact.Title)
	}
	if artifact.Duration != 245.5 {
		t.Errorf("Expected duration 245.5, got %f", artifact.Duration)
	}
	if artifact.Size != 2048 {
		t.Errorf("Expected size 2048, got %d", artifact.Size)
	}
	if filepath.Base(artifact.Path) != "audio_h5id4erwD4s.m4a" {
		t.Errorf("Unexpected audio path: %s", artifact.Path)
	}

	if len(r.calls) != 2 {
		t.Fatalf("Expected 2 yt-dlp calls, got %d", len(r.calls))
	}
	if r.calls[0][1] != "-J" {
		t.Errorf("Expected metadata query first, got %v", r.calls[0])
	}
}

func TestFetchRetriesOnceOnTransientFailure(t *testing.T) {
	client, r := newTestClient(t, []fakeStep{
		{stdout: metadataJSON, audioSize: -1},
		{stderr: "ERROR: connection reset", err: errors.New("exit status 1"), audioSize: -1},
		{audioSize: 1024},
	})

	artifact, err := client.Fetch(context.Background(), testURL)
	if err != nil {
		t.Fatalf("Fetch failed after retry: %v", err)
	}
	if artifact.Size != 1024 {
		t.Errorf("Expected size 1024, got %d", artifact.Size)
	}
	if len(r.calls) != 3 {
		t.Errorf("Expected metadata + 2 download attempts, got %d calls", len(r.calls))
	}
}

func TestFetchNoRetryOnUnavailable(t *testing.T) {
	client, r := newTestClient(t, []fakeStep{
		{stdout: metadataJSON, audioSize: -1},
		{stderr: "ERROR: Video unavailable", err: errors.New("exit status 1"), audioSize: -1},
	})

	_, err := client.Fetch(context.Background(), testURL)
	if err == nil {
		t.Fatal("Expected error for unavailable video")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %T", err)
	}
	if fetchErr.Reason != ReasonUnavailable {
		t.Errorf("Expected reason %s, got %s", ReasonUnavailable, fetchErr.Reason)
	}
	if len(r.calls) != 2 {
		t.Errorf("Expected no retry for unavailable video, got %d calls", len(r.calls))
	}
}

func TestFetchEmptyAudioFile(t *testing.T) {
	client, _ := newTestClient(t, []fakeStep{
		{stdout: metadataJSON, audioSize: -1},
		{audioSize: 0},
	})

	_, err := client.Fetch(context.Background(), testURL)
	if err == nil {
		t.Fatal("Expected error for empty audio file")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %T", err)
	}
	if fetchErr.Reason != ReasonUnavailable {
		t.Errorf("Expected reason %s, got %s", ReasonUnavailable, fetchErr.Reason)
	}
}

func TestFetchRejectsBadURL(t *testing.T) {
	client, r := newTestClient(t, nil)

	_, err := client.Fetch(context.Background(), "https://example.com/watch?v=abc")
	if err == nil {
		t.Fatal("Expected error for non-YouTube URL")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %T", err)
	}
	if fetchErr.Reason != ReasonUnsupportedFormat {
		t.Errorf("Expected reason %s, got %s", ReasonUnsupportedFormat, fetchErr.Reason)
	}
	if len(r.calls) != 0 {
		t.Errorf("Expected no yt-dlp calls for invalid URL, got %d", len(r.calls))
	}
}

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		url     string
		id      string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=h5id4erwD4s", "h5id4erwD4s", false},
		{"https://youtube.com/watch?v=abc123", "abc123", false},
		{"https://m.youtube.com/watch?v=abc123", "abc123", false},
		{"https://music.youtube.com/watch?v=abc123", "abc123", false},
		{"https://youtu.be/h5id4erwD4s", "h5id4erwD4s", false},
		{"https://www.youtube.com/shorts/xyz789", "xyz789", false},
		{"https://www.youtube.com/embed/xyz789", "xyz789", false},
		{"https://www.youtube.com/live/xyz789", "xyz789", false},
		{"https://www.youtube.com/watch", "", true},
		{"https://youtu.be/", "", true},
		{"https://vimeo.com/12345", "", true},
		{"youtube.com/watch?v=abc", "", true},
		{"not a url at all ://", "", true},
	}

	for _, test := range tests {
		id, err := ParseVideoID(test.url)
		if test.wantErr {
			if err == nil {
				t.Errorf("ParseVideoID(%q): expected error, got %q", test.url, id)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseVideoID(%q): unexpected error: %v", test.url, err)
			continue
		}
		if id != test.id {
			t.Errorf("ParseVideoID(%q) = %q, expected %q", test.url, id, test.id)
		}
	}
}

func TestClassifyStderr(t *testing.T) {
	tests := []struct {
		stderr string
		reason Reason
	}{
		{"ERROR: Video unavailable", ReasonUnavailable},
		{"ERROR: Private video", ReasonUnavailable},
		{"ERROR: This video has been removed", ReasonUnavailable},
		{"ERROR: Unsupported URL", ReasonUnsupportedFormat},
		{"ERROR: Requested format is not available", ReasonUnsupportedFormat},
		{"ERROR: connection timed out", ReasonUnreachable},
		{"", ReasonUnreachable},
	}

	for _, test := range tests {
		if got := classifyStderr(test.stderr, context.Background()); got != test.reason {
			t.Errorf("classifyStderr(%q) = %s, expected %s", test.stderr, got, test.reason)
		}
	}
}

func TestClassifyStderrCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := classifyStderr("ERROR: Video unavailable", ctx)
	if got != ReasonUnreachable {
		t.Errorf("Expected cancelled context to classify as %s, got %s", ReasonUnreachable, got)
	}
}
