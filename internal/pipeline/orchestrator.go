package pipeline

import (
	"context"
	"log"
	"os"
	"time"

	"youtube-summarizer/internal/cache"
	"youtube-summarizer/internal/fetch"
	"youtube-summarizer/internal/summarize"
)

// Fetcher resolves a video URL to a local audio artifact.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.AudioArtifact, error)
}

// Transcriber converts an audio artifact to transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, artifact *fetch.AudioArtifact) (string, error)
}

// Summarizer condenses an ordered chunk sequence into a summary.
type Summarizer interface {
	Summarize(ctx context.Context, chunks []summarize.Chunk) (*summarize.Result, error)
}

// SummaryResult is the final output returned to CLI and web callers.
type SummaryResult struct {
	URL      string  `json:"url"`
	VideoID  string  `json:"video_id,omitempty"`
	Title    string  `json:"title,omitempty"`
	Duration float64 `json:"duration,omitempty"`

	Transcript       string   `json:"transcript"`
	Summary          string   `json:"summary"`
	PartialSummaries []string `json:"partial_summaries,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`

	CachedTranscript bool          `json:"cached_transcript"`
	CachedSummary    bool          `json:"cached_summary"`
	Elapsed          time.Duration `json:"elapsed"`
}

// Options tunes orchestrator behavior.
type Options struct {
	MaxChunkSize     int
	ChunkOverlap     int
	FetchTimeout     time.Duration
	InferenceTimeout time.Duration
	KeepAudio        bool

	// OnStage is invoked on every state transition. May be nil.
	OnStage func(job *Job, status Status)
}

// Orchestrator sequences download, transcription and summarization for
// one job at a time, owning the artifact cache and the failure policy.
type Orchestrator struct {
	fetcher     Fetcher
	transcriber Transcriber
	summarizer  Summarizer
	cache       *cache.Manager // nil when caching is disabled
	opts        Options
}

// New creates an orchestrator. cacheManager may be nil to disable
// caching entirely.
func New(fetcher Fetcher, transcriber Transcriber, summarizer Summarizer, cacheManager *cache.Manager, opts Options) *Orchestrator {
	return &Orchestrator{
		fetcher:     fetcher,
		transcriber: transcriber,
		summarizer:  summarizer,
		cache:       cacheManager,
		opts:        opts,
	}
}

// Run executes one summarization job for a URL. The pipeline is strictly
// sequential; cancellation is honored cooperatively between stages, and
// every external call runs under its configured timeout.
func (o *Orchestrator) Run(ctx context.Context, url string) (*SummaryResult, error) {
	job := newJob(url)
	start := time.Now()

	result := &SummaryResult{URL: url}

	// Cache lookups happen before any stage runs. A cached summary
	// completes the job outright; a cached transcript skips straight
	// to summarizing.
	if o.cache != nil {
		if entry, err := o.cache.Get(ctx, url); err == nil {
			result.VideoID = entry.VideoID
			result.Title = entry.Title
			result.Duration = entry.Duration
			if entry.Summary != "" {
				result.Transcript = entry.Transcript
				result.Summary = entry.Summary
				result.CachedTranscript = entry.Transcript != ""
				result.CachedSummary = true
				result.Elapsed = time.Since(start)
				o.transition(job, StatusDone)
				return result, nil
			}
			if entry.Transcript != "" {
				job.Transcript = entry.Transcript
				result.Transcript = entry.Transcript
				result.CachedTranscript = true
			}
		}
	}

	if !result.CachedTranscript {
		if err := o.checkCancelled(ctx, job, StatusFetching); err != nil {
			return nil, err
		}
		if err := o.transition(job, StatusFetching); err != nil {
			return nil, o.fail(job, StatusFetching, err)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, o.opts.FetchTimeout)
		audio, err := o.fetcher.Fetch(fetchCtx, url)
		cancel()
		if err != nil {
			return nil, o.fail(job, StatusFetching, err)
		}
		job.Audio = audio
		result.VideoID = audio.VideoID
		result.Title = audio.Title
		result.Duration = audio.Duration

		if err := o.checkCancelled(ctx, job, StatusTranscribing); err != nil {
			return nil, err
		}
		if err := o.transition(job, StatusTranscribing); err != nil {
			return nil, o.fail(job, StatusTranscribing, err)
		}

		transcribeCtx, cancel := context.WithTimeout(ctx, o.opts.InferenceTimeout)
		transcript, err := o.transcriber.Transcribe(transcribeCtx, audio)
		cancel()
		if err != nil {
			return nil, o.fail(job, StatusTranscribing, err)
		}
		job.Transcript = transcript
		result.Transcript = transcript

		// The audio artifact is only needed for transcription.
		if !o.opts.KeepAudio {
			if err := os.Remove(audio.Path); err != nil && !os.IsNotExist(err) {
				log.Printf("Warning: failed to remove audio artifact %s: %v", audio.Path, err)
			}
		}

		if o.cache != nil {
			entry := &cache.Entry{
				VideoID:    audio.VideoID,
				Title:      audio.Title,
				Duration:   audio.Duration,
				Transcript: transcript,
			}
			if err := o.cache.SetTranscript(ctx, url, entry); err != nil {
				log.Printf("Warning: failed to cache transcript for %s: %v", url, err)
			}
		}
	}

	if err := o.checkCancelled(ctx, job, StatusSummarizing); err != nil {
		return nil, err
	}
	if err := o.transition(job, StatusSummarizing); err != nil {
		return nil, o.fail(job, StatusSummarizing, err)
	}

	chunks, err := summarize.Split(job.Transcript, o.opts.MaxChunkSize, o.opts.ChunkOverlap)
	if err != nil {
		return nil, o.fail(job, StatusSummarizing, err)
	}

	summarizeCtx, cancel := context.WithTimeout(ctx, o.opts.InferenceTimeout)
	summary, err := o.summarizer.Summarize(summarizeCtx, chunks)
	cancel()
	if err != nil {
		return nil, o.fail(job, StatusSummarizing, err)
	}

	result.Summary = summary.Summary
	result.PartialSummaries = summary.PartialSummaries
	result.Warnings = summary.Warnings

	if o.cache != nil {
		if err := o.cache.SetSummary(ctx, url, summary.Summary); err != nil {
			log.Printf("Warning: failed to cache summary for %s: %v", url, err)
		}
	}

	result.Elapsed = time.Since(start)
	o.transition(job, StatusDone)
	return result, nil
}

// transition applies a state change and emits a progress notification.
func (o *Orchestrator) transition(job *Job, to Status) error {
	if err := job.transition(to); err != nil {
		return err
	}
	if o.opts.OnStage != nil {
		o.opts.OnStage(job, to)
	}
	return nil
}

// checkCancelled honors cooperative cancellation before entering a stage.
func (o *Orchestrator) checkCancelled(ctx context.Context, job *Job, next Status) error {
	if err := ctx.Err(); err != nil {
		return o.fail(job, next, err)
	}
	return nil
}

// fail marks the job failed at the given stage and wraps the cause.
func (o *Orchestrator) fail(job *Job, stage Status, err error) error {
	job.FailedStage = stage
	job.Status = StatusFailed
	if o.opts.OnStage != nil {
		o.opts.OnStage(job, StatusFailed)
	}
	return &JobError{Stage: stage, URL: job.URL, Err: err}
}
