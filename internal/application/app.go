package application

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"youtube-summarizer/internal/cache"
	"youtube-summarizer/internal/config"
	"youtube-summarizer/internal/fetch"
	"youtube-summarizer/internal/llama"
	"youtube-summarizer/internal/notify"
	"youtube-summarizer/internal/pipeline"
	"youtube-summarizer/internal/summarize"
	"youtube-summarizer/internal/transcribe"
)

// Application wires configuration, cache and the pipeline stages into
// ready-to-use orchestrators. Both the CLI and the server build one.
type Application struct {
	Config      *config.Config
	Cache       *cache.Manager
	Fetcher     pipeline.Fetcher
	Transcriber pipeline.Transcriber
	Notifier    *notify.Client

	onStage     func(job *pipeline.Job, status pipeline.Status)
	defaultOrch *pipeline.Orchestrator
}

// Option customizes application construction.
type Option func(*Application)

// WithStageCallback registers a callback invoked on every job state
// transition.
func WithStageCallback(fn func(job *pipeline.Job, status pipeline.Status)) Option {
	return func(a *Application) {
		a.onStage = fn
	}
}

// New builds the application from configuration. The configured model is
// loaded eagerly so startup fails fast on a bad MODEL_PATH.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	app := &Application{
		Config:      cfg,
		Fetcher:     fetch.NewClient(cfg.AudioDir),
		Transcriber: transcribe.New(cfg.WhisperModelPath),
	}

	for _, opt := range opts {
		opt(app)
	}

	if cfg.CacheEnabled {
		manager, err := cache.NewManager(cfg.CacheType, cfg.CacheDir, time.Duration(cfg.CacheDuration)*time.Hour)
		if err != nil {
			return nil, fmt.Errorf("initializing cache: %w", err)
		}
		app.Cache = manager
	}

	if cfg.NotifyWebhookURL != "" {
		app.Notifier = notify.NewClient(cfg.NotifyWebhookURL)
	}

	orch, err := app.buildOrchestrator(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	app.defaultOrch = orch

	return app, nil
}

// Orchestrator returns the pipeline built around the configured model.
func (a *Application) Orchestrator() *pipeline.Orchestrator {
	return a.defaultOrch
}

// OrchestratorFor returns a pipeline built around the given model path.
// The configured model reuses the default orchestrator; any other path
// gets a fresh one.
func (a *Application) OrchestratorFor(modelPath string) (*pipeline.Orchestrator, error) {
	if modelPath == "" || modelPath == a.Config.ModelPath {
		return a.defaultOrch, nil
	}
	return a.buildOrchestrator(modelPath)
}

func (a *Application) buildOrchestrator(modelPath string) (*pipeline.Orchestrator, error) {
	engine, err := llama.NewClient(modelPath)
	if err != nil {
		return nil, err
	}

	summarizer := summarize.New(engine, summarize.Options{
		MaxChunkSize: a.Config.MaxChunkSize,
		MaxTokens:    a.Config.MaxSummaryTokens,
		Workers:      a.Config.SummaryWorkers,
	})

	return pipeline.New(a.Fetcher, a.Transcriber, summarizer, a.Cache, pipeline.Options{
		MaxChunkSize:     a.Config.MaxChunkSize,
		ChunkOverlap:     a.Config.ChunkOverlap,
		FetchTimeout:     time.Duration(a.Config.FetchTimeout) * time.Second,
		InferenceTimeout: time.Duration(a.Config.InferenceTimeout) * time.Second,
		KeepAudio:        a.Config.KeepAudio,
		OnStage:          a.onStage,
	}), nil
}

// PurgeExpired removes expired cache entries and stale audio artifacts
// left behind by interrupted jobs.
func (a *Application) PurgeExpired(ctx context.Context) {
	if a.Cache != nil {
		if removed, err := a.Cache.PurgeExpired(ctx); err != nil {
			log.Printf("Cache purge failed: %v", err)
		} else if removed > 0 {
			log.Printf("Purged %d expired cache entries", removed)
		}
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	matches, err := filepath.Glob(filepath.Join(a.Config.AudioDir, "audio_*.m4a"))
	if err != nil {
		return
	}
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Printf("Failed to remove stale audio file %s: %v", path, err)
		}
	}
}

// Close releases application resources.
func (a *Application) Close() error {
	if a.Cache != nil {
		return a.Cache.Close()
	}
	return nil
}
