package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"youtube-summarizer/internal/application"
	"youtube-summarizer/internal/config"
	"youtube-summarizer/internal/pipeline"
)

var (
	Version   string = "dev"
	Commit    string = "unknown"
	BuildTime string = "unknown"
)

func main() {
	var (
		url         = flag.String("url", config.DefaultSampleURL, "YouTube video URL to summarize")
		modelPath   = flag.String("model", "", "Path to the GGUF summarization model (overrides MODEL_PATH)")
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showHelp {
		fmt.Printf("YouTube Summarizer CLI\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment Variables:\n")
		fmt.Printf("  MODEL_PATH                 Path to the GGUF summarization model (required)\n")
		fmt.Printf("  WHISPER_MODEL_PATH         Path to the whisper.cpp model (default: ggml-base.en.bin)\n")
		fmt.Printf("  MAX_CHUNK_SIZE             Transcript chunk size in characters (default: %d)\n", config.DefaultChunkSize)
		fmt.Printf("  CACHE_ENABLED              Cache transcripts and summaries (default: true)\n")
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("YouTube Summarizer CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	// Load configuration, letting the -model flag override the environment
	cfg, err := loadConfig(*modelPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := application.New(cfg, application.WithStageCallback(printStage))
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	result, err := app.Orchestrator().Run(context.Background(), *url)
	if err != nil {
		fmt.Fprintln(os.Stderr, describeFailure(err))
		os.Exit(1)
	}

	if result.Title != "" {
		fmt.Printf("\n%s\n%s\n\n", result.Title, strings.Repeat("=", len(result.Title)))
	}
	fmt.Printf("Transcript (%d characters):\n%s\n\n", len(result.Transcript), result.Transcript)
	fmt.Printf("Summary:\n%s\n\n", result.Summary)
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	fmt.Printf("Done in %.1fs", result.Elapsed.Seconds())
	if result.CachedSummary {
		fmt.Printf(" (summary from cache)")
	} else if result.CachedTranscript {
		fmt.Printf(" (transcript from cache)")
	}
	fmt.Println()
}

func loadConfig(modelPath string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		var cfgErr *config.ConfigError
		// A bad MODEL_PATH in the environment is fine when -model overrides it.
		if modelPath == "" || !errors.As(err, &cfgErr) || cfgErr.Field != "MODEL_PATH" {
			return nil, err
		}
	}
	if modelPath != "" {
		cfg.ModelPath = modelPath
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func printStage(job *pipeline.Job, status pipeline.Status) {
	switch status {
	case pipeline.StatusFetching:
		fmt.Println("Downloading audio...")
	case pipeline.StatusTranscribing:
		fmt.Println("Transcribing...")
	case pipeline.StatusSummarizing:
		fmt.Println("Summarizing...")
	}
}

// describeFailure renders a one-line report naming the failed stage.
func describeFailure(err error) string {
	var jobErr *pipeline.JobError
	if errors.As(err, &jobErr) {
		return fmt.Sprintf("error: %s stage failed: %v", jobErr.Stage, jobErr.Err)
	}
	return fmt.Sprintf("error: %v", err)
}
