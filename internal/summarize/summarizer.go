package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Reason classifies why summarization failed as a whole.
type Reason string

const (
	ReasonAllChunksFailed Reason = "all-chunks-failed"
	ReasonTimeout         Reason = "timeout"
)

// SummarizationError reports a summarization failure that could not be
// recovered by substituting empty partial summaries.
type SummarizationError struct {
	Reason Reason
	Err    error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization failed: %s: %v", e.Reason, e.Err)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// Engine is the language-model capability the summarizer consumes.
type Engine interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Options tunes the summarizer.
type Options struct {
	// MaxChunkSize bounds the characters of text embedded in one prompt.
	// The prompt template's fixed overhead is reserved on top of this,
	// so callers size it below the model context window.
	MaxChunkSize int
	// MaxTokens bounds generation length per model call.
	MaxTokens int
	// Workers bounds concurrent chunk summarizations in the first pass.
	Workers int
}

// Result is the summarizer output for one transcript.
type Result struct {
	Summary string `json:"summary"`
	// PartialSummaries holds one entry per input chunk in sequence
	// order; failed chunks contribute an empty string. Only populated
	// for multi-chunk input.
	PartialSummaries []string `json:"partial_summaries,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// maxReducePasses bounds the hierarchical combine loop. Each pass
// shrinks the text by roughly the per-call compression ratio, so this
// is never reached for realistic transcripts.
const maxReducePasses = 8

// Summarizer condenses chunked transcripts with a local model, merging
// multi-chunk input through a hierarchical reduce.
type Summarizer struct {
	engine Engine
	opts   Options
}

// New creates a summarizer over the given engine.
func New(engine Engine, opts Options) *Summarizer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	return &Summarizer{engine: engine, opts: opts}
}

// Summarize produces one summary for the ordered chunk sequence. A
// single chunk is summarized directly with no combine pass. For
// multi-chunk input, chunks are summarized independently (failures
// become warnings) and the partials are merged; if the merged text
// still exceeds the chunk budget, it is re-chunked and reduced again.
func (s *Summarizer) Summarize(ctx context.Context, chunks []Chunk) (*Result, error) {
	if len(chunks) == 0 {
		return nil, &SummarizationError{Reason: ReasonAllChunksFailed, Err: errors.New("no chunks to summarize")}
	}

	if len(chunks) == 1 {
		summary, err := s.engine.Generate(ctx, buildChunkPrompt(chunks[0].Text), s.opts.MaxTokens)
		if err != nil {
			return nil, s.wrap(ctx, err)
		}
		return &Result{Summary: summary}, nil
	}

	partials, warnings := s.summarizeChunks(ctx, chunks)

	succeeded := 0
	for _, p := range partials {
		if p != "" {
			succeeded++
		}
	}
	if succeeded == 0 {
		return nil, s.wrap(ctx, fmt.Errorf("all %d chunk summarizations failed", len(chunks)))
	}

	summary, reduceWarnings, err := s.reduce(ctx, partials)
	if err != nil {
		return nil, err
	}

	return &Result{
		Summary:          summary,
		PartialSummaries: partials,
		Warnings:         append(warnings, reduceWarnings...),
	}, nil
}

// summarizeChunks runs the first pass with a bounded worker pool.
// Results are index-aligned so final ordering follows chunk sequence,
// not completion order.
func (s *Summarizer) summarizeChunks(ctx context.Context, chunks []Chunk) ([]string, []string) {
	partials := make([]string, len(chunks))
	errs := make([]error, len(chunks))

	sem := make(chan struct{}, s.opts.Workers)
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk Chunk) {
			defer wg.Done()
			defer func() { <-sem }()
			partials[i], errs[i] = s.engine.Generate(ctx, buildChunkPrompt(chunk.Text), s.opts.MaxTokens)
		}(i, chunk)
	}
	wg.Wait()

	var warnings []string
	for i, err := range errs {
		if err != nil {
			partials[i] = ""
			warnings = append(warnings, fmt.Sprintf("chunk %d failed: %v", i, err))
		}
	}
	return partials, warnings
}

// reduce merges partial summaries into one final summary, re-chunking
// and re-summarizing as long as the combined text exceeds the budget.
// An explicit loop keeps the worst-case depth bounded.
func (s *Summarizer) reduce(ctx context.Context, partials []string) (string, []string, error) {
	texts := nonEmpty(partials)
	var warnings []string

	for pass := 0; pass < maxReducePasses; pass++ {
		combined := strings.Join(texts, "\n\n")
		if len([]rune(combined)) <= s.opts.MaxChunkSize {
			summary, err := s.engine.Generate(ctx, buildCombinePrompt(combined), s.opts.MaxTokens)
			if err != nil {
				return "", nil, s.wrap(ctx, err)
			}
			return summary, warnings, nil
		}

		// Combined partials still exceed the budget: chunk them again
		// (no overlap, summaries are self-contained) and condense each.
		sub, err := Split(combined, s.opts.MaxChunkSize, 0)
		if err != nil {
			return "", nil, s.wrap(ctx, err)
		}

		next := make([]string, 0, len(sub))
		for _, chunk := range sub {
			text, err := s.engine.Generate(ctx, buildChunkPrompt(chunk.Text), s.opts.MaxTokens)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("combine pass %d: chunk %d failed: %v", pass+1, chunk.Index, err))
				continue
			}
			next = append(next, text)
		}
		if len(next) == 0 {
			return "", nil, s.wrap(ctx, fmt.Errorf("combine pass %d: all chunk summarizations failed", pass+1))
		}
		texts = next
	}

	// The loop cap was hit; condense whatever fits rather than recurse.
	combined := strings.Join(texts, "\n\n")
	runes := []rune(combined)
	if len(runes) > s.opts.MaxChunkSize {
		runes = runes[:s.opts.MaxChunkSize]
		warnings = append(warnings, "combine input truncated to fit context budget")
	}
	summary, err := s.engine.Generate(ctx, buildCombinePrompt(string(runes)), s.opts.MaxTokens)
	if err != nil {
		return "", nil, s.wrap(ctx, err)
	}
	return summary, warnings, nil
}

// wrap converts an engine failure into the summarization error taxonomy.
func (s *Summarizer) wrap(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &SummarizationError{Reason: ReasonTimeout, Err: err}
	}
	return &SummarizationError{Reason: ReasonAllChunksFailed, Err: err}
}

func nonEmpty(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
