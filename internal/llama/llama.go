package llama

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"youtube-summarizer/internal/runner"
)

// GenerationConfig controls sampling for summary generation.
type GenerationConfig struct {
	Temperature float64
	TopP        float64
}

// DefaultGenerationConfig keeps summaries close to the source text.
var DefaultGenerationConfig = GenerationConfig{
	Temperature: 0.3,
	TopP:        0.8,
}

// Client invokes a local llama.cpp model for text generation.
type Client struct {
	binPath   string
	modelPath string
	config    GenerationConfig
	runner    runner.Runner
}

// NewClient creates a llama.cpp client for the GGUF weights at modelPath.
func NewClient(modelPath string) (*Client, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model not found at %s: %w", modelPath, err)
	}
	return &Client{
		binPath:   "llama-cli",
		modelPath: modelPath,
		config:    DefaultGenerationConfig,
		runner:    &runner.Exec{},
	}, nil
}

// NewClientForTests constructs a client with an injectable runner and no
// model file check.
func NewClientForTests(binPath, modelPath string, r runner.Runner) *Client {
	return &Client{
		binPath:   binPath,
		modelPath: modelPath,
		config:    DefaultGenerationConfig,
		runner:    r,
	}
}

// Generate runs one bounded-length completion for the given prompt.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	args := []string{
		"-m", c.modelPath,
		"-p", prompt,
		"-n", strconv.Itoa(maxTokens),
		"--temp", strconv.FormatFloat(c.config.Temperature, 'f', -1, 64),
		"--top-p", strconv.FormatFloat(c.config.TopP, 'f', -1, 64),
		"--no-display-prompt",
		"-no-cnv",
	}

	result, err := c.runner.Run(ctx, c.binPath, args...)
	if err != nil {
		return "", fmt.Errorf("llama.cpp generation: %w", err)
	}

	text := CleanOutput(result.Stdout, prompt)
	if text == "" {
		return "", fmt.Errorf("llama.cpp produced no output")
	}
	return text, nil
}

// CleanOutput strips the prompt echo, instruction-tag tails and markdown
// fences from raw model output.
func CleanOutput(raw, prompt string) string {
	s := strings.TrimSpace(raw)

	// Older llama.cpp builds echo the prompt despite --no-display-prompt.
	if prompt != "" && strings.HasPrefix(s, strings.TrimSpace(prompt)) {
		s = strings.TrimSpace(strings.TrimPrefix(s, strings.TrimSpace(prompt)))
	}

	// Instruct models sometimes append a follow-up [INST] block.
	if idx := strings.Index(s, "\n\n[INST]"); idx >= 0 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSuffix(s, "</s>")
	return strings.TrimSpace(s)
}
