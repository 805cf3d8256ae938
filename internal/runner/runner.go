// Package runner abstracts external process execution so the yt-dlp,
// ffmpeg, whisper.cpp and llama.cpp adapters can be tested without the
// real binaries installed.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result is one command invocation outcome.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a named command with arguments.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Exec executes commands via os/exec.
type Exec struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (e *Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}
