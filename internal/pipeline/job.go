package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"youtube-summarizer/internal/fetch"
)

// Status is a job's position in the pipeline state machine.
type Status string

const (
	StatusCreated      Status = "created"
	StatusFetching     Status = "fetching"
	StatusTranscribing Status = "transcribing"
	StatusSummarizing  Status = "summarizing"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
)

// Job is one end-to-end summarization request and its in-flight state.
// A job is owned by the orchestrator goroutine that runs it.
type Job struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status Status `json:"status"`

	// FailedStage records which stage a failed job died in.
	FailedStage Status `json:"failed_stage,omitempty"`

	Audio      *fetch.AudioArtifact `json:"audio,omitempty"`
	Transcript string               `json:"transcript,omitempty"`
}

// newJob creates a job in the created state.
func newJob(url string) *Job {
	return &Job{
		ID:     uuid.NewString(),
		URL:    url,
		Status: StatusCreated,
	}
}

// transition validates and applies a state change. Transitions are
// strictly forward; re-entry requires a new job.
func (j *Job) transition(to Status) error {
	if to == j.Status {
		return nil
	}
	if !isValidTransition(j.Status, to) {
		return fmt.Errorf("invalid transition: %s -> %s", j.Status, to)
	}
	j.Status = to
	return nil
}

// isValidTransition enforces the allowed job state machine edges.
// Cache hits let created jobs jump ahead to summarizing or done.
func isValidTransition(from, to Status) bool {
	switch from {
	case StatusCreated:
		return to == StatusFetching || to == StatusSummarizing || to == StatusDone || to == StatusFailed
	case StatusFetching:
		return to == StatusTranscribing || to == StatusFailed
	case StatusTranscribing:
		return to == StatusSummarizing || to == StatusFailed
	case StatusSummarizing:
		return to == StatusDone || to == StatusFailed
	default:
		return false
	}
}
