package pipeline

import "fmt"

// JobError wraps a stage-local failure with the stage it occurred in,
// so callers can decide whether a retry makes sense.
type JobError struct {
	Stage Status
	URL   string
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job failed at %s for %s: %v", e.Stage, e.URL, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}
