package pipeline

import "testing"

func TestNewJob(t *testing.T) {
	job := newJob("https://www.youtube.com/watch?v=abc")

	if job.ID == "" {
		t.Error("Expected job ID to be assigned")
	}
	if job.Status != StatusCreated {
		t.Errorf("Expected status %s, got %s", StatusCreated, job.Status)
	}

	other := newJob("https://www.youtube.com/watch?v=abc")
	if other.ID == job.ID {
		t.Error("Expected unique job IDs")
	}
}

func TestJobTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusCreated, StatusFetching, true},
		{StatusCreated, StatusSummarizing, true}, // cached transcript
		{StatusCreated, StatusDone, true},        // cached summary
		{StatusCreated, StatusFailed, true},
		{StatusCreated, StatusTranscribing, false},
		{StatusFetching, StatusTranscribing, true},
		{StatusFetching, StatusFailed, true},
		{StatusFetching, StatusSummarizing, false},
		{StatusFetching, StatusDone, false},
		{StatusTranscribing, StatusSummarizing, true},
		{StatusTranscribing, StatusFailed, true},
		{StatusTranscribing, StatusDone, false},
		{StatusSummarizing, StatusDone, true},
		{StatusSummarizing, StatusFailed, true},
		{StatusSummarizing, StatusFetching, false},
		{StatusDone, StatusFetching, false},
		{StatusDone, StatusFailed, false},
		{StatusFailed, StatusFetching, false},
		{StatusFailed, StatusDone, false},
	}

	for _, test := range tests {
		job := &Job{Status: test.from}
		err := job.transition(test.to)

		if test.allowed && err != nil {
			t.Errorf("Expected %s -> %s to be allowed, got %v", test.from, test.to, err)
		}
		if !test.allowed && err == nil {
			t.Errorf("Expected %s -> %s to be rejected", test.from, test.to)
		}
	}
}

func TestJobTransitionToSameStateIsNoop(t *testing.T) {
	job := &Job{Status: StatusFetching}
	if err := job.transition(StatusFetching); err != nil {
		t.Errorf("Expected self-transition to be a no-op, got %v", err)
	}
	if job.Status != StatusFetching {
		t.Errorf("Expected status unchanged, got %s", job.Status)
	}
}
