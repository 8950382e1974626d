package repositories

import (
	"fmt"

	"github.com/desertthunder/floodjoin/internal/models"
)

// AttemptRecorder implements tasks.AttemptRecorder using JoinAttemptRepository.
//
// Every outcome of a run shares the recorder's run id so a batch can be listed together.
type AttemptRecorder struct {
	repo  *JoinAttemptRepository
	runID string
}

// NewAttemptRecorder creates an AttemptRecorder tagging attempts with runID
func NewAttemptRecorder(repo *JoinAttemptRepository, runID string) *AttemptRecorder {
	return &AttemptRecorder{repo: repo, runID: runID}
}

// RunID returns the run id attached to recorded attempts
func (a *AttemptRecorder) RunID() string { return a.runID }

// RecordAttempt persists a join outcome.
func (a *AttemptRecorder) RecordAttempt(outcome models.JoinOutcome) error {
	if err := a.repo.Create(models.AttemptFromOutcome(a.runID, outcome)); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}
