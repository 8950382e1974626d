package models

import (
	"fmt"
	"time"
)

// JoinAttempt is a persisted record of a single join attempt.
type JoinAttempt struct {
	id        string
	sequence  int
	runID     string
	channel   string
	joined    bool
	source    ResolutionSource
	errMsg    string
	peer      EntityRef
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

var _ Model = (*JoinAttempt)(nil)

// NewJoinAttempt creates a JoinAttempt for the given run. The ID is assigned by the repository on create.
func NewJoinAttempt(runID, channel string, joined bool, source ResolutionSource, errMsg string) *JoinAttempt {
	now := time.Now()
	return &JoinAttempt{
		runID:     runID,
		channel:   channel,
		joined:    joined,
		source:    source,
		errMsg:    errMsg,
		createdAt: now,
		updatedAt: now,
	}
}

// AttemptFromOutcome converts a [JoinOutcome] into a JoinAttempt for the given run.
func AttemptFromOutcome(runID string, o JoinOutcome) *JoinAttempt {
	a := NewJoinAttempt(runID, o.Name, o.Joined, o.Source, o.Error())
	if o.Resolved != nil {
		a.peer = o.Resolved.Ref
	}
	return a
}

// RestoreJoinAttempt rebuilds a JoinAttempt from stored columns.
func RestoreJoinAttempt(id string, sequence int, runID, channel string, joined bool, source ResolutionSource, errMsg string, peer EntityRef, createdAt, updatedAt time.Time, deletedAt *time.Time) *JoinAttempt {
	return &JoinAttempt{
		id:        id,
		sequence:  sequence,
		runID:     runID,
		channel:   channel,
		joined:    joined,
		source:    source,
		errMsg:    errMsg,
		peer:      peer,
		createdAt: createdAt,
		updatedAt: updatedAt,
		deletedAt: deletedAt,
	}
}

func (a *JoinAttempt) ID() string               { return a.id }
func (a *JoinAttempt) Sequence() int            { return a.sequence }
func (a *JoinAttempt) RunID() string            { return a.runID }
func (a *JoinAttempt) Channel() string          { return a.channel }
func (a *JoinAttempt) Joined() bool             { return a.joined }
func (a *JoinAttempt) Source() ResolutionSource { return a.source }
func (a *JoinAttempt) ErrorMessage() string     { return a.errMsg }
func (a *JoinAttempt) Peer() EntityRef          { return a.peer }
func (a *JoinAttempt) CreatedAt() time.Time     { return a.createdAt }
func (a *JoinAttempt) UpdatedAt() time.Time     { return a.updatedAt }
func (a *JoinAttempt) DeletedAt() *time.Time    { return a.deletedAt }
func (a *JoinAttempt) SetID(id string)          { a.id = id }
func (a *JoinAttempt) SetSequence(seq int)      { a.sequence = seq }
func (a *JoinAttempt) SetUpdatedAt(t time.Time) { a.updatedAt = t }
func (a *JoinAttempt) SetResult(joined bool, err string) {
	a.joined = joined
	a.errMsg = err
}

// Validate checks required fields.
func (a *JoinAttempt) Validate() error {
	if a.channel == "" {
		return fmt.Errorf("channel is required")
	}
	if a.runID == "" {
		return fmt.Errorf("run id is required")
	}
	switch a.source {
	case SourceNone, SourceDirect, SourceSearch:
	default:
		return fmt.Errorf("unknown resolution source %q", a.source)
	}
	if a.joined && a.errMsg != "" {
		return fmt.Errorf("joined attempt cannot carry an error")
	}
	return nil
}

// Status is a one-word summary used by the CLI and TUI.
func (a *JoinAttempt) Status() string {
	if a.joined {
		return "joined"
	}
	return "failed"
}
