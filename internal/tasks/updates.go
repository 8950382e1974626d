package tasks

import (
	"fmt"

	"github.com/desertthunder/floodjoin/internal/models"
)

// ProgressUpdate represents a progress event during a join or batch of joins.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Position of the channel within the batch (1-based)
	Total   int    // Channels in the batch
	Channel string // Channel name as given by the caller
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveDirect Phase = iota
	SearchFallback
	JoinRequest
	JoinComplete
)

func (p Phase) String() string {
	switch p {
	case ResolveDirect:
		return "resolve_direct"
	case SearchFallback:
		return "search_fallback"
	case JoinRequest:
		return "join_request"
	case JoinComplete:
		return "join_complete"
	default:
		return ""
	}
}

// position is where a single Join sits inside a batch.
type position struct {
	step, total int
}

func resolveDirectUpdate(p position, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveDirect,
		Step:    p.step,
		Total:   p.total,
		Channel: name,
		Message: fmt.Sprintf("Getting entity for channel %q...", name),
	}
}

func searchFallbackUpdate(p position, name string, cause error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchFallback,
		Step:    p.step,
		Total:   p.total,
		Channel: name,
		Message: fmt.Sprintf("%v, searching for %q...", cause, name),
		Data:    cause,
	}
}

func joinRequestUpdate(p position, name string, c *models.Candidate) ProgressUpdate {
	return ProgressUpdate{
		Phase:   JoinRequest,
		Step:    p.step,
		Total:   p.total,
		Channel: name,
		Message: fmt.Sprintf("Joining %s...", c.DisplayName()),
		Data:    c,
	}
}

func joinCompleteUpdate(p position, outcome models.JoinOutcome) ProgressUpdate {
	msg := fmt.Sprintf("Channel %q joined", outcome.Name)
	if !outcome.Joined {
		msg = fmt.Sprintf("Channel %q failed: %v", outcome.Name, outcome.Err)
	}
	return ProgressUpdate{
		Phase:   JoinComplete,
		Step:    p.step,
		Total:   p.total,
		Channel: outcome.Name,
		Message: msg,
		Data:    outcome,
	}
}
